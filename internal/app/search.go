package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
)

// debouncer runs only the last function handed to it, once the input has
// been quiet for delay.
type debouncer struct {
	mu    sync.Mutex
	clock clockwork.Clock
	delay time.Duration
	timer clockwork.Timer
	gen   uint64
	done  bool
}

func newDebouncer(clock clockwork.Clock, delay time.Duration) *debouncer {
	return &debouncer{clock: clock, delay: delay}
}

func (d *debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen && !d.done
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.done = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// TypeSearch is a keystroke in the user search box. The search runs once
// typing has paused; its results land in the searchResults list.
func (s *Session) TypeSearch(ctx context.Context, q string) {
	bg := context.WithoutCancel(ctx)
	s.search.Call(func() {
		if _, err := s.SearchUsers(bg, q); err != nil && !errors.Is(err, ErrQueryTooShort) {
			s.logger.Debug(bg, "search failed", logger.String("q", q), logger.Error(err))
		}
	})
}

// SearchUsers queries the backend right away. Queries shorter than the
// configured minimum clear the results instead. Matches are ranked by how
// closely the full name matches q; users matched on other fields follow in
// server order.
func (s *Session) SearchUsers(ctx context.Context, q string) ([]model.User, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < s.cfg.SearchMinChars {
		s.doc.SetList(ListSearch, nil)
		return nil, ErrQueryTooShort
	}
	users, err := s.api.SearchUsers(ctx, q)
	if err != nil {
		s.notes.Error(client.Message(err))
		return nil, err
	}
	ranked := rankUsers(q, users)

	items := make([]string, len(ranked))
	for i, u := range ranked {
		items[i] = userLine(u)
	}
	if !s.isClosed() {
		s.doc.SetList(ListSearch, items)
	}
	return ranked, nil
}

func rankUsers(q string, users []model.User) []model.User {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.FullName
	}
	ranks := fuzzy.RankFindNormalizedFold(q, names)
	sort.Stable(ranks)

	out := make([]model.User, 0, len(users))
	seen := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		out = append(out, users[r.OriginalIndex])
		seen[r.OriginalIndex] = true
	}
	for i, u := range users {
		if !seen[i] {
			out = append(out, u)
		}
	}
	return out
}

func userLine(u model.User) string {
	line := u.FullName
	if u.Position != "" {
		line += ", " + u.Position
	}
	if u.Department != "" {
		line += " (" + u.Department + ")"
	}
	return line
}

// SearchBySkill lists employees holding skill at minScore or above, best
// final score first.
func (s *Session) SearchBySkill(ctx context.Context, skill string, minScore model.Score) ([]model.SkillMatch, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	skill = strings.TrimSpace(skill)
	if utf8.RuneCountInString(skill) < s.cfg.SearchMinChars {
		return nil, ErrQueryTooShort
	}
	if minScore != model.ScoreUnset && !minScore.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidScore, minScore)
	}
	found, matches, err := s.api.SearchBySkill(ctx, skill, minScore)
	if err != nil {
		s.notes.Error(client.Message(err))
		return nil, err
	}
	sort.SliceStable(matches, func(i, j int) bool {
		fi, fj := matches[i].Scores.Final(), matches[j].Scores.Final()
		if fi != fj {
			return fi > fj
		}
		return matches[i].User.FullName < matches[j].User.FullName
	})

	rows := [][]string{{"Employee", "Department", "Self", "Manager", "Final (" + nameOr(found.Name, skill) + ")"}}
	for _, m := range matches {
		rows = append(rows, []string{
			m.User.FullName, m.User.Department,
			scoreCell(m.Scores.Self), scoreCell(m.Scores.Manager), scoreCell(m.Scores.Final()),
		})
	}
	s.doc.SetTable(TableSkillSearch, rows)
	return matches, nil
}
