package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/domain/model"
)

// LoadSkills fills the skills table with the catalogue.
func (s *Session) LoadSkills(ctx context.Context) ([]client.SkillInfo, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	skills, err := s.api.Skills(ctx)
	if err != nil {
		s.notes.Error(client.Message(err))
		return nil, err
	}
	s.mu.Lock()
	s.catalogue = append([]client.SkillInfo(nil), skills...)
	s.mu.Unlock()
	s.doc.SetTable(TableSkills, skillsTable(skills))
	return skills, nil
}

// FilterSkills narrows the loaded catalogue to skills whose name or
// category fuzzily contains q. An empty q restores the full table.
func (s *Session) FilterSkills(q string) []client.SkillInfo {
	s.mu.RLock()
	all := s.catalogue
	s.mu.RUnlock()

	q = strings.TrimSpace(q)
	out := make([]client.SkillInfo, 0, len(all))
	for _, sk := range all {
		if q == "" || fuzzy.MatchNormalizedFold(q, sk.Name) || fuzzy.MatchNormalizedFold(q, sk.Category) {
			out = append(out, sk)
		}
	}
	s.doc.SetTable(TableSkills, skillsTable(out))
	return out
}

// OpenSkillModal shows the skill form, filled from the catalogue when id is set.
func (s *Session) OpenSkillModal(id int) error {
	if s.isClosed() {
		return ErrClosed
	}
	fields := map[string]string{}
	if sk, ok := s.catalogueSkill(id); ok {
		fields = map[string]string{
			"id":          strconv.Itoa(sk.ID),
			"name":        sk.Name,
			"category":    sk.Category,
			"description": sk.Description,
		}
	}
	return s.modals.Open(ModalSkill, fields)
}

// SaveSkill creates (id 0) or updates a skill from the skill form.
func (s *Session) SaveSkill(ctx context.Context, id int, in client.SkillInput) (model.Skill, error) {
	if s.isClosed() {
		return model.Skill{}, ErrClosed
	}
	if err := s.check(in); err != nil {
		s.showFieldErrors(ModalSkill, err)
		return model.Skill{}, err
	}

	var (
		sk  model.Skill
		msg string
		err error
	)
	if id == 0 {
		sk, msg, err = s.api.CreateSkill(ctx, in)
	} else {
		sk, msg, err = s.api.UpdateSkill(ctx, id, in)
	}
	if err != nil {
		if fields := client.FieldErrors(err); len(fields) > 0 {
			verr := &ValidationError{Fields: fields}
			s.showFieldErrors(ModalSkill, verr)
			return model.Skill{}, verr
		}
		s.notes.Error(client.Message(err))
		return model.Skill{}, err
	}

	s.notes.Success(nameOr(msg, "Skill saved"))
	s.closeQuietly(ctx, ModalSkill)
	if _, err := s.LoadSkills(ctx); err != nil {
		return sk, err
	}
	return sk, nil
}

// DeleteSkill removes a skill. A conflict (the skill still has
// assessments) leaves the skill in place and shows the server's message.
func (s *Session) DeleteSkill(ctx context.Context, id int) error {
	if s.isClosed() {
		return ErrClosed
	}
	msg, err := s.api.DeleteSkill(ctx, id)
	if err != nil {
		s.notes.Error(client.Message(err))
		return err
	}

	// The catalogue slice is shared with readers; never edit it in place.
	s.mu.Lock()
	kept := make([]client.SkillInfo, 0, len(s.catalogue))
	for _, sk := range s.catalogue {
		if sk.ID != id {
			kept = append(kept, sk)
		}
	}
	s.catalogue = kept
	s.mu.Unlock()

	s.doc.SetTable(TableSkills, skillsTable(kept))
	s.store.Delete(ctx, id)
	s.doc.RemoveRow(id)
	s.notes.Success(nameOr(msg, "Skill deleted"))
	return nil
}

// RenameCategory renames a category for every skill in it and reloads the
// catalogue.
func (s *Session) RenameCategory(ctx context.Context, name, newName string) error {
	if s.isClosed() {
		return ErrClosed
	}
	newName = strings.TrimSpace(newName)
	switch {
	case newName == "":
		return &ValidationError{Fields: map[string]string{"name": "required"}}
	case newName == name:
		return &ValidationError{Fields: map[string]string{"name": "must differ from the current name"}}
	}

	msg, err := s.api.RenameCategory(ctx, name, newName)
	if err != nil {
		s.notes.Error(client.Message(err))
		return err
	}
	s.notes.Success(nameOr(msg, "Category renamed"))
	_, err = s.LoadSkills(ctx)
	return err
}

func (s *Session) catalogueSkill(id int) (client.SkillInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sk := range s.catalogue {
		if sk.ID == id {
			return sk, true
		}
	}
	return client.SkillInfo{}, false
}

func skillsTable(skills []client.SkillInfo) [][]string {
	rows := make([][]string, 0, len(skills)+1)
	rows = append(rows, []string{"ID", "Skill", "Category", "Assessments"})
	for _, sk := range skills {
		rows = append(rows, []string{strconv.Itoa(sk.ID), sk.Name, sk.Category, strconv.Itoa(sk.AssessmentsCount)})
	}
	return rows
}
