package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatrix/internal/config"
	"github.com/okian/skillmatrix/internal/domain/model"
)

const compareBody = `{"success":true,
	"user1":{"id":1,"full_name":"Ann Ray"},
	"user2":{"id":2,"full_name":"Bob Lane"},
	"comparison":[
		{"skill_id":1,"skill_name":"Go","category":"Backend","user1_score":4,"user2_score":3,"difference":-1},
		{"skill_id":2,"skill_name":"SQL","category":"Data","user1_score":5,"user2_score":5,"difference":0},
		{"skill_id":3,"skill_name":"Rust","category":"Backend","user1_score":0,"user2_score":2,"difference":null},
		{"skill_id":4,"skill_name":"Docker","category":"Ops","user1_score":3,"user2_score":0,"difference":null}]}`

func TestCompare(t *testing.T) {
	Convey("Given two employees with two doubly rated skills", t, func() {
		ctx := context.Background()
		b := newBackend()
		defer b.Close()
		b.reply("GET /hr/compare-users", http.StatusOK, compareBody)

		Convey("The table lists every skill but the radar is replaced by the no-data section", func() {
			s := newTestSession(b, clockwork.NewFakeClock(), WithUser(9), WithRole(model.RoleHR))
			defer func() { _ = s.Close(ctx) }()

			cmp, err := s.Compare(ctx, 1, 2)
			So(err, ShouldBeNil)
			So(len(cmp.Rows), ShouldEqual, 4)

			So(s.Document().Table(TableComparison), ShouldResemble, [][]string{
				{"Skill", "Category", "Ann Ray", "Bob Lane", "Difference"},
				{"Go", "Backend", "4", "3", "-1"},
				{"SQL", "Data", "5", "5", "0"},
				{"Rust", "Backend", "—", "2", "—"},
				{"Docker", "Ops", "3", "—", "—"},
			})
			So(s.Document().SectionVisible(CanvasComparison), ShouldBeFalse)
			So(s.Document().SectionVisible(SectionNoComparison), ShouldBeTrue)
			_, live := s.charts.Live(CanvasComparison)
			So(live, ShouldBeFalse)
		})

		Convey("A lower threshold draws the overlay of the shared skills", func() {
			cfg := config.New(ctx)
			cfg.CompareMinSkills = 2
			s := newTestSession(b, clockwork.NewFakeClock(), WithUser(9), WithRole(model.RoleHR), WithConfig(cfg))
			defer func() { _ = s.Close(ctx) }()

			_, err := s.Compare(ctx, 1, 2)
			So(err, ShouldBeNil)
			So(s.Document().SectionVisible(CanvasComparison), ShouldBeTrue)
			So(s.Document().SectionVisible(SectionNoComparison), ShouldBeFalse)

			inst, live := s.charts.Live(CanvasComparison)
			So(live, ShouldBeTrue)
			So(inst.Config().Labels, ShouldResemble, []string{"Go", "SQL"})
			So(inst.Config().Datasets[1].Label, ShouldEqual, "Bob Lane")

			Convey("and the refresh worker redraws it from the last comparison", func() {
				So(s.refresh(ctx, CanvasComparison), ShouldBeNil)
				_, live := s.charts.Live(CanvasComparison)
				So(live, ShouldBeTrue)
				So(b.Hits("GET /hr/compare-users"), ShouldEqual, 1)
			})
		})

		Convey("A backend error leaves the table untouched", func() {
			b.reply("GET /hr/compare-users", http.StatusForbidden, `{"success":false,"message":"Access denied"}`)
			s := newTestSession(b, clockwork.NewFakeClock(), WithUser(9), WithRole(model.RoleEmployee))
			defer func() { _ = s.Close(ctx) }()

			_, err := s.Compare(ctx, 1, 2)
			So(err, ShouldNotBeNil)
			So(s.Document().Table(TableComparison), ShouldBeNil)
			So(toastMessages(s), ShouldContain, "Access denied")
		})
	})
}

func TestSearch(t *testing.T) {
	Convey("Given an HR session with a user directory", t, func() {
		ctx := context.Background()
		clock := clockwork.NewFakeClock()
		b := newBackend()
		defer b.Close()

		var (
			mu      sync.Mutex
			queries []string
		)
		b.handle("GET /hr/api/search-users", func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			queries = append(queries, r.URL.Query().Get("q"))
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"total":3,"users":[
				{"id":1,"full_name":"Joanna Lee","position":"Analyst"},
				{"id":2,"full_name":"Ann Ray","position":"Engineer","department":"IT"},
				{"id":3,"full_name":"Zed Ward","email":"ann.w@example.com"}]}`))
		})
		seen := func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), queries...)
		}

		s := newTestSession(b, clock, WithUser(9), WithRole(model.RoleHR))
		defer func() { _ = s.Close(ctx) }()

		Convey("Typing only searches once the input is quiet", func() {
			s.TypeSearch(ctx, "a")
			s.TypeSearch(ctx, "an")
			s.TypeSearch(ctx, "ann")
			So(seen(), ShouldBeEmpty)

			clock.Advance(s.cfg.SearchDebounce())
			So(eventually(func() bool { return len(s.Document().List(ListSearch)) == 3 }), ShouldBeTrue)
			So(seen(), ShouldResemble, []string{"ann"})
		})

		Convey("Results are ranked by how closely the name matches", func() {
			users, err := s.SearchUsers(ctx, "ann")
			So(err, ShouldBeNil)
			So(users[0].FullName, ShouldEqual, "Ann Ray")
			So(users[1].FullName, ShouldEqual, "Joanna Lee")
			So(users[2].FullName, ShouldEqual, "Zed Ward")
			So(s.Document().List(ListSearch), ShouldResemble, []string{
				"Ann Ray, Engineer (IT)",
				"Joanna Lee, Analyst",
				"Zed Ward",
			})
		})

		Convey("Short queries clear the results without a request", func() {
			s.Document().SetList(ListSearch, []string{"stale"})
			_, err := s.SearchUsers(ctx, " a ")
			So(errors.Is(err, ErrQueryTooShort), ShouldBeTrue)
			So(s.Document().List(ListSearch), ShouldBeEmpty)
			So(seen(), ShouldBeEmpty)
		})

		Convey("Closing cancels a pending search", func() {
			s.TypeSearch(ctx, "ann")
			So(s.Close(ctx), ShouldBeNil)
			clock.Advance(s.cfg.SearchDebounce())
			So(seen(), ShouldBeEmpty)
		})
	})

	Convey("Given a skill search", t, func() {
		ctx := context.Background()
		b := newBackend()
		defer b.Close()
		b.reply("GET /api/skills/search", http.StatusOK, `{"success":true,
			"skill":{"id":1,"name":"Go","category":"Backend"},
			"users":[
				{"id":1,"full_name":"Bob Lane","self_score":3,"manager_score":0},
				{"id":2,"full_name":"Ann Ray","department":"IT","self_score":2,"manager_score":5},
				{"id":3,"full_name":"Cid Moe","self_score":3,"manager_score":0}]}`)
		s := newTestSession(b, clockwork.NewFakeClock(), WithUser(9), WithRole(model.RoleManager))
		defer func() { _ = s.Close(ctx) }()

		Convey("Matches are ordered by final score, then name", func() {
			matches, err := s.SearchBySkill(ctx, "go", 3)
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 3)
			So(s.Document().Table(TableSkillSearch), ShouldResemble, [][]string{
				{"Employee", "Department", "Self", "Manager", "Final (Go)"},
				{"Ann Ray", "IT", "2", "5", "5"},
				{"Bob Lane", "", "3", "—", "3"},
				{"Cid Moe", "", "3", "—", "3"},
			})
			So(b.Hits("GET /api/skills/search"), ShouldEqual, 1)
		})

		Convey("An out of range minimum is refused", func() {
			_, err := s.SearchBySkill(ctx, "go", 9)
			So(errors.Is(err, ErrInvalidScore), ShouldBeTrue)
			So(b.Hits("GET /api/skills/search"), ShouldEqual, 0)
		})
	})
}
