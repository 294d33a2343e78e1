package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/domain/model"
)

func TestSkillCatalogue(t *testing.T) {
	Convey("Given an admin with the skills table loaded", t, func() {
		ctx := context.Background()
		b := newBackend()
		defer b.Close()
		b.profile(1, "Ada Root",
			skillFixture{id: 3, name: "Go", category: "Backend", self: 4},
			skillFixture{id: 4, name: "Rust", category: "Backend"},
		)
		b.reply("GET /api/skills", http.StatusOK, `{"success":true,"skills":[
			{"id":3,"name":"Go","category":"Backend","assessments_count":3},
			{"id":4,"name":"Rust","category":"Backend","assessments_count":0}]}`)

		s := newTestSession(b, clockwork.NewFakeClock(), WithUser(1), WithRole(model.RoleAdmin))
		defer func() { _ = s.Close(ctx) }()
		So(s.Load(ctx), ShouldBeNil)
		skills, err := s.LoadSkills(ctx)
		So(err, ShouldBeNil)
		So(len(skills), ShouldEqual, 2)
		So(s.Document().Table(TableSkills), ShouldResemble, [][]string{
			{"ID", "Skill", "Category", "Assessments"},
			{"3", "Go", "Backend", "3"},
			{"4", "Rust", "Backend", "0"},
		})

		Convey("Deleting a skill that has assessments keeps it and shows the server message", func() {
			b.reply("DELETE /api/skills/3", http.StatusConflict, `{"success":false,"message":"3 assessments exist"}`)

			err := s.DeleteSkill(ctx, 3)
			So(errors.Is(err, client.ErrConflict), ShouldBeTrue)
			So(toastMessages(s), ShouldContain, "3 assessments exist")

			So(len(s.Document().Table(TableSkills)), ShouldEqual, 3)
			_, ok := s.Document().Row(3)
			So(ok, ShouldBeTrue)
			set, err := s.Score(ctx, 3)
			So(err, ShouldBeNil)
			So(set.Self, ShouldEqual, model.Score(4))
		})

		Convey("Deleting an unused skill removes it everywhere", func() {
			b.reply("DELETE /api/skills/4", http.StatusOK, `{"success":true,"message":"Skill deleted"}`)

			So(s.DeleteSkill(ctx, 4), ShouldBeNil)
			So(s.Document().Table(TableSkills), ShouldResemble, [][]string{
				{"ID", "Skill", "Category", "Assessments"},
				{"3", "Go", "Backend", "3"},
			})
			_, ok := s.Document().Row(4)
			So(ok, ShouldBeFalse)
			_, err := s.Score(ctx, 4)
			So(err, ShouldNotBeNil)
			So(toastMessages(s), ShouldContain, "Skill deleted")
		})

		Convey("Filtering matches names fuzzily and an empty filter restores the table", func() {
			So(len(s.FilterSkills("rst")), ShouldEqual, 1)
			So(len(s.Document().Table(TableSkills)), ShouldEqual, 2)

			So(len(s.FilterSkills("backend")), ShouldEqual, 2)
			So(len(s.FilterSkills("  ")), ShouldEqual, 2)
			So(len(s.Document().Table(TableSkills)), ShouldEqual, 3)
		})

		Convey("Filtering while a skill is deleted sees either catalogue", func() {
			b.reply("DELETE /api/skills/4", http.StatusOK, `{"success":true}`)

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					s.FilterSkills("")
				}
			}()
			err := s.DeleteSkill(ctx, 4)
			wg.Wait()

			So(err, ShouldBeNil)
			got := s.FilterSkills("")
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, 3)
		})

		Convey("Renaming a category sends the new name and reloads the table", func() {
			b.reply("PUT /api/categories/Backend", http.StatusOK, `{"success":true,"message":"Category updated"}`)

			So(s.RenameCategory(ctx, "Backend", "  Server  "), ShouldBeNil)
			So(b.Bodies("PUT /api/categories/Backend"), ShouldResemble, []string{`{"name":"Server"}`})
			So(toastMessages(s), ShouldContain, "Category updated")
			So(b.Hits("GET /api/skills"), ShouldEqual, 2)
		})

		Convey("A blank or unchanged category name is refused before any request", func() {
			var verr *ValidationError
			So(errors.As(s.RenameCategory(ctx, "Backend", "   "), &verr), ShouldBeTrue)
			So(verr.Fields["name"], ShouldEqual, "required")
			So(errors.As(s.RenameCategory(ctx, "Backend", "Backend"), &verr), ShouldBeTrue)
			So(b.Hits("PUT /api/categories/Backend"), ShouldEqual, 0)
		})

		Convey("A refused rename shows the server message and keeps the table", func() {
			b.reply("PUT /api/categories/Backend", http.StatusOK, `{"success":false,"message":"Category exists"}`)

			err := s.RenameCategory(ctx, "Backend", "Data")
			So(errors.Is(err, client.ErrApplication), ShouldBeTrue)
			So(toastMessages(s), ShouldContain, "Category exists")
			So(b.Hits("GET /api/skills"), ShouldEqual, 1)
		})

		Convey("The skill form is filled from the catalogue", func() {
			So(s.OpenSkillModal(4), ShouldBeNil)
			So(s.Modals().IsOpen(ModalSkill), ShouldBeTrue)
			So(s.Document().ModalField(ModalSkill, "name"), ShouldEqual, "Rust")
			So(s.Document().ScrollLocked(), ShouldBeTrue)
		})

		Convey("Saving an invalid skill shows field errors without a request", func() {
			So(s.OpenSkillModal(0), ShouldBeNil)
			_, err := s.SaveSkill(ctx, 0, client.SkillInput{Name: "G", Category: ""})

			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields["name"], ShouldEqual, "must be at least 2 characters")
			So(verr.Fields["category"], ShouldEqual, "required")
			So(s.Document().FieldErrors(ModalSkill)["category"], ShouldEqual, "required")
			So(b.Hits("POST /api/skills"), ShouldEqual, 0)
		})

		Convey("Saving a valid skill closes the form and reloads the table", func() {
			b.reply("POST /api/skills", http.StatusCreated,
				`{"success":true,"message":"Skill created","skill":{"id":5,"name":"Zig","category":"Backend"}}`)
			So(s.OpenSkillModal(0), ShouldBeNil)

			sk, err := s.SaveSkill(ctx, 0, client.SkillInput{Name: "Zig", Category: "Backend"})
			So(err, ShouldBeNil)
			So(sk.ID, ShouldEqual, 5)
			So(s.Modals().IsOpen(ModalSkill), ShouldBeFalse)
			So(s.Document().ScrollLocked(), ShouldBeFalse)
			So(b.Hits("GET /api/skills"), ShouldEqual, 2)
			So(toastMessages(s), ShouldContain, "Skill created")
		})

		Convey("A duplicate skill keeps the form open", func() {
			b.reply("PUT /api/skills/3", http.StatusConflict, `{"success":false,"message":"Skill already exists"}`)
			So(s.OpenSkillModal(3), ShouldBeNil)

			_, err := s.SaveSkill(ctx, 3, client.SkillInput{Name: "Rust", Category: "Backend"})
			So(errors.Is(err, client.ErrConflict), ShouldBeTrue)
			So(s.Modals().IsOpen(ModalSkill), ShouldBeTrue)
			So(toastMessages(s), ShouldContain, "Skill already exists")
		})
	})
}

func TestUserForm(t *testing.T) {
	Convey("Given an HR session managing accounts", t, func() {
		ctx := context.Background()
		b := newBackend()
		defer b.Close()
		b.reply("GET /hr/api/departments", http.StatusOK,
			`{"success":true,"departments":[{"id":1,"name":"IT"},{"id":2,"name":"Sales"}]}`)
		b.reply("GET /hr/api/users/42", http.StatusOK,
			`{"success":true,"user":{"id":42,"login":"alice","full_name":"Alice Smith","role":"employee","department_id":2}}`)

		s := newTestSession(b, clockwork.NewFakeClock(), WithUser(1), WithRole(model.RoleHR))
		defer func() { _ = s.Close(ctx) }()

		valid := client.UserInput{FullName: "Alice Smith", Login: "alice", Role: model.RoleEmployee}

		Convey("Opening an account fills the form and the department select", func() {
			So(s.OpenUserModal(ctx, 42), ShouldBeNil)
			So(s.Document().ModalVisible(ModalUser), ShouldBeTrue)
			So(s.Document().ModalField(ModalUser, "login"), ShouldEqual, "alice")
			So(s.Document().ModalField(ModalUser, "department_id"), ShouldEqual, "2")

			opts := s.Document().Options(SelectDepartment)
			So(len(opts), ShouldEqual, 3)
			So(opts[0].Label, ShouldEqual, "Select department")
			So(opts[2].Label, ShouldEqual, "Sales")
		})

		Convey("A weak password is refused before any request", func() {
			in := valid
			in.Password = "weak"
			So(s.OpenUserModal(ctx, 0), ShouldBeNil)

			_, err := s.SaveUser(ctx, 0, in)
			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields, ShouldContainKey, "password")
			So(len(verr.Fields), ShouldEqual, 1)
			So(s.Document().FieldErrors(ModalUser)["password"], ShouldContainSubstring, "at least 8 characters")
			So(b.Hits("POST /hr/api/users"), ShouldEqual, 0)
		})

		Convey("A new account needs a password", func() {
			_, err := s.SaveUser(ctx, 0, valid)
			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields["password"], ShouldEqual, "required")
		})

		Convey("Several bad fields are all reported", func() {
			_, err := s.SaveUser(ctx, 0, client.UserInput{FullName: "A", Login: "al", Email: "nope", Role: "boss", Password: "Secret123"})
			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields["full_name"], ShouldEqual, "must be at least 2 characters")
			So(verr.Fields["login"], ShouldEqual, "must be at least 3 characters")
			So(verr.Fields["email"], ShouldEqual, "must be a valid email address")
			So(verr.Fields["role"], ShouldEqual, "must be one of: employee manager hr admin")
			So(verr.Error(), ShouldStartWith, "validation failed: email: ")
		})

		Convey("A valid new account is created and the form closes", func() {
			b.reply("POST /hr/api/users", http.StatusCreated, `{"success":true,"message":"User created","user_id":43}`)
			in := valid
			in.Password = "Secret123"
			So(s.OpenUserModal(ctx, 0), ShouldBeNil)

			id, err := s.SaveUser(ctx, 0, in)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, 43)
			So(s.Modals().IsOpen(ModalUser), ShouldBeFalse)
			So(toastMessages(s), ShouldContain, "User created")
			So(b.Bodies("POST /hr/api/users")[0], ShouldContainSubstring, `"password":"Secret123"`)
		})

		Convey("Field errors from the server are shown on the form", func() {
			b.reply("PUT /hr/api/users/42", http.StatusBadRequest,
				`{"success":false,"message":"Validation failed","errors":{"login":"already taken"}}`)
			So(s.OpenUserModal(ctx, 42), ShouldBeNil)

			_, err := s.SaveUser(ctx, 42, valid)
			var verr *ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(s.Document().FieldErrors(ModalUser)["login"], ShouldEqual, "already taken")
			So(s.Modals().IsOpen(ModalUser), ShouldBeTrue)
		})

		Convey("Deleting an account shows the server message", func() {
			b.reply("DELETE /hr/api/users/42", http.StatusOK, `{"success":true,"message":"User deactivated"}`)
			So(s.DeleteUser(ctx, 42), ShouldBeNil)
			So(toastMessages(s), ShouldContain, "User deactivated")
		})
	})

	Convey("Password strength", t, func() {
		So(strongPassword("Secret123"), ShouldBeTrue)
		So(strongPassword("Sh0rt"), ShouldBeFalse)
		So(strongPassword("alllowercase1"), ShouldBeFalse)
		So(strongPassword("ALLUPPERCASE1"), ShouldBeFalse)
		So(strongPassword("NoDigitsHere"), ShouldBeFalse)
		So(strongPassword("Ünïcödé9x"), ShouldBeTrue)
	})
}
