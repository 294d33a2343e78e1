package app

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/adapters/view"
	"github.com/okian/skillmatrix/internal/domain/modal"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
)

// OpenUserModal shows the user form. id 0 opens an empty form for a new
// account; otherwise the form is filled from the backend. The department
// select is loaded alongside.
func (s *Session) OpenUserModal(ctx context.Context, id int) error {
	if s.isClosed() {
		return ErrClosed
	}
	var (
		deps []model.Department
		user model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deps, err = s.api.Departments(gctx)
		return err
	})
	if id > 0 {
		g.Go(func() error {
			var err error
			user, err = s.api.GetUser(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.notes.Error(client.Message(err))
		return err
	}

	opts := make([]view.Option, 0, len(deps)+1)
	opts = append(opts, view.Option{Value: "", Label: "Select department"})
	for _, d := range deps {
		opts = append(opts, view.Option{Value: strconv.Itoa(d.ID), Label: d.Name})
	}
	s.doc.SetOptions(SelectDepartment, opts)

	fields := map[string]string{}
	if id > 0 {
		fields = map[string]string{
			"id":            strconv.Itoa(user.ID),
			"full_name":     user.FullName,
			"login":         user.Login,
			"email":         user.Email,
			"role":          string(user.Role),
			"position":      user.Position,
			"department_id": strconv.Itoa(user.DepartmentID),
		}
	}
	return s.modals.Open(ModalUser, fields)
}

// SaveUser creates (id 0) or updates an account from the user form. Field
// problems, found locally or reported by the backend, are shown next to
// the fields and returned as a *ValidationError.
func (s *Session) SaveUser(ctx context.Context, id int, in client.UserInput) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	err := s.check(in)
	if id == 0 && in.Password == "" {
		err = withField(err, "password", "required")
	}
	if err != nil {
		s.showFieldErrors(ModalUser, err)
		return 0, err
	}

	var msg string
	if id == 0 {
		id, msg, err = s.api.CreateUser(ctx, in)
	} else {
		msg, err = s.api.UpdateUser(ctx, id, in)
	}
	if err != nil {
		if fields := client.FieldErrors(err); len(fields) > 0 {
			verr := &ValidationError{Fields: fields}
			s.showFieldErrors(ModalUser, verr)
			return 0, verr
		}
		s.notes.Error(client.Message(err))
		return 0, err
	}

	s.notes.Success(nameOr(msg, "User saved"))
	s.closeQuietly(ctx, ModalUser)
	return id, nil
}

// DeleteUser removes an account.
func (s *Session) DeleteUser(ctx context.Context, id int) error {
	if s.isClosed() {
		return ErrClosed
	}
	msg, err := s.api.DeleteUser(ctx, id)
	if err != nil {
		s.notes.Error(client.Message(err))
		return err
	}
	s.notes.Success(nameOr(msg, "User deleted"))
	return nil
}

func (s *Session) showFieldErrors(modalID string, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return
	}
	s.doc.ClearModalErrors(modalID)
	for field, msg := range verr.Fields {
		s.doc.SetFieldError(modalID, field, msg)
	}
}

// closeQuietly closes a modal that may not be open.
func (s *Session) closeQuietly(ctx context.Context, modalID string) {
	if err := s.modals.Close(ctx, modalID); err != nil && !errors.Is(err, modal.ErrNotOpen) {
		s.logger.Debug(ctx, "modal left open", logger.String("modal", modalID), logger.Error(err))
	}
}

func withField(err error, field, msg string) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		if _, ok := verr.Fields[field]; !ok {
			verr.Fields[field] = msg
		}
		return verr
	}
	if err != nil {
		return err
	}
	return &ValidationError{Fields: map[string]string{field: msg}}
}
