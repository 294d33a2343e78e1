package app

import (
	"github.com/jonboulle/clockwork"

	"github.com/okian/skillmatrix/internal/adapters/view"
	"github.com/okian/skillmatrix/internal/config"
	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/internal/domain/modal"
	"github.com/okian/skillmatrix/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithConfig sets the tunables. Nil keeps the defaults.
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithRole sets the role of the signed-in account.
func WithRole(role model.Role) Option {
	return func(s *Session) {
		if role != "" {
			s.role = role
		}
	}
}

// WithUser sets the id of the signed-in account.
func WithUser(id int) Option {
	return func(s *Session) {
		s.userID = id
	}
}

// WithEmployee selects the employee a manager or HR viewer is looking at.
func WithEmployee(id int) Option {
	return func(s *Session) {
		s.employeeID = id
	}
}

// WithClock sets the clock behind notifications, debounce and refresh delay.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfirmer sets the blocking question asked before unsaved changes are dropped.
func WithConfirmer(c modal.Confirmer) Option {
	return func(s *Session) {
		s.confirmer = c
	}
}

// WithDocument projects into doc instead of a fresh document.
func WithDocument(doc *view.Document) Option {
	return func(s *Session) {
		if doc != nil {
			s.doc = doc
		}
	}
}
