package app

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/okian/skillmatrix/internal/adapters/http/client"
	"github.com/okian/skillmatrix/internal/adapters/view"
	"github.com/okian/skillmatrix/internal/domain/model"
)

// Dashboard is what LoadDashboard fetched.
type Dashboard struct {
	Counters    model.Counters
	HR          *model.HRStats
	Departments []model.Department
}

// LoadDashboard patches the named counters. HR and admin viewers also get
// the analytics charts and the department select, fetched concurrently.
func (s *Session) LoadDashboard(ctx context.Context) (Dashboard, error) {
	if s.isClosed() {
		return Dashboard{}, ErrClosed
	}
	var (
		out Dashboard
		hr  model.HRStats
	)
	analytics := s.role == model.RoleHR || s.role == model.RoleAdmin

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Counters, err = s.api.DashboardStats(gctx)
		return err
	})
	if analytics {
		g.Go(func() error {
			var err error
			hr, err = s.api.HRStats(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			out.Departments, err = s.api.Departments(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.notes.Error(client.Message(err))
		return Dashboard{}, err
	}

	s.patchCounters(out.Counters)
	if analytics {
		out.HR = &hr
		s.patchCounters(hr.Counters)
		opts := make([]view.Option, 0, len(out.Departments))
		for _, d := range out.Departments {
			opts = append(opts, view.Option{Value: strconv.Itoa(d.ID), Label: d.Name})
		}
		s.doc.SetOptions(SelectDepartment, opts)
		if err := s.renderHRCharts(ctx, hr); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (s *Session) patchCounters(c model.Counters) {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.doc.SetCounter(k, formatCounter(c[k]))
	}
}

func formatCounter(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
