package client

import (
	"context"
	"net/http"

	"github.com/okian/skillmatrix/internal/domain/model"
)

type dashboardResponse struct {
	Stats model.Counters `json:"stats"`
	Data  model.Counters `json:"data"`
}

// DashboardStats loads the role-dependent counters of the dashboard.
func (c *Client) DashboardStats(ctx context.Context) (model.Counters, error) {
	var resp dashboardResponse
	if err := c.do(ctx, "dashboard_stats", http.MethodGet, "/api/dashboard/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Stats != nil {
		return resp.Stats, nil
	}
	if resp.Data != nil {
		return resp.Data, nil
	}
	return model.Counters{}, nil
}

type hrStatsResponse struct {
	Stats       model.Counters         `json:"stats"`
	Roles       []model.RoleCount      `json:"roles"`
	Departments []model.DepartmentStat `json:"departments"`
	// Distribution arrives as [{score, count}].
	Distribution []struct {
		Score model.Score `json:"score"`
		Count int         `json:"count"`
	} `json:"score_distribution"`
}

// HRStats loads the HR analytics payload.
func (c *Client) HRStats(ctx context.Context) (model.HRStats, error) {
	var resp hrStatsResponse
	if err := c.do(ctx, "hr_stats", http.MethodGet, "/api/hr/stats", nil, nil, &resp); err != nil {
		return model.HRStats{}, err
	}
	if resp.Stats == nil {
		resp.Stats = model.Counters{}
	}
	dist := make(map[model.Score]int, len(resp.Distribution))
	for _, d := range resp.Distribution {
		if d.Score.Valid() {
			dist[d.Score] += d.Count
		}
	}
	return model.HRStats{
		Counters:     resp.Stats,
		Roles:        resp.Roles,
		Departments:  resp.Departments,
		Distribution: dist,
	}, nil
}
