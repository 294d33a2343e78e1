package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/skillmatrix/internal/domain/model"
)

type searchUsersResponse struct {
	Users []model.User `json:"users"`
	Total int          `json:"total"`
}

// SearchUsers finds accounts by name, login or email. The backend refuses
// queries shorter than two characters.
func (c *Client) SearchUsers(ctx context.Context, q string) ([]model.User, error) {
	var resp searchUsersResponse
	if err := c.do(ctx, "search_users", http.MethodGet, "/hr/api/search-users",
		url.Values{"q": {q}}, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

type skillMatchJSON struct {
	model.User
	SelfScore    model.Score `json:"self_score"`
	ManagerScore model.Score `json:"manager_score"`
}

type searchBySkillResponse struct {
	Skill model.Skill      `json:"skill"`
	Users []skillMatchJSON `json:"users"`
}

// SearchBySkill finds employees whose final score on the named skill is at
// least minScore.
func (c *Client) SearchBySkill(ctx context.Context, skill string, minScore model.Score) (model.Skill, []model.SkillMatch, error) {
	var resp searchBySkillResponse
	q := url.Values{"skill": {skill}, "min_score": {strconv.Itoa(int(minScore))}}
	if err := c.do(ctx, "search_by_skill", http.MethodGet, "/api/skills/search", q, nil, &resp); err != nil {
		return model.Skill{}, nil, err
	}
	out := make([]model.SkillMatch, 0, len(resp.Users))
	for _, u := range resp.Users {
		out = append(out, model.SkillMatch{
			User:   u.User,
			Scores: model.ScoreSet{Self: u.SelfScore, Manager: u.ManagerScore},
		})
	}
	return resp.Skill, out, nil
}

type comparisonRowJSON struct {
	SkillID    int         `json:"skill_id"`
	SkillName  string      `json:"skill_name"`
	Category   string      `json:"category"`
	User1Score model.Score `json:"user1_score"`
	User2Score model.Score `json:"user2_score"`
	Difference *int        `json:"difference"`
}

type compareResponse struct {
	User1      model.User          `json:"user1"`
	User2      model.User          `json:"user2"`
	Comparison []comparisonRowJSON `json:"comparison"`
}

// CompareUsers loads the final scores of two employees side by side.
func (c *Client) CompareUsers(ctx context.Context, user1, user2 int) (model.Comparison, error) {
	var resp compareResponse
	q := url.Values{"user1": {strconv.Itoa(user1)}, "user2": {strconv.Itoa(user2)}}
	if err := c.do(ctx, "compare_users", http.MethodGet, "/hr/compare-users", q, nil, &resp); err != nil {
		return model.Comparison{}, err
	}
	cmp := model.Comparison{User1: resp.User1, User2: resp.User2, Rows: make([]model.ComparisonRow, 0, len(resp.Comparison))}
	for _, r := range resp.Comparison {
		row := model.ComparisonRow{
			SkillID:    r.SkillID,
			SkillName:  r.SkillName,
			Category:   r.Category,
			User1Score: r.User1Score,
			User2Score: r.User2Score,
		}
		if r.Difference != nil {
			row.Difference = *r.Difference
		} else {
			row.Difference = int(r.User2Score) - int(r.User1Score)
		}
		cmp.Rows = append(cmp.Rows, row)
	}
	return cmp, nil
}
