package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/skillmatrix/internal/domain/model"
	"github.com/okian/skillmatrix/pkg/logger"
)

// SelfResult is the backend answer to a self-assessment.
type SelfResult struct {
	// Score is the authoritative self score. When the backend does not
	// echo it, the submitted value is used.
	Score   model.Score
	Echoed  bool
	Message string
}

type selfRequest struct {
	SkillID int         `json:"skill_id"`
	Score   model.Score `json:"score"`
}

type selfResponse struct {
	Message    string       `json:"message"`
	NewScore   *model.Score `json:"new_score"`
	Assessment *struct {
		SelfScore *model.Score `json:"self_score"`
	} `json:"assessment"`
}

// AssessSkill records the caller's own score for a skill.
func (c *Client) AssessSkill(ctx context.Context, skillID int, score model.Score) (SelfResult, error) {
	const op = "assess_skill"
	var resp selfResponse
	if err := c.do(ctx, op, http.MethodPost, "/api/assess-skill", nil,
		selfRequest{SkillID: skillID, Score: score}, &resp); err != nil {
		return SelfResult{}, err
	}
	res := SelfResult{Score: score, Message: resp.Message}
	echoes := []*model.Score{resp.NewScore}
	if resp.Assessment != nil {
		echoes = append(echoes, resp.Assessment.SelfScore)
	}
	for _, echo := range echoes {
		if echo == nil {
			continue
		}
		if !echo.Valid() {
			// The request succeeded; an out-of-range echo is not authoritative.
			c.log.Warn(ctx, "ignoring invalid echoed score",
				logger.String("op", op),
				logger.Int("skill", skillID),
				logger.Int("echoed", int(*echo)))
			continue
		}
		res.Score, res.Echoed = *echo, true
		break
	}
	return res, nil
}

type managerRequest struct {
	EmployeeID   int         `json:"employee_id"`
	SkillID      int         `json:"skill_id"`
	ManagerScore model.Score `json:"manager_score"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// AssessEmployee records a manager score for one of the manager's reports.
func (c *Client) AssessEmployee(ctx context.Context, employeeID, skillID int, score model.Score) (string, error) {
	const op = "assess_employee"
	var resp messageResponse
	if err := c.do(ctx, op, http.MethodPost, "/api/assess-employee", nil,
		managerRequest{EmployeeID: employeeID, SkillID: skillID, ManagerScore: score}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

type batchItem struct {
	SkillID      int         `json:"skill_id"`
	ManagerScore model.Score `json:"manager_score"`
}

type batchRequest struct {
	Assessments []batchItem `json:"assessments"`
}

// AssessMember saves several manager scores for one employee in one request.
func (c *Client) AssessMember(ctx context.Context, employeeID int, changes []model.PendingChange) (string, error) {
	const op = "assess_member"
	req := batchRequest{Assessments: make([]batchItem, 0, len(changes))}
	for _, ch := range changes {
		req.Assessments = append(req.Assessments, batchItem{SkillID: ch.SkillID, ManagerScore: ch.Score})
	}
	var resp messageResponse
	if err := c.do(ctx, op, http.MethodPost, "/api/assess-member/"+strconv.Itoa(employeeID), nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

type chartData struct {
	SkillIDs      []int         `json:"skill_ids"`
	Labels        []string      `json:"labels"`
	Categories    []string      `json:"categories"`
	SelfScores    []model.Score `json:"self_scores"`
	ManagerScores []model.Score `json:"manager_scores"`
}

type userSkillsResponse struct {
	User      model.User `json:"user"`
	ChartData chartData  `json:"chart_data"`
}

// UserSkills loads every skill with the employee's scores. Skills are
// identified by skill_ids when the backend sends them and by position
// (starting at 1) otherwise.
func (c *Client) UserSkills(ctx context.Context, userID int) (model.User, []model.SkillScores, error) {
	const op = "user_skills"
	var resp userSkillsResponse
	if err := c.do(ctx, op, http.MethodGet, "/api/user/"+strconv.Itoa(userID)+"/skills", nil, nil, &resp); err != nil {
		return model.User{}, nil, err
	}
	cd := resp.ChartData
	out := make([]model.SkillScores, len(cd.Labels))
	for i, label := range cd.Labels {
		id := i + 1
		if i < len(cd.SkillIDs) {
			id = cd.SkillIDs[i]
		}
		out[i] = model.SkillScores{
			Skill: model.Skill{ID: id, Name: label, Category: at(cd.Categories, i)},
			Scores: model.ScoreSet{
				Self:    at(cd.SelfScores, i),
				Manager: at(cd.ManagerScores, i),
			},
		}
	}
	return resp.User, out, nil
}

func at[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}
