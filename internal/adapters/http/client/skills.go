package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/skillmatrix/internal/domain/model"
)

// SkillInput is the create/update form for a skill.
type SkillInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Category    string `json:"category" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"max=500"`
}

// SkillInfo is a catalogue entry with its usage count.
type SkillInfo struct {
	model.Skill
	AssessmentsCount int `json:"assessments_count"`
}

type skillsResponse struct {
	Skills []SkillInfo `json:"skills"`
}

// Skills lists the catalogue ordered by category and name.
func (c *Client) Skills(ctx context.Context) ([]SkillInfo, error) {
	var resp skillsResponse
	if err := c.do(ctx, "list_skills", http.MethodGet, "/api/skills", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Skills, nil
}

type skillResponse struct {
	Message string      `json:"message"`
	Skill   model.Skill `json:"skill"`
}

// CreateSkill adds a skill. A duplicate name in the same category is a
// conflict.
func (c *Client) CreateSkill(ctx context.Context, in SkillInput) (model.Skill, string, error) {
	var resp skillResponse
	if err := c.do(ctx, "create_skill", http.MethodPost, "/api/skills", nil, in, &resp); err != nil {
		return model.Skill{}, "", err
	}
	return resp.Skill, resp.Message, nil
}

// UpdateSkill edits a skill.
func (c *Client) UpdateSkill(ctx context.Context, id int, in SkillInput) (model.Skill, string, error) {
	var resp skillResponse
	if err := c.do(ctx, "update_skill", http.MethodPut, skillPath(id), nil, in, &resp); err != nil {
		return model.Skill{}, "", err
	}
	return resp.Skill, resp.Message, nil
}

// DeleteSkill removes a skill. The backend answers 409 while assessments
// reference it.
func (c *Client) DeleteSkill(ctx context.Context, id int) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, "delete_skill", http.MethodDelete, skillPath(id), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

type categoryRequest struct {
	Name string `json:"name"`
}

// RenameCategory moves every skill of category name to newName. The path
// segment is escaped when the URL is built.
func (c *Client) RenameCategory(ctx context.Context, name, newName string) (string, error) {
	var resp messageResponse
	path := "/api/categories/" + name
	if err := c.do(ctx, "rename_category", http.MethodPut, path, nil, categoryRequest{Name: newName}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func skillPath(id int) string { return "/api/skills/" + strconv.Itoa(id) }
