package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/skillmatrix/internal/domain/model"
)

// UserInput is the create/update form for an account. Password may be
// empty on update to keep the current one.
type UserInput struct {
	FullName     string     `json:"full_name" validate:"required,min=2,max=100"`
	Login        string     `json:"login" validate:"required,min=3,max=50"`
	Email        string     `json:"email,omitempty" validate:"omitempty,email"`
	Role         model.Role `json:"role" validate:"required,oneof=employee manager hr admin"`
	Position     string     `json:"position,omitempty" validate:"max=100"`
	DepartmentID int        `json:"department_id,omitempty" validate:"gte=0"`
	Status       string     `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Password     string     `json:"password,omitempty" validate:"omitempty,password"`
}

type departmentsResponse struct {
	Departments []model.Department `json:"departments"`
}

// Departments lists every department ordered by name.
func (c *Client) Departments(ctx context.Context) ([]model.Department, error) {
	var resp departmentsResponse
	if err := c.do(ctx, "departments", http.MethodGet, "/hr/api/departments", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Departments, nil
}

type userResponse struct {
	User model.User `json:"user"`
}

// GetUser loads one account.
func (c *Client) GetUser(ctx context.Context, id int) (model.User, error) {
	var resp userResponse
	if err := c.do(ctx, "get_user", http.MethodGet, userPath(id), nil, nil, &resp); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}

type createUserResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

// CreateUser creates an account and returns its id.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (int, string, error) {
	var resp createUserResponse
	if err := c.do(ctx, "create_user", http.MethodPost, "/hr/api/users", nil, in, &resp); err != nil {
		return 0, "", err
	}
	return resp.UserID, resp.Message, nil
}

// UpdateUser replaces the editable fields of an account.
func (c *Client) UpdateUser(ctx context.Context, id int, in UserInput) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, "update_user", http.MethodPut, userPath(id), nil, in, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, "delete_user", http.MethodDelete, userPath(id), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func userPath(id int) string { return "/hr/api/users/" + strconv.Itoa(id) }
