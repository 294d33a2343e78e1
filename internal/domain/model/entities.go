package model

import "fmt"

// Skill is immutable for the lifetime of a session.
type Skill struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

// Role is an account role.
type Role string

// Roles known to the backend.
const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// Roles lists every role in display order.
var Roles = []Role{RoleEmployee, RoleManager, RoleHR, RoleAdmin}

// ReadOnly reports whether the role may only view scores.
func (r Role) ReadOnly() bool { return r == RoleHR }

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Department is an organisational unit.
type Department struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is the client view of an account.
type User struct {
	ID           int    `json:"id"`
	Login        string `json:"login,omitempty"`
	FullName     string `json:"full_name"`
	Email        string `json:"email,omitempty"`
	Role         Role   `json:"role"`
	Position     string `json:"position,omitempty"`
	Department   string `json:"department,omitempty"`
	DepartmentID int    `json:"department_id,omitempty"`
}

// SkillScores pairs a skill with its scores for one employee.
type SkillScores struct {
	Skill  Skill
	Scores ScoreSet
}

// ComparisonRow is one skill in a two-employee comparison.
type ComparisonRow struct {
	SkillID    int
	SkillName  string
	Category   string
	User1Score Score
	User2Score Score
	Difference int
}

// BothRated reports whether both employees have a score for the skill.
func (r ComparisonRow) BothRated() bool {
	return r.User1Score.IsSet() && r.User2Score.IsSet()
}

// Comparison is the result of comparing two employees.
type Comparison struct {
	User1 User
	User2 User
	Rows  []ComparisonRow
}

// SkillMatch is one employee found by a skill search.
type SkillMatch struct {
	User   User
	Scores ScoreSet
}

// Counters are named dashboard numbers, e.g. total_users or avg_score.
type Counters map[string]float64

// RoleCount is the number of accounts holding a role.
type RoleCount struct {
	Role  Role `json:"role"`
	Count int  `json:"count"`
}

// DepartmentStat summarises a department.
type DepartmentStat struct {
	Department string  `json:"department"`
	Count      int     `json:"count"`
	AvgScore   float64 `json:"avg_score"`
}

// HRStats is the HR analytics payload.
type HRStats struct {
	Counters     Counters
	Roles        []RoleCount
	Departments  []DepartmentStat
	// Distribution counts final scores per level.
	Distribution map[Score]int
}

// PendingChange is a staged manager score awaiting a batch save.
type PendingChange struct {
	SkillID int
	Score   Score
}
