package postgrest

import (
	"fmt"
	"time"

	"github.com/taskflow/task-sync/internal/models"
)

// pgError is the error body of a failed command.
type pgError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

type taskRow struct {
	Id          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DueDate     string    `json:"due_date,omitempty"`
	GroupID     *string   `json:"group_id,omitempty"`
	Assignees   []string  `json:"assignees,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type insertTaskRequest struct {
	OwnerID     string   `json:"owner_id"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	DueDate     string   `json:"due_date,omitempty"`
	GroupID     *string  `json:"group_id,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
}

type patchTaskRequest struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

type profileRow struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type groupRow struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type insertGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"created_by"`
}

type memberRow struct {
	GroupID   string      `json:"group_id"`
	UserID    string      `json:"user_id"`
	Role      string      `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	Profile   *profileRow `json:"profiles,omitempty"`
}

type insertMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
}

type commentRow struct {
	Id        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type insertCommentRequest struct {
	TaskID   string `json:"task_id"`
	AuthorID string `json:"author_id"`
	Content  string `json:"content"`
}

type activityRow struct {
	Id        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	TaskID    string    `json:"task_id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type insertActivityRequest struct {
	GroupID string `json:"group_id"`
	TaskID  string `json:"task_id"`
	ActorID string `json:"actor_id"`
	Action  string `json:"action"`
	Details string `json:"details,omitempty"`
}

type notificationRow struct {
	Id        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

type insertNotificationRequest struct {
	UserID  string            `json:"user_id"`
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("parse due_date: %w", err)
	}
	utc := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
	return &utc, nil
}

func formatDueDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func (r taskRow) toModel() (models.Task, error) {
	due, err := parseDueDate(r.DueDate)
	if err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:          r.Id,
		OwnerID:     r.OwnerID,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    models.TaskPriority(r.Priority),
		Status:      models.TaskStatus(r.Status),
		DueDate:     due,
		GroupID:     r.GroupID,
		Assignees:   r.Assignees,
		CreatedAt:   r.CreatedAt,
	}
	task.Normalize()
	return task, nil
}

func (r profileRow) toModel() models.Profile {
	return models.Profile{
		ID:        r.Id,
		Email:     r.Email,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

func (r groupRow) toModel() models.Group {
	return models.Group{
		ID:          r.Id,
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
}

func (r memberRow) toModel() models.Membership {
	m := models.Membership{
		GroupID:   r.GroupID,
		UserID:    r.UserID,
		Role:      models.Role(r.Role),
		CreatedAt: r.CreatedAt,
	}
	if r.Profile != nil {
		m.Email = r.Profile.Email
		m.Name = r.Profile.Name
	}
	return m
}
