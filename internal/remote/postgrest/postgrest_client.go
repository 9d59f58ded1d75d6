// Package postgrest implements the remote contract against a hosted
// PostgREST-style collection endpoint.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/taskflow/task-sync/internal/models"
	"github.com/taskflow/task-sync/internal/remote"
)

type Client struct {
	baseUrl    string
	apiKey     string
	token      func() string
	httpClient *http.Client
}

// NewClient builds a client for the collection endpoint at baseURL. The
// apiKey is sent on every request; httpClient may be nil for a default
// client with a 10s timeout.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseUrl:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// SetTokenSource installs the provider of the current user access token.
// Row visibility is enforced remotely from this token.
func (c *Client) SetTokenSource(token func() string) {
	c.token = token
}

// do runs one command against a collection. A non-nil out decodes the
// response body; inserts that want the created row back send the
// return=representation preference.
func (c *Client) do(ctx context.Context, method, collection string, query url.Values, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request (%s): %w", collection, err)
		}
		reqBody = bytes.NewBuffer(b)
	}

	endpoint := c.baseUrl + "/" + collection
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request (%s): %w", collection, err)
	}

	req.Header.Set("apikey", c.apiKey)
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && out != nil {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		errorBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read error body (%s): %w", collection, err)
		}
		apiErr := &remote.APIError{Status: resp.StatusCode}
		var pgErr pgError
		if err := json.Unmarshal(errorBody, &pgErr); err == nil {
			apiErr.Code = pgErr.Code
			apiErr.Message = pgErr.Message
		}
		return apiErr
	}

	if out != nil {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body (%s): %w", collection, err)
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse response (%s): %w", collection, err)
		}
	}

	return nil
}

// insertOne posts a single row and decodes the created row from the
// returned representation (an array of one).
func (c *Client) insertOne(ctx context.Context, collection string, body, out interface{}) error {
	raw := json.RawMessage{}
	if err := c.do(ctx, http.MethodPost, collection, nil, body, &raw); err != nil {
		return err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("parse inserted row (%s): %w", collection, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("insert (%s): no row returned", collection)
	}
	if err := json.Unmarshal(rows[0], out); err != nil {
		return fmt.Errorf("parse inserted row (%s): %w", collection, err)
	}
	return nil
}

func (c *Client) ListTasks(ctx context.Context, scope remote.Scope) ([]models.Task, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "created_at.desc")
	if scope.IsGroup() {
		query.Set("group_id", "eq."+scope.GroupID)
	} else {
		query.Set("owner_id", "eq."+scope.OwnerID)
		query.Set("group_id", "is.null")
	}

	var rows []taskRow
	if err := c.do(ctx, http.MethodGet, "tasks", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		task, err := r.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (c *Client) InsertTask(ctx context.Context, task models.Task) (models.Task, error) {
	reqBody := insertTaskRequest{
		OwnerID:     task.OwnerID,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		DueDate:     formatDueDate(task.DueDate),
		GroupID:     task.GroupID,
		Assignees:   task.Assignees,
	}

	var row taskRow
	if err := c.insertOne(ctx, "tasks", reqBody, &row); err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return row.toModel()
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) error {
	reqBody := patchTaskRequest{
		Description: patch.Description,
		Completed:   patch.Completed,
	}
	if patch.Priority != nil {
		p := string(*patch.Priority)
		reqBody.Priority = &p
	}
	if patch.Status != nil {
		s := string(*patch.Status)
		reqBody.Status = &s
	}
	if patch.DueDate != nil {
		d := formatDueDate(patch.DueDate)
		reqBody.DueDate = &d
	}

	query := url.Values{}
	query.Set("id", "eq."+id)
	if err := c.do(ctx, http.MethodPatch, "tasks", query, reqBody, nil); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	query := url.Values{}
	query.Set("id", "eq."+id)
	if err := c.do(ctx, http.MethodDelete, "tasks", query, nil, nil); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (c *Client) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	query := url.Values{}
	query.Set("id", "eq."+userID)

	var rows []profileRow
	if err := c.do(ctx, http.MethodGet, "profiles", query, nil, &rows); err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if len(rows) == 0 {
		return models.Profile{}, remote.ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (c *Client) FindProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	// ilike with no wildcard is an exact case-insensitive match.
	query := url.Values{}
	query.Set("email", "ilike."+email)

	var rows []profileRow
	if err := c.do(ctx, http.MethodGet, "profiles", query, nil, &rows); err != nil {
		return models.Profile{}, fmt.Errorf("find profile by email: %w", err)
	}
	if len(rows) == 0 {
		return models.Profile{}, remote.ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (c *Client) ListGroups(ctx context.Context, userID string) ([]models.Group, error) {
	query := url.Values{}
	query.Set("select", "*,group_members!inner(user_id)")
	query.Set("group_members.user_id", "eq."+userID)
	query.Set("order", "created_at.desc")

	var rows []groupRow
	if err := c.do(ctx, http.MethodGet, "groups", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	groups := make([]models.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.toModel())
	}
	return groups, nil
}

func (c *Client) InsertGroup(ctx context.Context, group models.Group) (models.Group, error) {
	reqBody := insertGroupRequest{
		Name:        group.Name,
		Description: group.Description,
		CreatedBy:   group.CreatedBy,
	}

	var row groupRow
	if err := c.insertOne(ctx, "groups", reqBody, &row); err != nil {
		return models.Group{}, fmt.Errorf("insert group: %w", err)
	}
	return row.toModel(), nil
}

func (c *Client) ListMembers(ctx context.Context, groupID string) ([]models.Membership, error) {
	query := url.Values{}
	query.Set("select", "*,profiles(email,name)")
	query.Set("group_id", "eq."+groupID)
	query.Set("order", "created_at.asc")

	var rows []memberRow
	if err := c.do(ctx, http.MethodGet, "group_members", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]models.Membership, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.toModel())
	}
	return members, nil
}

func (c *Client) InsertMembership(ctx context.Context, m models.Membership) error {
	reqBody := insertMemberRequest{
		GroupID: m.GroupID,
		UserID:  m.UserID,
		Role:    string(m.Role),
	}
	if err := c.do(ctx, http.MethodPost, "group_members", nil, reqBody, nil); err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (c *Client) DeleteMembership(ctx context.Context, groupID, userID string) error {
	query := url.Values{}
	query.Set("group_id", "eq."+groupID)
	query.Set("user_id", "eq."+userID)
	if err := c.do(ctx, http.MethodDelete, "group_members", query, nil, nil); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	return nil
}

func (c *Client) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	query := url.Values{}
	query.Set("task_id", "eq."+taskID)
	query.Set("order", "created_at.asc")

	var rows []commentRow
	if err := c.do(ctx, http.MethodGet, "comments", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, models.Comment{
			ID:        r.Id,
			TaskID:    r.TaskID,
			AuthorID:  r.AuthorID,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
		})
	}
	return comments, nil
}

func (c *Client) InsertComment(ctx context.Context, comment models.Comment) (models.Comment, error) {
	reqBody := insertCommentRequest{
		TaskID:   comment.TaskID,
		AuthorID: comment.AuthorID,
		Content:  comment.Content,
	}

	var row commentRow
	if err := c.insertOne(ctx, "comments", reqBody, &row); err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return models.Comment{
		ID:        row.Id,
		TaskID:    row.TaskID,
		AuthorID:  row.AuthorID,
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (c *Client) ListActivity(ctx context.Context, groupID string, limit int) ([]models.ActivityRecord, error) {
	query := url.Values{}
	query.Set("group_id", "eq."+groupID)
	query.Set("order", "created_at.desc")
	query.Set("limit", strconv.Itoa(limit))

	var rows []activityRow
	if err := c.do(ctx, http.MethodGet, "activity_logs", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	records := make([]models.ActivityRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.ActivityRecord{
			ID:        r.Id,
			GroupID:   r.GroupID,
			TaskID:    r.TaskID,
			ActorID:   r.ActorID,
			Action:    models.ActivityAction(r.Action),
			Details:   r.Details,
			CreatedAt: r.CreatedAt,
		})
	}
	return records, nil
}

func (c *Client) InsertActivity(ctx context.Context, rec models.ActivityRecord) error {
	reqBody := insertActivityRequest{
		GroupID: rec.GroupID,
		TaskID:  rec.TaskID,
		ActorID: rec.ActorID,
		Action:  string(rec.Action),
		Details: rec.Details,
	}
	if err := c.do(ctx, http.MethodPost, "activity_logs", nil, reqBody, nil); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (c *Client) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("order", "created_at.desc")
	query.Set("limit", strconv.Itoa(limit))

	var rows []notificationRow
	if err := c.do(ctx, http.MethodGet, "notifications", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	ns := make([]models.Notification, 0, len(rows))
	for _, r := range rows {
		ns = append(ns, models.Notification{
			ID:          r.Id,
			RecipientID: r.UserID,
			Type:        models.NotificationType(r.Type),
			Title:       r.Title,
			Message:     r.Message,
			Data:        r.Data,
			Read:        r.Read,
			CreatedAt:   r.CreatedAt,
		})
	}
	return ns, nil
}

func (c *Client) InsertNotifications(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	reqBody := make([]insertNotificationRequest, 0, len(ns))
	for _, n := range ns {
		reqBody = append(reqBody, insertNotificationRequest{
			UserID:  n.RecipientID,
			Type:    string(n.Type),
			Title:   n.Title,
			Message: n.Message,
			Data:    n.Data,
		})
	}
	if err := c.do(ctx, http.MethodPost, "notifications", nil, reqBody, nil); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id, userID string) error {
	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("user_id", "eq."+userID)
	if err := c.do(ctx, http.MethodPatch, "notifications", query, map[string]bool{"read": true}, nil); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)
	query.Set("read", "eq.false")
	if err := c.do(ctx, http.MethodPatch, "notifications", query, map[string]bool{"read": true}, nil); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

var _ remote.API = (*Client)(nil)
