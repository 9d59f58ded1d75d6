package sync

import (
	"math"
	"strings"
	"time"

	"github.com/taskflow/task-sync/internal/models"
)

// StatusFilter selects tasks by lifecycle state. "all", "active" and
// "completed" form the tri-state personal mode; the workflow statuses are
// the four-state group mode.
type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterActive     StatusFilter = "active"
	FilterCompleted  StatusFilter = "completed"
	FilterPending    StatusFilter = "pending"
	FilterInProgress StatusFilter = "in-progress"
)

// PriorityAll disables priority filtering.
const PriorityAll = "all"

// Filter is the user-supplied view criteria.
type Filter struct {
	Search   string
	Priority string
	Status   StatusFilter
}

// PriorityStats counts the tasks of one priority level.
type PriorityStats struct {
	Total     int
	Completed int
}

// Stats are the summary figures derived from a task cache.
type Stats struct {
	Total      int
	Completed  int
	Active     int
	Percent    int
	ByPriority map[models.TaskPriority]PriorityStats
}

func matchesStatus(t models.Task, f StatusFilter) bool {
	switch f {
	case "", FilterAll:
		return true
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return t.Status == models.TaskStatus(f)
	}
}

// Project derives the visible task slice from the cache and the filter
// criteria: case-insensitive substring match on the description, priority
// equality unless the priority filter is "all", and the selected status
// mode. The input order is preserved; everything is recomputed from
// scratch on every call.
func Project(tasks []models.Task, f Filter) []models.Task {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	var out []models.Task
	for _, t := range tasks {
		if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.Priority != "" && f.Priority != PriorityAll && t.Priority != models.TaskPriority(f.Priority) {
			continue
		}
		if !matchesStatus(t, f.Status) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summarize derives the summary figures: totals, a rounded completion
// percentage (0 for an empty cache), and per-priority counts.
func Summarize(tasks []models.Task) Stats {
	stats := Stats{ByPriority: make(map[models.TaskPriority]PriorityStats)}
	for _, t := range tasks {
		stats.Total++
		p := stats.ByPriority[t.Priority]
		p.Total++
		if t.Completed {
			stats.Completed++
			p.Completed++
		}
		stats.ByPriority[t.Priority] = p
	}
	stats.Active = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.Percent = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats
}

// Overdue returns the tasks whose due date falls strictly before today's
// calendar date and that are not completed. A completed task is never
// overdue regardless of its date.
func Overdue(tasks []models.Task, today time.Time) []models.Task {
	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var out []models.Task
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(startOfToday) {
			out = append(out, t)
		}
	}
	return out
}

// View projects the engine's task cache through the filter.
func (e *Engine) View(f Filter) []models.Task {
	return Project(e.Tasks(), f)
}

// Stats summarizes the engine's task cache.
func (e *Engine) Stats() Stats {
	return Summarize(e.Tasks())
}

// OverdueTasks returns the engine's overdue tasks as of now.
func (e *Engine) OverdueTasks() []models.Task {
	e.mu.Lock()
	now := e.now()
	e.mu.Unlock()
	return Overdue(e.Tasks(), now)
}
