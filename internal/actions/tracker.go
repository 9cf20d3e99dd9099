// Package actions tracks corrective actions raised against incidents.
package actions

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"safety-analytics-go/internal/normalize"
	"safety-analytics-go/internal/types"
)

const dateLayout = "2006-01-02"

var (
	ErrNotFound          = errors.New("action not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalid           = errors.New("invalid action")
)

// transitions lists the statuses reachable from each status. Completed is
// terminal.
var transitions = map[types.ActionStatus][]types.ActionStatus{
	types.ActionOpen:       {types.ActionInProgress, types.ActionCompleted, types.ActionOverdue},
	types.ActionInProgress: {types.ActionOpen, types.ActionCompleted, types.ActionOverdue},
	types.ActionOverdue:    {types.ActionInProgress, types.ActionCompleted},
	types.ActionCompleted:  {},
}

// NewAction is the caller-supplied part of an action item.
type NewAction struct {
	IncidentID  string               `json:"incident_id"`
	Type        string               `json:"type"`
	Action      string               `json:"action"`
	Responsible string               `json:"responsible"`
	DueDate     string               `json:"due_date"`
	Priority    types.ActionPriority `json:"priority"`
}

// Tracker is an in-memory, concurrency-safe action list.
type Tracker struct {
	mu    sync.RWMutex
	items []types.ActionItem
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// WithClock replaces the tracker's time source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Create validates in and appends a new open action.
func (t *Tracker) Create(in NewAction) (types.ActionItem, error) {
	if strings.TrimSpace(in.Action) == "" {
		return types.ActionItem{}, fmt.Errorf("%w: action text is required", ErrInvalid)
	}
	switch in.Type {
	case "":
		in.Type = "injury"
	case "injury", "nearmiss":
	default:
		return types.ActionItem{}, fmt.Errorf("%w: type %q", ErrInvalid, in.Type)
	}
	switch in.Priority {
	case "":
		in.Priority = types.PriorityMedium
	case types.PriorityLow, types.PriorityMedium, types.PriorityHigh, types.PriorityCritical:
	default:
		return types.ActionItem{}, fmt.Errorf("%w: priority %q", ErrInvalid, in.Priority)
	}
	due := ""
	if strings.TrimSpace(in.DueDate) != "" {
		d, ok := normalize.ParseDate(in.DueDate)
		if !ok {
			return types.ActionItem{}, fmt.Errorf("%w: due date %q", ErrInvalid, in.DueDate)
		}
		due = d.Format(dateLayout)
	}

	item := types.ActionItem{
		ID:          uuid.New().String(),
		IncidentID:  strings.TrimSpace(in.IncidentID),
		Type:        in.Type,
		Action:      strings.TrimSpace(in.Action),
		Responsible: strings.TrimSpace(in.Responsible),
		DueDate:     due,
		CreatedDate: t.now().Format(dateLayout),
		Status:      types.ActionOpen,
		Priority:    in.Priority,
	}
	t.mu.Lock()
	t.items = append(t.items, item)
	t.mu.Unlock()
	return item, nil
}

// List returns a copy of all actions, newest first.
func (t *Tracker) List() []types.ActionItem {
	t.mu.RLock()
	out := make([]types.ActionItem, len(t.items))
	copy(out, t.items)
	t.mu.RUnlock()
	return lo.Reverse(out)
}

func (t *Tracker) Get(id string) (types.ActionItem, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.index(id); i >= 0 {
		return t.items[i], nil
	}
	return types.ActionItem{}, ErrNotFound
}

// UpdateStatus moves an action to status. Setting the current status again
// is a no-op; completing stamps the completed date.
func (t *Tracker) UpdateStatus(id string, status types.ActionStatus) (types.ActionItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(id)
	if i < 0 {
		return types.ActionItem{}, ErrNotFound
	}
	item := t.items[i]
	if item.Status == status {
		return item, nil
	}
	if !lo.Contains(transitions[item.Status], status) {
		return item, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, item.Status, status)
	}
	item.Status = status
	if status == types.ActionCompleted {
		item.CompletedDate = t.now().Format(dateLayout)
	}
	t.items[i] = item
	return item, nil
}

// Stats tallies actions by status. Overdue counts every action not yet
// completed whose due date has passed, whatever its stored status.
func (t *Tracker) Stats() types.ActionStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	today := t.now().Format(dateLayout)
	var s types.ActionStats
	s.Total = len(t.items)
	for _, a := range t.items {
		switch a.Status {
		case types.ActionOpen:
			s.Open++
		case types.ActionInProgress:
			s.InProgress++
		case types.ActionCompleted:
			s.Completed++
		}
		if a.Status != types.ActionCompleted && a.DueDate != "" && a.DueDate < today {
			s.Overdue++
		}
	}
	return s
}

// Reset drops every action.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.items = nil
	t.mu.Unlock()
}

func (t *Tracker) index(id string) int {
	_, i, ok := lo.FindIndexOf(t.items, func(a types.ActionItem) bool { return a.ID == id })
	if !ok {
		return -1
	}
	return i
}
