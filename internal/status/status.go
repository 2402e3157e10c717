// Package status owns the workflow lifecycle status graph. All status
// changes go through this package; callers persist the result.
package status

import (
	"errors"
	"fmt"

	"github.com/sop-architect/backend/pkg/models"
)

// stateInfo bundles the presentation metadata and the strict forward and
// backward neighbors for one lifecycle status. Keeping everything in a
// single table prevents the label, color and transition maps from drifting
// apart.
type stateInfo struct {
	label string
	color string
	next  models.WorkflowStatus // "" at the terminal state
	prev  models.WorkflowStatus // "" at the initial state
}

var states = map[models.WorkflowStatus]stateInfo{
	models.StatusDraft:      {label: "草稿", color: "slate", next: models.StatusWorkerDone},
	models.StatusWorkerDone: {label: "待专家整理", color: "amber", next: models.StatusExpertDone, prev: models.StatusDraft},
	models.StatusExpertDone: {label: "待AI分析", color: "blue", next: models.StatusAnalyzed, prev: models.StatusWorkerDone},
	models.StatusAnalyzed:   {label: "待复核", color: "purple", next: models.StatusConfirmed, prev: models.StatusExpertDone},
	models.StatusConfirmed:  {label: "已确认", color: "emerald", next: models.StatusDelivered, prev: models.StatusAnalyzed},
	models.StatusDelivered:  {label: "已交付", color: "green", prev: models.StatusConfirmed},
}

var (
	// ErrTerminalState is returned by Advance when the workflow is
	// already delivered.
	ErrTerminalState = errors.New("workflow is already in the final state")

	// ErrInitialState is returned by Rollback when the workflow is
	// still a draft.
	ErrInitialState = errors.New("workflow is already in the initial state")
)

// TransitionError reports a rejected status transition together with the
// transitions that would have been legal. It is an expected business
// outcome, not a system failure.
type TransitionError struct {
	From    models.WorkflowStatus
	To      models.WorkflowStatus
	Allowed []models.WorkflowStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition from %s to %s is not allowed", Label(e.From), Label(e.To))
}

// Info is the presentation view of a workflow status.
type Info struct {
	Status             models.WorkflowStatus   `json:"status"`
	Label              string                  `json:"label"`
	Color              string                  `json:"color"`
	AllowedTransitions []models.WorkflowStatus `json:"allowed_transitions"`
}

// Label returns the display label for a status, falling back to the raw
// status string for unknown values.
func Label(s models.WorkflowStatus) string {
	if info, ok := states[s]; ok {
		return info.label
	}
	return string(s)
}

// Color returns the display color for a status. Unknown statuses render
// as slate.
func Color(s models.WorkflowStatus) string {
	if info, ok := states[s]; ok {
		return info.color
	}
	return "slate"
}

// Allowed returns the set of statuses the given status may transition to,
// backward neighbor first. An unknown status yields an empty set, which is
// a data-integrity error on the caller's side.
func Allowed(s models.WorkflowStatus) []models.WorkflowStatus {
	info, ok := states[s]
	if !ok {
		return []models.WorkflowStatus{}
	}
	allowed := make([]models.WorkflowStatus, 0, 2)
	if info.prev != "" {
		allowed = append(allowed, info.prev)
	}
	if info.next != "" {
		allowed = append(allowed, info.next)
	}
	return allowed
}

// Get returns the full presentation view for a status.
func Get(s models.WorkflowStatus) Info {
	return Info{
		Status:             s,
		Label:              Label(s),
		Color:              Color(s),
		AllowedTransitions: Allowed(s),
	}
}

// Transition validates a move from current to target and returns the new
// status. Both forward and backward adjacent moves are permitted; anything
// else fails with a *TransitionError carrying the legal alternatives. The
// input is never mutated on failure.
func Transition(current, target models.WorkflowStatus) (models.WorkflowStatus, error) {
	for _, s := range Allowed(current) {
		if s == target {
			return target, nil
		}
	}
	return current, &TransitionError{From: current, To: target, Allowed: Allowed(current)}
}

// Advance moves strictly forward one step. It never consults the
// bidirectional transition set; forward progression is a strict subset.
func Advance(current models.WorkflowStatus) (models.WorkflowStatus, error) {
	info, ok := states[current]
	if !ok || info.next == "" {
		return current, ErrTerminalState
	}
	return info.next, nil
}

// Rollback moves strictly backward one step.
func Rollback(current models.WorkflowStatus) (models.WorkflowStatus, error) {
	info, ok := states[current]
	if !ok || info.prev == "" {
		return current, ErrInitialState
	}
	return info.prev, nil
}
