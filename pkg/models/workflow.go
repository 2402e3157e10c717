// Package models defines the domain models for the SOP authoring service
package models

import (
	"time"
)

// WorkflowStatus represents the lifecycle status of a workflow.
//
// The intended progression is:
//
//	draft -> worker_done -> expert_done -> analyzed -> confirmed -> delivered
type WorkflowStatus string

const (
	StatusDraft      WorkflowStatus = "draft"
	StatusWorkerDone WorkflowStatus = "worker_done"
	StatusExpertDone WorkflowStatus = "expert_done"
	StatusAnalyzed   WorkflowStatus = "analyzed"
	StatusConfirmed  WorkflowStatus = "confirmed"
	StatusDelivered  WorkflowStatus = "delivered"
)

// StepStatus represents the completion status of a task or step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
)

// ContextType represents the kind of material attached to a step's context.
type ContextType string

const (
	ContextTypeImage ContextType = "image"
	ContextTypeText  ContextType = "text"
	ContextTypeVoice ContextType = "voice"
)

// LogicStrategy represents how a step's evaluation logic is defined.
type LogicStrategy string

const (
	StrategyRuleBased LogicStrategy = "rule_based"
	StrategyFewShot   LogicStrategy = "few_shot"
)

// ExampleLabel classifies a few-shot example as a positive or negative sample.
type ExampleLabel string

const (
	LabelPass ExampleLabel = "PASS"
	LabelFail ExampleLabel = "FAIL"
)

// NoteContentType represents the media type of a step note.
type NoteContentType string

const (
	NoteContentImage NoteContentType = "image"
	NoteContentVoice NoteContentType = "voice"
	NoteContentVideo NoteContentType = "video"
	NoteContentText  NoteContentType = "text"
)

// NoteAuthor identifies which role created a step note.
type NoteAuthor string

const (
	AuthorWorker NoteAuthor = "worker"
	AuthorExpert NoteAuthor = "expert"
)

// Workflow represents a complete SOP workflow definition.
type Workflow struct {
	ID            string         `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Description   string         `json:"description" db:"description"`
	CoverImageURL string         `json:"cover_image_url" db:"cover_image_url"`
	Status        WorkflowStatus `json:"status" db:"status"`
	IsTemplate    bool           `json:"is_template" db:"is_template"`

	// TemplateID records which template this workflow was cloned from.
	// It is provenance metadata only, never an ownership edge.
	TemplateID *string `json:"template_id,omitempty" db:"template_id"`

	Tasks []*Task         `json:"tasks,omitempty"`
	Steps []*WorkflowStep `json:"steps,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Task represents a named group of steps within a workflow.
type Task struct {
	ID          string     `json:"id" db:"id"`
	WorkflowID  string     `json:"workflow_id" db:"workflow_id"`
	Name        string     `json:"name" db:"name"`
	TaskOrder   int        `json:"task_order" db:"task_order"`
	Description string     `json:"description" db:"description"`
	Status      StepStatus `json:"status" db:"status"`

	Steps []*WorkflowStep `json:"steps,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WorkflowStep represents a single step in a workflow. A step carries four
// grouped data blocks filled in at different stages of authoring: context
// (raw material captured by the worker), extraction (what to pull out of the
// material), logic (how to judge it) and routing (where to go next).
type WorkflowStep struct {
	ID         string     `json:"id" db:"id"`
	WorkflowID string     `json:"workflow_id" db:"workflow_id"`
	TaskID     *string    `json:"task_id,omitempty" db:"task_id"`
	Name       string     `json:"name" db:"name"`
	StepOrder  int        `json:"step_order" db:"step_order"`
	Status     StepStatus `json:"status" db:"status"`

	// Context block
	ContextType            ContextType `json:"context_type" db:"context_type"`
	ContextImageURL        string      `json:"context_image_url" db:"context_image_url"`
	ContextTextContent     string      `json:"context_text_content" db:"context_text_content"`
	ContextVoiceTranscript string      `json:"context_voice_transcript" db:"context_voice_transcript"`
	ContextDescription     string      `json:"context_description" db:"context_description"`

	// Extraction block
	ExtractionKeywords        []string `json:"extraction_keywords" db:"extraction_keywords"`
	ExtractionVoiceTranscript string   `json:"extraction_voice_transcript" db:"extraction_voice_transcript"`

	// Logic block
	LogicStrategy         LogicStrategy `json:"logic_strategy" db:"logic_strategy"`
	LogicRuleExpression   string        `json:"logic_rule_expression" db:"logic_rule_expression"`
	LogicEvaluationPrompt string        `json:"logic_evaluation_prompt" db:"logic_evaluation_prompt"`

	// Routing block
	RoutingDefaultNext string `json:"routing_default_next" db:"routing_default_next"`

	// ExpertNotes holds the expert's consolidated write-up for this step.
	ExpertNotes string `json:"expert_notes" db:"expert_notes"`

	Examples        []*Example       `json:"examples,omitempty"`
	RoutingBranches []*RoutingBranch `json:"routing_branches,omitempty"`
	Notes           []*StepNote      `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Example represents a labeled few-shot sample attached to a step.
type Example struct {
	ID          string       `json:"id" db:"id"`
	StepID      string       `json:"step_id" db:"step_id"`
	Content     string       `json:"content" db:"content"`
	ContentType string       `json:"content_type" db:"content_type"`
	Label       ExampleLabel `json:"label" db:"label"`
	Description string       `json:"description" db:"description"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RoutingBranch represents a conditional routing rule on a step. The
// identifiers are free-form and are not validated against the step graph.
type RoutingBranch struct {
	ID              string `json:"id" db:"id"`
	StepID          string `json:"step_id" db:"step_id"`
	ConditionResult string `json:"condition_result" db:"condition_result"`
	ActionType      string `json:"action_type" db:"action_type"`
	NextStepID      string `json:"next_step_id" db:"next_step_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StepNote represents a media attachment or free-text note on a step.
type StepNote struct {
	ID              string          `json:"id" db:"id"`
	StepID          string          `json:"step_id" db:"step_id"`
	ContentType     NoteContentType `json:"content_type" db:"content_type"`
	Content         string          `json:"content" db:"content"`
	VoiceTranscript string          `json:"voice_transcript" db:"voice_transcript"`
	CreatedBy       NoteAuthor      `json:"created_by" db:"created_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
