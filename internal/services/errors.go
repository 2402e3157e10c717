package services

import "errors"

// Not-found errors are terminal failures surfaced to the caller as 404s.
var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrStepNotFound     = errors.New("step not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrExampleNotFound  = errors.New("example not found")
	ErrBranchNotFound   = errors.New("routing branch not found")

	// ErrStepOrderConflict is returned when a step is created at an
	// order that is already occupied within the workflow.
	ErrStepOrderConflict = errors.New("step order already exists in workflow")

	// ErrLLMDisabled is returned by the analysis service when no LLM
	// backend is configured.
	ErrLLMDisabled = errors.New("llm service is disabled")
)
