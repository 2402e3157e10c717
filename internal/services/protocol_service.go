package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sop-architect/backend/internal/protocol"
	"github.com/sop-architect/backend/internal/repository"
)

// ProtocolService loads a workflow aggregate and projects it into the
// protocol document consumed by the downstream automation engine.
type ProtocolService struct {
	store  repository.WorkflowStore
	tracer trace.Tracer
}

// NewProtocolService creates a new ProtocolService.
func NewProtocolService(store repository.WorkflowStore) *ProtocolService {
	return &ProtocolService{
		store:  store,
		tracer: otel.Tracer("sop-architect/protocol"),
	}
}

// Generate produces the protocol document for a workflow.
func (s *ProtocolService) Generate(ctx context.Context, workflowID string) (*protocol.Workflow, error) {
	ctx, span := s.tracer.Start(ctx, "protocol.Generate",
		trace.WithAttributes(attribute.String("workflow.id", workflowID)))
	defer span.End()

	workflow, err := s.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowID)
		}
		return nil, err
	}

	doc := protocol.Project(workflow)
	span.SetAttributes(attribute.Int("protocol.steps", len(doc.Steps)))
	return doc, nil
}
