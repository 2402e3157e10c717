package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// fakeStepStore serves a single step; the embedded interface covers the
// methods the analysis service never calls.
type fakeStepStore struct {
	repository.StepStore
	step *models.WorkflowStep
}

func (s *fakeStepStore) GetStep(_ context.Context, id string) (*models.WorkflowStep, error) {
	if s.step == nil || s.step.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.step, nil
}

// fakeLLM replies with a canned message and records the prompt it saw.
type fakeLLM struct {
	reply    string
	err      error
	lastUser string
}

func (f *fakeLLM) Chat(_ context.Context, messages []ChatMessage) (string, error) {
	for _, m := range messages {
		if m.Role == "user" {
			f.lastUser = m.Content
		}
	}
	return f.reply, f.err
}

func (f *fakeLLM) Model() string { return "test-model" }

const contractReply = `{
	"contract": {
		"step_id": 1,
		"step_name": "read meter",
		"business_intent": "Extract the displayed reading from a meter photo.",
		"inputs": [{"name": "meter_image", "type": "image", "description": "photo of the meter", "required": true}],
		"outputs": [{"name": "reading_value", "type": "float", "description": "displayed value", "required": true}]
	},
	"confidence_score": 0.85
}`

func TestAnalyzeStep(t *testing.T) {
	step := &models.WorkflowStep{
		ID:                 "step-1",
		Name:               "read meter",
		ContextDescription: "Read the value off the power meter",
		ContextImageURL:    "/uploads/meter.jpg",
	}
	llm := &fakeLLM{reply: contractReply}
	svc := NewAnalysisService(&fakeStepStore{step: step}, llm)

	resp, err := svc.Analyze(context.Background(), "step-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "step-1", resp.StepID)
	assert.Equal(t, "read meter", resp.StepName)
	assert.Equal(t, "test-model", resp.LLMModel)
	assert.True(t, resp.HasMaterials)
	require.Len(t, resp.Result.Contract.Outputs, 1)
	assert.Equal(t, "reading_value", resp.Result.Contract.Outputs[0].Name)
	assert.InDelta(t, 0.85, resp.Result.ConfidenceScore, 0.001)

	assert.Contains(t, llm.lastUser, "Read the value off the power meter")
	assert.Contains(t, llm.lastUser, "/uploads/meter.jpg")
}

func TestAnalyzeChainsPreviousOutputs(t *testing.T) {
	step := &models.WorkflowStep{
		ID:                 "step-2",
		Name:               "judge reading",
		ContextDescription: "Decide whether the reading is in range",
	}
	llm := &fakeLLM{reply: contractReply}
	svc := NewAnalysisService(&fakeStepStore{step: step}, llm)

	previous := []DataField{{Name: "reading_value", Type: "float", Description: "displayed value"}}
	resp, err := svc.Analyze(context.Background(), "step-2", previous)
	require.NoError(t, err)
	assert.False(t, resp.HasMaterials)
	assert.Contains(t, llm.lastUser, "reading_value (float)")
}

func TestAnalyzeStripsCodeFence(t *testing.T) {
	step := &models.WorkflowStep{
		ID:                 "step-1",
		Name:               "read meter",
		ContextDescription: "Read the meter",
	}
	llm := &fakeLLM{reply: "```json\n" + contractReply + "\n```"}
	svc := NewAnalysisService(&fakeStepStore{step: step}, llm)

	resp, err := svc.Analyze(context.Background(), "step-1", nil)
	require.NoError(t, err)
	assert.Equal(t, "read meter", resp.Result.Contract.StepName)
}

func TestAnalyzeEmptyStep(t *testing.T) {
	step := &models.WorkflowStep{ID: "step-1", Name: "blank"}
	llm := &fakeLLM{reply: contractReply}
	svc := NewAnalysisService(&fakeStepStore{step: step}, llm)

	resp, err := svc.Analyze(context.Background(), "step-1", nil)
	require.NoError(t, err)
	assert.False(t, resp.HasMaterials)
	assert.Equal(t, "step description is empty", resp.Result.Contract.BusinessIntent)
	assert.Empty(t, resp.Result.Contract.Inputs)
	// The LLM is never consulted for an empty step.
	assert.Empty(t, llm.lastUser)
}

func TestAnalyzeDisabled(t *testing.T) {
	svc := NewAnalysisService(&fakeStepStore{}, nil)

	assert.False(t, svc.Enabled())
	assert.Empty(t, svc.ModelName())

	_, err := svc.Analyze(context.Background(), "step-1", nil)
	assert.ErrorIs(t, err, ErrLLMDisabled)
}

func TestAnalyzeMissingStep(t *testing.T) {
	svc := NewAnalysisService(&fakeStepStore{}, &fakeLLM{reply: contractReply})

	_, err := svc.Analyze(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestAnalyzeBadReply(t *testing.T) {
	step := &models.WorkflowStep{
		ID:                 "step-1",
		Name:               "read meter",
		ContextDescription: "Read the meter",
	}
	svc := NewAnalysisService(&fakeStepStore{step: step}, &fakeLLM{reply: "sorry, I cannot help"})

	_, err := svc.Analyze(context.Background(), "step-1", nil)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
