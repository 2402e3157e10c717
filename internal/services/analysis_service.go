package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

// DataField defines one input or output of a step's data contract.
type DataField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     string `json:"example,omitempty"`
}

// StepContract is the data-flow specification drafted for one step: what
// the step needs and what it must return, with no implementation choices.
type StepContract struct {
	StepID             int         `json:"step_id"`
	StepName           string      `json:"step_name"`
	BusinessIntent     string      `json:"business_intent"`
	Inputs             []DataField `json:"inputs"`
	Outputs            []DataField `json:"outputs"`
	AcceptanceCriteria string      `json:"acceptance_criteria,omitempty"`
	Notes              string      `json:"notes,omitempty"`
}

// AnalysisResult is the parsed LLM output.
type AnalysisResult struct {
	Contract        StepContract `json:"contract"`
	ConfidenceScore float64      `json:"confidence_score"`
}

// AnalysisResponse is the wire shape of the analysis endpoint.
type AnalysisResponse struct {
	StepID       string         `json:"step_id"`
	StepName     string         `json:"step_name"`
	Result       AnalysisResult `json:"result"`
	LLMModel     string         `json:"llm_model"`
	HasMaterials bool           `json:"has_materials"`
}

// contractPrompt instructs the model to act as a data-contract author: it
// defines WHAT each step needs and returns, never HOW to implement it.
const contractPrompt = `You are a data contract author. Translate a business
step description into a Data Flow Specification: what inputs the step needs
and what outputs it must return.

Rules:
- Define only the contract, never the technology. Do not mention models,
  frameworks or languages.
- Field names use english snake_case (person_count, office_image).
- Types: string, int, float, bool, image, file, list[string], dict.
- When previous step outputs are supplied, reuse their names for inputs so
  the steps chain cleanly.
- business_intent is one sentence.

Respond with exactly this JSON shape and nothing else:
{
  "contract": {
    "step_id": 1,
    "step_name": "...",
    "business_intent": "...",
    "inputs": [{"name": "...", "type": "...", "description": "...", "required": true, "example": "..."}],
    "outputs": [{"name": "...", "type": "...", "description": "...", "required": true, "example": "..."}],
    "acceptance_criteria": "...",
    "notes": "..."
  },
  "confidence_score": 0.9
}`

// AnalysisService drafts a data contract for a step by sending its
// description and materials to the LLM.
type AnalysisService struct {
	steps repository.StepStore
	llm   LLMClient
}

// NewAnalysisService creates a new AnalysisService. A nil llm means the
// feature is disabled.
func NewAnalysisService(steps repository.StepStore, llm LLMClient) *AnalysisService {
	return &AnalysisService{steps: steps, llm: llm}
}

// Enabled reports whether an LLM backend is configured.
func (s *AnalysisService) Enabled() bool {
	return s.llm != nil
}

// ModelName returns the configured model name, empty when disabled.
func (s *AnalysisService) ModelName() string {
	if s.llm == nil {
		return ""
	}
	return s.llm.Model()
}

// Analyze drafts the data contract for a step. previousOutputs, when
// given, are the output fields of earlier steps so variable names stay
// consistent across the chain. A step with nothing filled in yields an
// empty contract rather than an error.
func (s *AnalysisService) Analyze(ctx context.Context, stepID string, previousOutputs []DataField) (*AnalysisResponse, error) {
	if !s.Enabled() {
		return nil, ErrLLMDisabled
	}

	step, err := s.steps.GetStep(ctx, stepID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
		}
		return nil, err
	}

	input, hasMaterials := buildAnalysisInput(step, previousOutputs)
	if input == "" {
		return &AnalysisResponse{
			StepID:   step.ID,
			StepName: step.Name,
			Result: AnalysisResult{
				Contract: StepContract{
					StepName:       step.Name,
					BusinessIntent: "step description is empty",
					Inputs:         []DataField{},
					Outputs:        []DataField{},
				},
			},
			LLMModel:     s.llm.Model(),
			HasMaterials: false,
		}, nil
	}

	reply, err := s.llm.Chat(ctx, []ChatMessage{
		{Role: "system", Content: contractPrompt},
		{Role: "user", Content: input},
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &result); err != nil {
		return nil, fmt.Errorf("analysis failed: invalid llm response: %w", err)
	}

	return &AnalysisResponse{
		StepID:       step.ID,
		StepName:     step.Name,
		Result:       result,
		LLMModel:     s.llm.Model(),
		HasMaterials: hasMaterials,
	}, nil
}

// buildAnalysisInput assembles everything the expert and worker captured
// for a step into one prompt, and reports whether any material beyond the
// bare description exists.
func buildAnalysisInput(step *models.WorkflowStep, previousOutputs []DataField) (string, bool) {
	var b strings.Builder

	writeSection := func(header, content string) {
		if content == "" {
			return
		}
		b.WriteString(header)
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteString("\n")
	}

	writeSection("Step name", step.Name)
	writeSection("Description", step.ContextDescription)
	writeSection("Expert notes", step.ExpertNotes)
	writeSection("Evaluation prompt", step.LogicEvaluationPrompt)
	writeSection("Text material", step.ContextTextContent)
	writeSection("Voice transcript", step.ContextVoiceTranscript)
	writeSection("Image material", step.ContextImageURL)

	hasMaterials := step.ContextImageURL != "" ||
		step.ContextTextContent != "" ||
		step.ContextVoiceTranscript != "" ||
		len(step.Notes) > 0

	for i, note := range step.Notes {
		text := note.Content
		if note.VoiceTranscript != "" {
			text = note.VoiceTranscript
		}
		writeSection(fmt.Sprintf("Note %d (%s)", i+1, note.ContentType), text)
	}

	if len(previousOutputs) > 0 {
		b.WriteString("Outputs already produced by earlier steps:\n")
		for _, field := range previousOutputs {
			fmt.Fprintf(&b, "- %s (%s): %s\n", field.Name, field.Type, field.Description)
		}
	}

	hasDescription := step.ContextDescription != "" ||
		step.LogicEvaluationPrompt != "" ||
		step.ExpertNotes != ""
	if !hasDescription && !hasMaterials {
		return "", false
	}
	return b.String(), hasMaterials
}

// stripCodeFence unwraps a ```json ... ``` block if the model added one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
