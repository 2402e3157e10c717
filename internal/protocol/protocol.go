// Package protocol projects a persisted workflow aggregate into the
// Protocol JSON consumed by the downstream automation engine. Projection is
// a pure function of the aggregate; nothing here touches storage.
package protocol

import (
	"sort"
	"strings"

	"github.com/sop-architect/backend/pkg/models"
)

// Wire format. Field names are a bit-exact contract parsed by external
// engines; do not rename.

// Workflow is the top-level protocol document.
type Workflow struct {
	WorkflowID   string `json:"workflow_id"`
	WorkflowName string `json:"workflow_name"`
	Steps        []Step `json:"steps"`
}

// Step describes one workflow step as an input/logic/routing/output contract.
type Step struct {
	StepID         string       `json:"step_id"`
	StepName       string       `json:"step_name"`
	BusinessDomain string       `json:"business_domain"`
	InputSpec      InputSpec    `json:"input_spec"`
	LogicConfig    LogicConfig  `json:"logic_config"`
	RoutingMap     RoutingMap   `json:"routing_map"`
	OutputSchema   OutputSchema `json:"output_schema"`
}

// InputSpec tells the engine where a step's input comes from.
type InputSpec struct {
	DataSource         string `json:"data_source"`
	TargetSection      string `json:"target_section"`
	ContextDescription string `json:"context_description"`
}

// LogicConfig carries the step's evaluation strategy. FewShotExamples is
// only present when the internal strategy is few_shot and at least one
// example exists; it is never an empty list.
type LogicConfig struct {
	LogicStrategy    string           `json:"logic_strategy"`
	RuleExpression   string           `json:"rule_expression"`
	FewShotExamples  []FewShotExample `json:"few_shot_examples,omitempty"`
	EvaluationPrompt string           `json:"evaluation_prompt"`
}

// FewShotExample is a single labeled training sample.
type FewShotExample struct {
	Content     string `json:"content"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// RoutingMap describes where execution goes after a step.
type RoutingMap struct {
	DefaultNext string          `json:"default_next"`
	Branches    []RoutingBranch `json:"branches"`
}

// RoutingBranch is a conditional routing entry, copied 1:1 from storage.
type RoutingBranch struct {
	ConditionResult string `json:"condition_result"`
	ActionType      string `json:"action_type"`
	NextStepID      string `json:"next_step_id"`
}

// OutputSchema lists the fields a step must produce.
type OutputSchema struct {
	Fields []OutputField `json:"fields"`
}

// OutputField is one named output of a step.
type OutputField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// strategyToProtocol maps internal logic strategies to their wire values.
var strategyToProtocol = map[models.LogicStrategy]string{
	models.StrategyRuleBased: "RULE_BASED",
	models.StrategyFewShot:   "SEMANTIC_SIMILARITY",
}

// MapStrategyToProtocol converts an internal logic strategy to the wire
// format. An empty strategy defaults to RULE_BASED; unmapped values
// upper-case themselves.
func MapStrategyToProtocol(internal models.LogicStrategy) string {
	if internal == "" {
		return "RULE_BASED"
	}
	if wire, ok := strategyToProtocol[internal]; ok {
		return wire
	}
	return strings.ToUpper(string(internal))
}

// MapStrategyFromProtocol is the dictionary inverse, used when ingesting
// protocol-format data back into internal storage. Unmapped wire values
// lower-case themselves.
func MapStrategyFromProtocol(wire string) models.LogicStrategy {
	for internal, w := range strategyToProtocol {
		if w == wire {
			return internal
		}
	}
	return models.LogicStrategy(strings.ToLower(wire))
}

// Project converts a workflow aggregate into its protocol document. Steps
// are emitted in ascending step_order. The projection is total: any
// structurally valid aggregate produces a complete document, and repeated
// calls on an unchanged aggregate yield identical output.
func Project(workflow *models.Workflow) *Workflow {
	steps := make([]*models.WorkflowStep, len(workflow.Steps))
	copy(steps, workflow.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})

	out := &Workflow{
		WorkflowID:   workflow.ID,
		WorkflowName: workflow.Name,
		Steps:        make([]Step, 0, len(steps)),
	}
	for _, step := range steps {
		out.Steps = append(out.Steps, projectStep(workflow, step))
	}
	return out
}

func projectStep(workflow *models.Workflow, step *models.WorkflowStep) Step {
	return Step{
		StepID:         step.ID,
		StepName:       step.Name,
		BusinessDomain: businessDomain(workflow, step),
		InputSpec:      buildInputSpec(step),
		LogicConfig:    buildLogicConfig(step),
		RoutingMap:     buildRoutingMap(step),
		OutputSchema:   buildOutputSchema(step),
	}
}

// businessDomain derives a short domain hint for the step: its own context
// description first, then the workflow name, then "general".
func businessDomain(workflow *models.Workflow, step *models.WorkflowStep) string {
	if step.ContextDescription != "" {
		return truncate(step.ContextDescription, 100)
	}
	if workflow.Name != "" {
		return workflow.Name
	}
	return "general"
}

func buildInputSpec(step *models.WorkflowStep) InputSpec {
	dataSource := string(step.ContextType)
	if dataSource == "" {
		dataSource = "unknown"
	}

	targetSection := ""
	switch {
	case step.ContextImageURL != "":
		targetSection = step.ContextImageURL
	case step.ContextTextContent != "":
		targetSection = truncate(step.ContextTextContent, 200)
	case step.ContextVoiceTranscript != "":
		targetSection = truncate(step.ContextVoiceTranscript, 200)
	}

	description := step.ContextDescription
	if len(step.ExtractionKeywords) > 0 {
		keywords := strings.Join(step.ExtractionKeywords, ", ")
		description = strings.TrimSpace(description + " [Keywords: " + keywords + "]")
	}

	return InputSpec{
		DataSource:         dataSource,
		TargetSection:      targetSection,
		ContextDescription: description,
	}
}

func buildLogicConfig(step *models.WorkflowStep) LogicConfig {
	cfg := LogicConfig{
		LogicStrategy:    MapStrategyToProtocol(step.LogicStrategy),
		RuleExpression:   step.LogicRuleExpression,
		EvaluationPrompt: step.LogicEvaluationPrompt,
	}

	if step.LogicStrategy == models.StrategyFewShot && len(step.Examples) > 0 {
		cfg.FewShotExamples = make([]FewShotExample, 0, len(step.Examples))
		for _, example := range step.Examples {
			cfg.FewShotExamples = append(cfg.FewShotExamples, FewShotExample{
				Content:     example.Content,
				Label:       string(example.Label),
				Description: example.Description,
			})
		}
	}

	return cfg
}

func buildRoutingMap(step *models.WorkflowStep) RoutingMap {
	defaultNext := step.RoutingDefaultNext
	if defaultNext == "" {
		defaultNext = "next"
	}

	branches := make([]RoutingBranch, 0, len(step.RoutingBranches))
	for _, branch := range step.RoutingBranches {
		branches = append(branches, RoutingBranch{
			ConditionResult: branch.ConditionResult,
			ActionType:      branch.ActionType,
			NextStepID:      branch.NextStepID,
		})
	}

	return RoutingMap{DefaultNext: defaultNext, Branches: branches}
}

// buildOutputSchema emits one string field per extraction keyword plus the
// synthetic trailing judgment_result field every step carries.
func buildOutputSchema(step *models.WorkflowStep) OutputSchema {
	fields := make([]OutputField, 0, len(step.ExtractionKeywords)+1)
	for _, keyword := range step.ExtractionKeywords {
		fields = append(fields, OutputField{Name: keyword, Type: "string"})
	}
	fields = append(fields, OutputField{Name: "judgment_result", Type: "string"})
	return OutputSchema{Fields: fields}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
