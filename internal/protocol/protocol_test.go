package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sop-architect/backend/pkg/models"
)

func sampleWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:     "wf-1",
		Name:   "Meter Inspection",
		Status: models.StatusExpertDone,
		Steps: []*models.WorkflowStep{
			{
				ID:                 "step-2",
				Name:               "Judge reading",
				StepOrder:          2,
				ContextType:        models.ContextTypeText,
				ContextTextContent: "reading is 42",
				LogicStrategy:      models.StrategyFewShot,
				ExtractionKeywords: []string{"color", "size"},
				Examples: []*models.Example{
					{Content: "42", Label: models.LabelPass, Description: "in range"},
					{Content: "999", Label: models.LabelFail},
				},
				RoutingBranches: []*models.RoutingBranch{
					{ConditionResult: "PASS", ActionType: "goto", NextStepID: "step-3"},
					{ConditionResult: "FAIL", ActionType: "stop", NextStepID: "end"},
				},
			},
			{
				ID:                 "step-1",
				Name:               "Photograph meter",
				StepOrder:          1,
				ContextType:        models.ContextTypeImage,
				ContextImageURL:    "/uploads/meter.jpg",
				ContextDescription: "power meter on the east wall",
				LogicStrategy:      models.StrategyRuleBased,
				RoutingDefaultNext: "step-2",
			},
		},
	}
}

func TestProjectOrdersStepsByStepOrder(t *testing.T) {
	doc := Project(sampleWorkflow())

	require.Len(t, doc.Steps, 2)
	assert.Equal(t, "step-1", doc.Steps[0].StepID)
	assert.Equal(t, "step-2", doc.Steps[1].StepID)
	assert.Equal(t, "wf-1", doc.WorkflowID)
	assert.Equal(t, "Meter Inspection", doc.WorkflowName)
}

func TestProjectIsDeterministic(t *testing.T) {
	workflow := sampleWorkflow()

	first, err := json.Marshal(Project(workflow))
	require.NoError(t, err)
	second, err := json.Marshal(Project(workflow))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBusinessDomainFallbacks(t *testing.T) {
	workflow := sampleWorkflow()

	// A step with a context description uses it, truncated to 100 runes.
	long := strings.Repeat("长", 150)
	workflow.Steps[0].ContextDescription = long
	doc := Project(workflow)
	assert.Equal(t, strings.Repeat("长", 100), doc.Steps[1].BusinessDomain)

	// Without a description the workflow name wins.
	workflow.Steps[1].ContextDescription = ""
	doc = Project(workflow)
	assert.Equal(t, "Meter Inspection", doc.Steps[0].BusinessDomain)

	// With neither, the literal "general".
	workflow.Steps[0].ContextDescription = ""
	workflow.Name = ""
	doc = Project(workflow)
	assert.Equal(t, "general", doc.Steps[0].BusinessDomain)
	assert.Equal(t, "general", doc.Steps[1].BusinessDomain)
}

func TestInputSpec(t *testing.T) {
	workflow := sampleWorkflow()
	doc := Project(workflow)

	imageStep := doc.Steps[0]
	assert.Equal(t, "image", imageStep.InputSpec.DataSource)
	assert.Equal(t, "/uploads/meter.jpg", imageStep.InputSpec.TargetSection)
	assert.Equal(t, "power meter on the east wall", imageStep.InputSpec.ContextDescription)

	textStep := doc.Steps[1]
	assert.Equal(t, "text", textStep.InputSpec.DataSource)
	assert.Equal(t, "reading is 42", textStep.InputSpec.TargetSection)
	assert.Equal(t, "[Keywords: color, size]", textStep.InputSpec.ContextDescription)
}

func TestInputSpecKeywordSuffixAppendsToDescription(t *testing.T) {
	workflow := sampleWorkflow()
	// Steps are stored out of order; Steps[1] is the step the projector
	// emits first.
	workflow.Steps[1].ExtractionKeywords = []string{"voltage"}
	doc := Project(workflow)

	assert.Equal(t,
		"power meter on the east wall [Keywords: voltage]",
		doc.Steps[0].InputSpec.ContextDescription)
}

func TestInputSpecUnknownDataSourceAndTranscriptFallback(t *testing.T) {
	workflow := &models.Workflow{
		ID:   "wf-2",
		Name: "Audio",
		Steps: []*models.WorkflowStep{
			{
				ID:                     "s",
				StepOrder:              1,
				ContextVoiceTranscript: strings.Repeat("a", 300),
			},
		},
	}
	doc := Project(workflow)

	assert.Equal(t, "unknown", doc.Steps[0].InputSpec.DataSource)
	assert.Equal(t, strings.Repeat("a", 200), doc.Steps[0].InputSpec.TargetSection)
}

func TestLogicConfigFewShot(t *testing.T) {
	doc := Project(sampleWorkflow())
	cfg := doc.Steps[1].LogicConfig

	assert.Equal(t, "SEMANTIC_SIMILARITY", cfg.LogicStrategy)
	require.Len(t, cfg.FewShotExamples, 2)
	assert.Equal(t, FewShotExample{Content: "42", Label: "PASS", Description: "in range"}, cfg.FewShotExamples[0])
	assert.Equal(t, FewShotExample{Content: "999", Label: "FAIL", Description: ""}, cfg.FewShotExamples[1])
}

func TestLogicConfigRuleBasedNeverEmitsExamples(t *testing.T) {
	workflow := sampleWorkflow()
	workflow.Steps[1].Examples = []*models.Example{
		{Content: "ignored", Label: models.LabelPass},
	}
	doc := Project(workflow)

	cfg := doc.Steps[0].LogicConfig
	assert.Equal(t, "RULE_BASED", cfg.LogicStrategy)
	assert.Nil(t, cfg.FewShotExamples)
}

func TestLogicConfigFewShotWithoutExamplesOmitsField(t *testing.T) {
	workflow := sampleWorkflow()
	workflow.Steps[0].Examples = nil
	doc := Project(workflow)

	// Steps[0] holds step_order 2, which sorts last.
	cfg := doc.Steps[1].LogicConfig
	assert.Equal(t, "SEMANTIC_SIMILARITY", cfg.LogicStrategy)
	assert.Nil(t, cfg.FewShotExamples)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "few_shot_examples")
}

func TestRoutingMap(t *testing.T) {
	doc := Project(sampleWorkflow())

	withDefault := doc.Steps[0].RoutingMap
	assert.Equal(t, "step-2", withDefault.DefaultNext)
	assert.Empty(t, withDefault.Branches)

	withBranches := doc.Steps[1].RoutingMap
	assert.Equal(t, "next", withBranches.DefaultNext)
	require.Len(t, withBranches.Branches, 2)
	assert.Equal(t, RoutingBranch{ConditionResult: "PASS", ActionType: "goto", NextStepID: "step-3"}, withBranches.Branches[0])
	assert.Equal(t, RoutingBranch{ConditionResult: "FAIL", ActionType: "stop", NextStepID: "end"}, withBranches.Branches[1])
}

func TestOutputSchemaFields(t *testing.T) {
	doc := Project(sampleWorkflow())

	assert.Equal(t, []OutputField{
		{Name: "color", Type: "string"},
		{Name: "size", Type: "string"},
		{Name: "judgment_result", Type: "string"},
	}, doc.Steps[1].OutputSchema.Fields)

	// A step with no keywords still carries the synthetic field.
	assert.Equal(t, []OutputField{
		{Name: "judgment_result", Type: "string"},
	}, doc.Steps[0].OutputSchema.Fields)
}

func TestStrategyMapping(t *testing.T) {
	assert.Equal(t, "RULE_BASED", MapStrategyToProtocol(models.StrategyRuleBased))
	assert.Equal(t, "SEMANTIC_SIMILARITY", MapStrategyToProtocol(models.StrategyFewShot))
	assert.Equal(t, "RULE_BASED", MapStrategyToProtocol(""))
	assert.Equal(t, "CUSTOM", MapStrategyToProtocol(models.LogicStrategy("custom")))

	assert.Equal(t, models.StrategyRuleBased, MapStrategyFromProtocol("RULE_BASED"))
	assert.Equal(t, models.StrategyFewShot, MapStrategyFromProtocol("SEMANTIC_SIMILARITY"))
	assert.Equal(t, models.LogicStrategy("custom"), MapStrategyFromProtocol("CUSTOM"))
}
