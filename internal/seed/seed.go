// Package seed installs the preset workflow templates.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sop-architect/backend/internal/logging"
	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/pkg/models"
)

//go:embed templates.yaml
var templatesYAML []byte

type presetStep struct {
	Name               string `yaml:"name"`
	ContextDescription string `yaml:"context_description"`
}

type presetTask struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Steps       []presetStep `yaml:"steps"`
}

type presetTemplate struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Tasks       []presetTask `yaml:"tasks"`
}

type presetFile struct {
	Templates []presetTemplate `yaml:"templates"`
}

// Templates creates every preset template that is not already present,
// matching by name. It returns the number of templates created.
func Templates(ctx context.Context, store *repository.PostgresStore, logger *logging.Logger) (int, error) {
	var presets presetFile
	if err := yaml.Unmarshal(templatesYAML, &presets); err != nil {
		return 0, fmt.Errorf("parse preset templates: %w", err)
	}

	existing, err := store.ListTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list templates: %w", err)
	}
	existingNames := make(map[string]bool, len(existing))
	for _, t := range existing {
		existingNames[t.Name] = true
	}

	created := 0
	for _, preset := range presets.Templates {
		if existingNames[preset.Name] {
			logger.Info("Skipping existing template", "name", preset.Name)
			continue
		}
		if err := createTemplate(ctx, store, preset); err != nil {
			return created, fmt.Errorf("seed template %s: %w", preset.Name, err)
		}
		logger.Info("Seeded template", "name", preset.Name)
		created++
	}
	return created, nil
}

func createTemplate(ctx context.Context, store *repository.PostgresStore, preset presetTemplate) error {
	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        preset.Name,
		Description: preset.Description,
		Status:      models.StatusDraft,
		IsTemplate:  true,
	}
	if err := store.CreateWorkflow(ctx, workflow); err != nil {
		return err
	}

	stepOrder := 0
	for taskOrder, taskData := range preset.Tasks {
		task := &models.Task{
			ID:          uuid.New().String(),
			WorkflowID:  workflow.ID,
			Name:        taskData.Name,
			TaskOrder:   taskOrder,
			Description: taskData.Description,
			Status:      models.StepStatusPending,
		}
		if err := store.CreateTask(ctx, task); err != nil {
			return err
		}

		for _, stepData := range taskData.Steps {
			step := &models.WorkflowStep{
				ID:                 uuid.New().String(),
				WorkflowID:         workflow.ID,
				TaskID:             &task.ID,
				Name:               stepData.Name,
				StepOrder:          stepOrder,
				Status:             models.StepStatusPending,
				ContextDescription: stepData.ContextDescription,
			}
			if err := store.CreateStep(ctx, step); err != nil {
				return err
			}
			stepOrder++
		}
	}
	return nil
}
