// Package api contains the HTTP handlers for the SOP authoring service
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/sop-architect/backend/internal/services"
	"github.com/sop-architect/backend/internal/upload"
)

// Server holds the dependencies for the API server.
type Server struct {
	Workflows *services.WorkflowService
	Tasks     *services.TaskService
	Steps     *services.StepService
	Notes     *services.NoteService
	Examples  *services.ExampleService
	Templates *services.TemplateService
	Status    *services.StatusService
	Protocol  *services.ProtocolService
	Analysis  *services.AnalysisService
	Uploads   *upload.Service
}

// RegisterRoutes mounts every handler under the /api prefix plus the
// health check and static uploads at the root.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.HandleHealth)
	e.Static("/uploads", s.Uploads.Dir())

	api := e.Group("/api")

	api.GET("/workflows", s.ListWorkflows)
	api.POST("/workflows", s.CreateWorkflow)
	api.GET("/workflows/:workflowID", s.GetWorkflow)
	api.PUT("/workflows/:workflowID", s.UpdateWorkflow)
	api.DELETE("/workflows/:workflowID", s.DeleteWorkflow)

	api.POST("/workflows/:workflowID/steps", s.CreateStep)
	api.POST("/workflows/:workflowID/steps/append", s.AppendStep)
	api.GET("/workflows/:workflowID/steps", s.ListSteps)
	api.GET("/steps/:stepID", s.GetStep)
	api.PUT("/steps/:stepID", s.UpdateStep)
	api.DELETE("/steps/:stepID", s.DeleteStep)
	api.POST("/steps/:stepID/branches", s.AddBranch)
	api.DELETE("/steps/:stepID/branches/:branchID", s.DeleteBranch)

	api.GET("/tasks/workflow/:workflowID", s.ListTasks)
	api.POST("/tasks/workflow/:workflowID", s.CreateTask)
	api.POST("/tasks/workflow/:workflowID/reorder", s.ReorderTasks)
	api.GET("/tasks/:taskID", s.GetTask)
	api.PUT("/tasks/:taskID", s.UpdateTask)
	api.DELETE("/tasks/:taskID", s.DeleteTask)

	api.GET("/steps/:stepID/notes", s.ListNotes)
	api.POST("/steps/:stepID/notes", s.CreateNote)
	api.GET("/notes/:noteID", s.GetNote)
	api.PUT("/notes/:noteID", s.UpdateNote)
	api.DELETE("/notes/:noteID", s.DeleteNote)

	api.GET("/steps/:stepID/examples", s.ListExamples)
	api.POST("/steps/:stepID/examples", s.CreateExample)
	api.PUT("/examples/:exampleID", s.UpdateExample)
	api.DELETE("/examples/:exampleID", s.DeleteExample)

	api.GET("/status/workflow/:workflowID", s.GetWorkflowStatus)
	api.POST("/status/workflow/:workflowID/transition", s.TransitionWorkflowStatus)
	api.POST("/status/workflow/:workflowID/advance", s.AdvanceWorkflowStatus)
	api.POST("/status/workflow/:workflowID/rollback", s.RollbackWorkflowStatus)

	api.GET("/protocol/workflow/:workflowID", s.GetProtocol)

	api.GET("/templates", s.ListTemplates)
	api.GET("/templates/:templateID", s.GetTemplate)
	api.POST("/templates/:templateID/clone", s.CloneTemplate)

	api.POST("/analysis/steps/:stepID/analyze", s.AnalyzeStep)
	api.GET("/analysis/status", s.AnalysisStatus)

	api.POST("/files/upload", s.UploadFile)
	api.DELETE("/files/delete", s.DeleteFile)
}
