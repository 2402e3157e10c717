package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sop-architect/backend/internal/services"
)

type Server struct {
	mcpServer *server.MCPServer
	status    *services.StatusService
	protocol  *services.ProtocolService
}

func NewServer(status *services.StatusService, protocol *services.ProtocolService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"SOP Architect",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		status:   status,
		protocol: protocol,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"export_protocol",
			mcp.WithDescription("Export a workflow as an executable protocol document"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
		),
		s.handleExportProtocol,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_workflow_status",
			mcp.WithDescription("Get a workflow's lifecycle status and allowed transitions"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
		),
		s.handleGetWorkflowStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"advance_workflow",
			mcp.WithDescription("Advance a workflow one lifecycle stage forward"),
			mcp.WithString("workflow_id", mcp.Required(), mcp.Description("The ID of the workflow")),
		),
		s.handleAdvanceWorkflow,
	)
}

func (s *Server) workflowIDArg(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", mcp.NewToolResultError("Invalid arguments type")
	}
	id, ok := args["workflow_id"].(string)
	if !ok || id == "" {
		return "", mcp.NewToolResultError("Missing required parameter: workflow_id")
	}
	return id, nil
}

func (s *Server) handleExportProtocol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := s.workflowIDArg(request)
	if errResult != nil {
		return errResult, nil
	}

	doc, err := s.protocol.Generate(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to export protocol: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(doc)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetWorkflowStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := s.workflowIDArg(request)
	if errResult != nil {
		return errResult, nil
	}

	view, err := s.status.Status(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get status: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(view)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleAdvanceWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := s.workflowIDArg(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.status.Advance(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to advance workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// SSE server handles /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
