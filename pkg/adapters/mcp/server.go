package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/consult"
	"github.com/aretw0/consult/internal/logging"
	"github.com/aretw0/consult/internal/presentation/markdown"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/aretw0/consult/pkg/schema"
	"github.com/aretw0/consult/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TreesURI is the resource listing every tree.
const TreesURI = "consult://trees"

// SessionResult is the structured output of every session tool.
type SessionResult struct {
	Session  domain.Snapshot      `json:"session" jsonschema_description:"The session after the operation"`
	View     *domain.RenderedNode `json:"view" jsonschema_description:"The current node, rendered with its options and intents"`
	Markdown string               `json:"markdown,omitempty" jsonschema_description:"The current node as Markdown"`
}

// ScoreResult is the structured output of the calculate tool.
type ScoreResult struct {
	Result   *domain.CalculatorResult `json:"result" jsonschema_description:"Total score, interpretation band and points per criterion"`
	Markdown string                   `json:"markdown,omitempty" jsonschema_description:"The result as Markdown"`
}

// Engine defines the traversal operations exposed as tools.
type Engine interface {
	Content() ports.ContentStore
	Render(ctx context.Context, s *domain.TreeSession) (*domain.RenderedNode, error)
	SelectOption(ctx context.Context, s *domain.TreeSession, i int) (*domain.TreeSession, error)
	Advance(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error)
	SubmitInput(ctx context.Context, s *domain.TreeSession, values map[string]any) (*domain.TreeSession, error)
	GoBack(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error)
	JumpToNode(ctx context.Context, s *domain.TreeSession, target string) (*domain.TreeSession, error)
	Reset(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error)
	Calculate(ctx context.Context, calcID string, values map[string]any) (*domain.CalculatorResult, error)
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

type treeArgs struct {
	TreeID string `json:"tree_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type selectArgs struct {
	SessionID string `json:"session_id"`
	Index     *int   `json:"index"`
}

type jumpArgs struct {
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id"`
}

type inputArgs struct {
	SessionID string `json:"session_id"`
	Values    string `json:"values"`
}

type drugArgs struct {
	DrugID string `json:"drug_id"`
	Hint   string `json:"hint"`
}

type calculatorArgs struct {
	CalculatorID string `json:"calculator_id"`
	Values       string `json:"values"`
}

// NewServer creates a new MCP server over a session manager.
func NewServer(engine Engine, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("consult-mcp", consult.Version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionID := mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_session"))

	s.mcpServer.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List the decision trees in the library."),
	), s.handleListTrees)

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new session on the entry node of a tree."),
		mcp.WithString("tree_id", mcp.Required(), mcp.Description("Tree ID from list_trees")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("render_session",
		mcp.WithDescription("Render the current node of a session without changing it."),
		sessionID,
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleRender))

	s.mcpServer.AddTool(mcp.NewTool("select_option",
		mcp.WithDescription("Answer the current question with one of its options."),
		sessionID,
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based option index")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Continue from the current info node to its next node."),
		sessionID,
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("submit_input",
		mcp.WithDescription("Submit values for the fields of the current input node."),
		sessionID,
		mcp.WithString("values", mcp.Required(), mcp.Description("JSON object mapping field names to values")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleInput))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Return to the previously visited node."),
		sessionID,
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("jump_to_node",
		mcp.WithDescription("Jump to another node of the same tree."),
		sessionID,
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Target node ID")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleJump))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Start the session over from the tree's entry node."),
		sessionID,
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("show_drug",
		mcp.WithDescription("Show a drug monograph as Markdown."),
		mcp.WithString("drug_id", mcp.Required(), mcp.Description("Drug ID, as found in showDrug intents")),
		mcp.WithString("hint", mcp.Description("Indication used to narrow the dosing section")),
	), mcp.NewTypedToolHandler(s.handleShowDrug))

	s.mcpServer.AddTool(mcp.NewTool("list_calculators",
		mcp.WithDescription("List the risk calculators in the library."),
	), s.handleListCalculators)

	s.mcpServer.AddTool(mcp.NewTool("show_calculator",
		mcp.WithDescription("Show the criteria and interpretation bands of a risk calculator as Markdown."),
		mcp.WithString("calculator_id", mcp.Required(), mcp.Description("Calculator ID, as found in showCalculator intents")),
	), mcp.NewTypedToolHandler(s.handleShowCalculator))

	s.mcpServer.AddTool(mcp.NewTool("calculate",
		mcp.WithDescription("Score a risk calculator. Toggles left out count as absent."),
		mcp.WithString("calculator_id", mcp.Required(), mcp.Description("Calculator ID from list_calculators")),
		mcp.WithString("values", mcp.Description("JSON object mapping criterion names to values")),
		mcp.WithOutputSchema[ScoreResult](),
	), mcp.NewStructuredToolHandler(s.handleCalculate))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TreesURI, "Decision trees",
		mcp.WithResourceDescription("Metadata of every tree in the library"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.treesJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TreesURI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}

func (s *Server) treesJSON() (string, error) {
	trees, err := s.engine.Content().ListTrees()
	if err != nil {
		return "", fmt.Errorf("failed to list trees: %w", err)
	}
	raw, err := json.Marshal(trees)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *Server) handleListTrees(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.treesJSON()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args treeArgs) (SessionResult, error) {
	if args.TreeID == "" {
		return SessionResult{}, errors.New("tree_id is required")
	}
	sess, err := s.sessions.Start(ctx, args.TreeID)
	if err != nil {
		return SessionResult{}, err
	}
	s.logger.Info("MCP session started", "session_id", sess.ID, "tree", sess.TreeID)
	return s.result(ctx, sess)
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	sess, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return SessionResult{}, err
	}
	return s.result(ctx, sess)
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest, args selectArgs) (SessionResult, error) {
	if args.Index == nil {
		return SessionResult{}, errors.New("index is required")
	}
	return s.update(ctx, "select_option", args.SessionID, func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		return s.engine.SelectOption(ctx, cur, *args.Index)
	})
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, "advance", args.SessionID, s.engine.Advance)
}

func (s *Server) handleInput(ctx context.Context, request mcp.CallToolRequest, args inputArgs) (SessionResult, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(args.Values), &values); err != nil {
		return SessionResult{}, fmt.Errorf("values must be a JSON object: %w", err)
	}
	clean, err := schema.SanitizeValues(values, 0)
	if err != nil {
		s.logger.Warn("MCP input rejected", "err", err, "size", len(args.Values))
		return SessionResult{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.update(ctx, "submit_input", args.SessionID, func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		return s.engine.SubmitInput(ctx, cur, clean)
	})
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, "go_back", args.SessionID, s.engine.GoBack)
}

func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest, args jumpArgs) (SessionResult, error) {
	return s.update(ctx, "jump_to_node", args.SessionID, func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		return s.engine.JumpToNode(ctx, cur, args.NodeID)
	})
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, "reset_session", args.SessionID, s.engine.Reset)
}

func (s *Server) handleShowDrug(ctx context.Context, request mcp.CallToolRequest, args drugArgs) (*mcp.CallToolResult, error) {
	drug, err := s.engine.Content().GetDrug(args.DrugID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(markdown.Drug(drug, args.Hint)), nil
}

func (s *Server) handleListCalculators(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	calcs, err := s.engine.Content().ListCalculators()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := json.Marshal(calcs)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleShowCalculator(ctx context.Context, request mcp.CallToolRequest, args calculatorArgs) (*mcp.CallToolResult, error) {
	calc, err := s.engine.Content().GetCalculator(args.CalculatorID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(markdown.Calculator(calc)), nil
}

func (s *Server) handleCalculate(ctx context.Context, request mcp.CallToolRequest, args calculatorArgs) (ScoreResult, error) {
	if args.CalculatorID == "" {
		return ScoreResult{}, errors.New("calculator_id is required")
	}
	values := map[string]any{}
	if args.Values != "" {
		if err := json.Unmarshal([]byte(args.Values), &values); err != nil {
			return ScoreResult{}, fmt.Errorf("values must be a JSON object: %w", err)
		}
	}
	clean, err := schema.SanitizeValues(values, 0)
	if err != nil {
		s.logger.Warn("MCP input rejected", "err", err, "size", len(args.Values))
		return ScoreResult{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.engine.Calculate(ctx, args.CalculatorID, clean)
	if err != nil {
		s.logger.Warn("MCP tool failed", "tool", "calculate", "calculator", args.CalculatorID, "err", err)
		return ScoreResult{}, err
	}
	return ScoreResult{Result: res, Markdown: markdown.Score(res)}, nil
}

func (s *Server) update(ctx context.Context, tool, sessionID string, fn session.UpdateFunc) (SessionResult, error) {
	if sessionID == "" {
		return SessionResult{}, errors.New("session_id is required")
	}
	next, err := s.sessions.Update(ctx, sessionID, fn)
	if err != nil {
		s.logger.Warn("MCP tool failed", "tool", tool, "session_id", sessionID, "err", err)
		return SessionResult{}, err
	}
	return s.result(ctx, next)
}

func (s *Server) result(ctx context.Context, sess *domain.TreeSession) (SessionResult, error) {
	view, err := s.engine.Render(ctx, sess)
	if err != nil {
		return SessionResult{}, fmt.Errorf("render failed: %w", err)
	}
	return SessionResult{
		Session:  sess.Snapshot(),
		View:     view,
		Markdown: markdown.Node(view),
	}, nil
}
