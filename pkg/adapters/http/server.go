package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/consult"
	"github.com/aretw0/consult/internal/logging"
	"github.com/aretw0/consult/internal/presentation/graph"
	"github.com/aretw0/consult/internal/presentation/html"
	"github.com/aretw0/consult/internal/presentation/markdown"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/aretw0/consult/pkg/schema"
	"github.com/aretw0/consult/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines the traversal operations the HTTP adapter drives.
type Engine interface {
	Content() ports.ContentStore
	Render(ctx context.Context, s *domain.TreeSession) (*domain.RenderedNode, error)
	SelectOption(ctx context.Context, s *domain.TreeSession, i int) (*domain.TreeSession, error)
	Advance(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error)
	SubmitInput(ctx context.Context, s *domain.TreeSession, values map[string]any) (*domain.TreeSession, error)
	GoBack(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error)
	JumpToNode(ctx context.Context, s *domain.TreeSession, target string) (*domain.TreeSession, error)
	RewindTo(ctx context.Context, s *domain.TreeSession, index int) (*domain.TreeSession, error)
	Reset(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error)
	AnswerHistory(s *domain.TreeSession) []domain.AnswerRecord
	Calculate(ctx context.Context, calcID string, values map[string]any) (*domain.CalculatorResult, error)
}

// Server serves the JSON API over a session manager.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager

	logger       *slog.Logger
	gatherer     prometheus.Gatherer
	maxInputSize int
	reloads      <-chan struct{}
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics exposes the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMaxInputSize bounds every string submitted to an input node.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// WithReloads streams every signal of reloads to the /events clients that
// subscribe without a session_id. Typically the channel returned by Engine.Watch.
func WithReloads(reloads <-chan struct{}) Option {
	return func(s *Server) {
		s.reloads = reloads
	}
}

// NewServer creates a Server. Call Handler to obtain the router.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	if s.reloads != nil {
		go s.forwardReloads(s.reloads)
	}
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Handler()
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Get("/trees", s.ListTrees)
	r.Get("/trees/{treeID}", s.GetTree)
	r.Get("/trees/{treeID}/graph", s.GetGraph)
	r.Get("/drugs/{drugID}", s.GetDrug)
	r.Get("/info-pages/{pageID}", s.GetInfoPage)
	r.Get("/calculators", s.ListCalculators)
	r.Get("/calculators/{calcID}", s.GetCalculator)
	r.Post("/calculators/{calcID}/score", s.ScoreCalculator)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/render", s.RenderSession)
			r.Get("/transcript", s.Transcript)
			r.Post("/select", s.Select)
			r.Post("/advance", s.Advance)
			r.Post("/input", s.Input)
			r.Post("/back", s.Back)
			r.Post("/jump", s.Jump)
			r.Post("/rewind", s.Rewind)
			r.Post("/reset", s.Reset)
		})
	})

	r.Get("/events", s.SubscribeEvents)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	Session domain.Snapshot      `json:"session"`
	View    *domain.RenderedNode `json:"view,omitempty"`
}

// ErrorResponse is the body of every failed request. Fields lists the
// refused values of an input submission.
type ErrorResponse struct {
	Error  string               `json:"error"`
	Fields []*schema.FieldError `json:"fields,omitempty"`
}

type createRequest struct {
	TreeID string `json:"treeId"`
}

type indexRequest struct {
	Index *int `json:"index"`
}

type jumpRequest struct {
	NodeID string `json:"nodeId"`
}

type inputRequest struct {
	Values map[string]any `json:"values"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "consult-http",
		"version": consult.Version,
	})
}

// ListTrees handles GET /trees.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	trees, err := s.Engine.Content().ListTrees()
	if err != nil {
		s.fail(w, "list trees", err)
		return
	}
	s.writeJSON(w, http.StatusOK, trees)
}

// GetTree handles GET /trees/{treeID}.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.Engine.Content().GetTree(chi.URLParam(r, "treeID"))
	if err != nil {
		s.fail(w, "get tree", err)
		return
	}
	s.writeJSON(w, http.StatusOK, tree)
}

// GetGraph handles GET /trees/{treeID}/graph. With session_id the session's path is overlaid.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	tree, err := s.Engine.Content().GetTree(chi.URLParam(r, "treeID"))
	if err != nil {
		s.fail(w, "graph", err)
		return
	}

	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session_id"); id != "" {
		sess, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, "graph", err)
			return
		}
		if sess.TreeID == tree.ID {
			overlay = graph.OverlayFromSession(sess)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(tree, overlay))
}

// GetDrug handles GET /drugs/{drugID}. The optional hint query narrows dosing to an indication.
func (s *Server) GetDrug(w http.ResponseWriter, r *http.Request) {
	drug, err := s.Engine.Content().GetDrug(chi.URLParam(r, "drugID"))
	if err != nil {
		s.fail(w, "get drug", err)
		return
	}
	hint := r.URL.Query().Get("hint")
	if s.writeDocument(w, r, drug.Name, markdown.Drug(drug, hint)) {
		return
	}
	s.writeJSON(w, http.StatusOK, drug)
}

// GetInfoPage handles GET /info-pages/{pageID}.
func (s *Server) GetInfoPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.Engine.Content().GetInfoPage(chi.URLParam(r, "pageID"))
	if err != nil {
		s.fail(w, "get info page", err)
		return
	}
	if s.writeDocument(w, r, page.Title, markdown.InfoPage(page)) {
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// ListCalculators handles GET /calculators.
func (s *Server) ListCalculators(w http.ResponseWriter, r *http.Request) {
	calcs, err := s.Engine.Content().ListCalculators()
	if err != nil {
		s.fail(w, "list calculators", err)
		return
	}
	if calcs == nil {
		calcs = []domain.CalculatorMeta{}
	}
	s.writeJSON(w, http.StatusOK, calcs)
}

// GetCalculator handles GET /calculators/{calcID}.
func (s *Server) GetCalculator(w http.ResponseWriter, r *http.Request) {
	calc, err := s.Engine.Content().GetCalculator(chi.URLParam(r, "calcID"))
	if err != nil {
		s.fail(w, "get calculator", err)
		return
	}
	if s.writeDocument(w, r, calc.Title, markdown.Calculator(calc)) {
		return
	}
	s.writeJSON(w, http.StatusOK, calc)
}

// ScoreCalculator handles POST /calculators/{calcID}/score.
func (s *Server) ScoreCalculator(w http.ResponseWriter, r *http.Request) {
	var body inputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Values == nil {
		s.badRequest(w, "score", "expected {\"values\": {...}}", err)
		return
	}

	values, err := schema.SanitizeValues(body.Values, s.maxInputSize)
	if err != nil {
		s.badRequest(w, "score", err.Error(), err)
		return
	}

	res, err := s.Engine.Calculate(r.Context(), chi.URLParam(r, "calcID"), values)
	if err != nil {
		s.fail(w, "score", err)
		return
	}
	if s.writeDocument(w, r, res.Title, markdown.Score(res)) {
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "list sessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TreeID == "" {
		s.badRequest(w, "create session", "expected {\"treeId\": ...}", err)
		return
	}

	sess, err := s.Sessions.Start(r.Context(), body.TreeID)
	if err != nil {
		s.fail(w, "create session", err)
		return
	}
	s.logger.Info("session created", "session_id", sess.ID, "tree", sess.TreeID)
	s.Streams.Broadcast(sess.ID, domain.Diff(nil, sess))
	s.respondSession(w, r, http.StatusCreated, sess)
}

// GetSession handles GET /sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "get session", err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{Session: sess.Snapshot()})
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := s.Sessions.Store().Load(r.Context(), id); err != nil {
		s.fail(w, "delete session", err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenderSession handles GET /sessions/{sessionID}/render[?format=html|markdown].
func (s *Server) RenderSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "render", err)
		return
	}
	view, err := s.Engine.Render(r.Context(), sess)
	if err != nil {
		s.fail(w, "render", err)
		return
	}
	if s.writeDocument(w, r, view.Title, markdown.Node(view)) {
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// Transcript handles GET /sessions/{sessionID}/transcript, the walked pathway as markdown or HTML.
func (s *Server) Transcript(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "transcript", err)
		return
	}
	tree, err := s.Engine.Content().GetTree(sess.TreeID)
	if err != nil {
		s.fail(w, "transcript", err)
		return
	}
	view, err := s.Engine.Render(r.Context(), sess)
	if err != nil {
		s.fail(w, "transcript", err)
		return
	}

	md := markdown.Transcript(tree, s.Engine.AnswerHistory(sess), view)
	if r.URL.Query().Get("format") == "html" {
		s.writeDocument(w, r, tree.Title, md)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, md)
}

// Select handles POST /sessions/{sessionID}/select.
func (s *Server) Select(w http.ResponseWriter, r *http.Request) {
	var body indexRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Index == nil {
		s.badRequest(w, "select", "expected {\"index\": n}", err)
		return
	}
	s.transition(w, r, "select", func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		return s.Engine.SelectOption(ctx, cur, *body.Index)
	})
}

// Advance handles POST /sessions/{sessionID}/advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "advance", s.Engine.Advance)
}

// Input handles POST /sessions/{sessionID}/input.
func (s *Server) Input(w http.ResponseWriter, r *http.Request) {
	var body inputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Values == nil {
		s.badRequest(w, "input", "expected {\"values\": {...}}", err)
		return
	}

	values, err := schema.SanitizeValues(body.Values, s.maxInputSize)
	if err != nil {
		s.badRequest(w, "input", err.Error(), err)
		return
	}

	s.transition(w, r, "input", func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		return s.Engine.SubmitInput(ctx, cur, values)
	})
}

// Back handles POST /sessions/{sessionID}/back.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "back", s.Engine.GoBack)
}

// Jump handles POST /sessions/{sessionID}/jump.
func (s *Server) Jump(w http.ResponseWriter, r *http.Request) {
	var body jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NodeID == "" {
		s.badRequest(w, "jump", "expected {\"nodeId\": ...}", err)
		return
	}
	s.transition(w, r, "jump", func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		return s.Engine.JumpToNode(ctx, cur, body.NodeID)
	})
}

// Rewind handles POST /sessions/{sessionID}/rewind.
func (s *Server) Rewind(w http.ResponseWriter, r *http.Request) {
	var body indexRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Index == nil {
		s.badRequest(w, "rewind", "expected {\"index\": n}", err)
		return
	}
	s.transition(w, r, "rewind", func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		return s.Engine.RewindTo(ctx, cur, *body.Index)
	})
}

// Reset handles POST /sessions/{sessionID}/reset.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, "reset", s.Engine.Reset)
}

// transition applies fn under the session lock, broadcasts the diff and responds with the new view.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, op string, fn session.UpdateFunc) {
	id := chi.URLParam(r, "sessionID")

	var before *domain.TreeSession
	next, err := s.Sessions.Update(r.Context(), id, func(ctx context.Context, cur *domain.TreeSession) (*domain.TreeSession, error) {
		before = cur
		return fn(ctx, cur)
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}

	if diff := domain.Diff(before, next); diff != nil {
		s.logger.Debug("session diff", "op", op, "session_id", id)
		s.Streams.Broadcast(id, diff)
	}
	s.respondSession(w, r, http.StatusOK, next)
}

func (s *Server) respondSession(w http.ResponseWriter, r *http.Request, status int, sess *domain.TreeSession) {
	view, err := s.Engine.Render(r.Context(), sess)
	if err != nil {
		s.fail(w, "render", err)
		return
	}
	s.writeJSON(w, status, SessionResponse{Session: sess.Snapshot(), View: view})
}

// writeDocument honours ?format=markdown|html and reports whether it wrote a response.
func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, title, md string) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, md)
		return true
	case "html":
		page, err := html.Document(title, md)
		if err != nil {
			s.fail(w, "render html", err)
			return true
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
		return true
	}
	return false
}

// StatusFor maps an engine or store error to an HTTP status code.
func StatusFor(err error) int {
	var fe *schema.FieldError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrTreeNotFound),
		errors.Is(err, domain.ErrDrugNotFound),
		errors.Is(err, domain.ErrInfoPageNotFound),
		errors.Is(err, domain.ErrCalculatorNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSnapshot):
		return http.StatusConflict
	case domain.IsContentError(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, new(*domain.TransitionError)):
		return http.StatusConflict
	case errors.As(err, &fe), errors.As(err, new(*schema.FormError)), errors.Is(err, schema.ErrInputTooLarge), errors.Is(err, schema.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "err", err)
	} else {
		s.logger.Warn("request rejected", "op", op, "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Fields: schema.Fields(err)})
}

func (s *Server) badRequest(w http.ResponseWriter, op, msg string, err error) {
	s.logger.Warn("invalid request body", "op", op, "err", err)
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
