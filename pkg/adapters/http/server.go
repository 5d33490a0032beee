package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/aretw0/blox"
	"github.com/aretw0/blox/internal/logging"
	"github.com/aretw0/blox/pkg/codec"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/export"
	"github.com/aretw0/blox/pkg/registry"
	"github.com/aretw0/blox/pkg/render"
	"github.com/aretw0/blox/pkg/schema"
	"github.com/aretw0/blox/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Editor is the document editing surface served over HTTP.
type Editor interface {
	Document() domain.Document
	Block(id domain.BlockID) (domain.Block, error)
	LoadDocument(domain.Document) error
	PatchBlock(id domain.BlockID, block domain.Block) error
	Delete(id domain.BlockID) error
	Move(id domain.BlockID, dir domain.Direction) error
	Insert(parent domain.BlockID, site, index int, blockType string) (domain.BlockID, error)
	Selection() domain.Selection
	Select(id domain.BlockID) error
	ClearSelection()
	SetView(domain.View) error
	SetViewport(domain.Viewport) error
	Subscribe(store.Listener) func()
	Tree(render.Mode) *render.Node
	HTML(render.Mode) string
	WritePage(w io.Writer, v domain.Viewport) error
	Template() export.Template
	Campaign() export.Campaign
	Catalog() []registry.TypeInfo
}

var _ Editor = (*blox.Editor)(nil)

// Server serves an Editor.
type Server struct {
	Editor  Editor
	Streams *StreamManager

	logger     *slog.Logger
	corsOrigin string
	gatherer   prometheus.Gatherer
	validate   bool

	router      http.Handler
	unsubscribe func()
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCORSOrigin sets Access-Control-Allow-Origin. Defaults to "*".
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		s.corsOrigin = origin
	}
}

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithRequestValidation checks requests against the embedded API description.
func WithRequestValidation(enabled bool) Option {
	return func(s *Server) {
		s.validate = enabled
	}
}

// NewHandler creates a new HTTP handler for the editor. Editor events are
// forwarded to /events subscribers until Close is called.
func NewHandler(ed Editor, opts ...Option) *Server {
	s := &Server{
		Editor:     ed,
		logger:     logging.NewNop(),
		corsOrigin: "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	s.unsubscribe = ed.Subscribe(func(ev domain.Event) {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("event encode failed", "type", ev.Type, "error", err)
			return
		}
		s.Streams.Broadcast(string(ev.Type), string(payload))
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.enableCORS)
	if s.validate {
		if doc, err := GetSwagger(); err != nil {
			s.logger.Error("Failed to load OpenAPI document", "error", err)
		} else if mw, err := requestValidator(doc, s.logger); err != nil {
			s.logger.Error("Failed to build request validator", "error", err)
		} else {
			r.Use(mw)
		}
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/types", s.ListTypes)
	r.Get("/document", s.GetDocument)
	r.Put("/document", s.PutDocument)
	r.Post("/blocks", s.InsertBlock)
	r.Route("/blocks/{id}", func(r chi.Router) {
		r.Get("/", s.GetBlock)
		r.Put("/", s.PatchBlock)
		r.Delete("/", s.DeleteBlock)
		r.Post("/move", s.MoveBlock)
	})
	r.Get("/selection", s.GetSelection)
	r.Put("/selection", s.PutSelection)
	r.Get("/render", s.RenderTree)
	r.Get("/render/html", s.RenderHTML)
	r.Get("/preview", s.Preview)
	r.Get("/export", s.ExportTemplate)
	r.Get("/campaign", s.ExportCampaign)
	r.Get("/events", s.SubscribeEvents)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close detaches the server from the editor. Open /events streams stop
// receiving events.
func (s *Server) Close() {
	s.unsubscribe()
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Blox API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "blox-http",
		"version":     blox.Version,
		"api_version": apiVersion,
	})
}

// ListTypes handles the GET /types request.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Catalog())
}

// GetDocument handles the GET /document request. ?format=yaml switches the encoding.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	format := codec.JSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := codec.ParseFormat(q)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f
	}

	data, err := codec.Marshal(s.Editor.Document(), format)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if format == codec.YAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(data)
}

// PutDocument handles the PUT /document request. YAML bodies are accepted
// when the Content-Type says so.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	format := codec.JSON
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && strings.Contains(mt, "yaml") {
		format = codec.YAML
	}
	doc, err := codec.Unmarshal(body, format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.Editor.LoadDocument(doc); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBlock handles the GET /blocks/{id} request.
func (s *Server) GetBlock(w http.ResponseWriter, r *http.Request) {
	b, err := s.Editor.Block(blockID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, b)
}

// PatchBlock handles the PUT /blocks/{id} request.
func (s *Server) PatchBlock(w http.ResponseWriter, r *http.Request) {
	var b domain.Block
	if !s.decode(w, r, &b) {
		return
	}
	id := blockID(r)
	if err := s.Editor.PatchBlock(id, b); err != nil {
		s.writeDomainError(w, err)
		return
	}
	stored, err := s.Editor.Block(id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

// DeleteBlock handles the DELETE /blocks/{id} request.
func (s *Server) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Delete(blockID(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveBlock handles the POST /blocks/{id}/move request.
func (s *Server) MoveBlock(w http.ResponseWriter, r *http.Request) {
	dir, err := domain.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.Editor.Move(blockID(r), dir); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Selection())
}

type insertRequest struct {
	Parent domain.BlockID `json:"parent"`
	Site   int            `json:"site"`
	Index  *int           `json:"index"`
	Type   string         `json:"type"`
}

// InsertBlock handles the POST /blocks request. Without an index the block
// is appended.
func (s *Server) InsertBlock(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if !s.decode(w, r, &req) {
		return
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}

	id, err := s.Editor.Insert(req.Parent, req.Site, index, req.Type)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]domain.BlockID{"id": id})
}

// GetSelection handles the GET /selection request.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Selection())
}

type selectionRequest struct {
	BlockID  json.RawMessage  `json:"selectedBlockId"`
	View     *domain.View     `json:"view"`
	Viewport *domain.Viewport `json:"viewport"`
}

// PutSelection handles the PUT /selection request.
func (s *Server) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !s.decode(w, r, &req) {
		return
	}

	if len(req.BlockID) > 0 {
		var id *domain.BlockID
		if err := json.Unmarshal(req.BlockID, &id); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if id == nil || *id == "" {
			s.Editor.ClearSelection()
		} else if err := s.Editor.Select(*id); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}
	if req.View != nil {
		if err := s.Editor.SetView(*req.View); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}
	if req.Viewport != nil {
		if err := s.Editor.SetViewport(*req.Viewport); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Selection())
}

// RenderTree handles the GET /render request.
func (s *Server) RenderTree(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.mode(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.Editor.Tree(mode))
}

// RenderHTML handles the GET /render/html request.
func (s *Server) RenderHTML(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.mode(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, s.Editor.HTML(mode))
}

// Preview handles the GET /preview request. The viewport defaults to the
// one in the current selection.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	vp := s.Editor.Selection().Viewport
	if q := r.URL.Query().Get("viewport"); q != "" {
		v, err := domain.ParseViewport(q)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		vp = v
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Editor.WritePage(w, vp); err != nil {
		s.logger.Error("Preview write failed", "error", err)
	}
}

// ExportTemplate handles the GET /export request.
func (s *Server) ExportTemplate(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Template())
}

// ExportCampaign handles the GET /campaign request.
func (s *Server) ExportCampaign(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Campaign())
}

// SubscribeEvents handles the GET /events request (SSE). ?types narrows
// the stream to a comma separated list of event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	topics := []string{
		string(domain.EventBlockPatched),
		string(domain.EventDocumentReplaced),
		string(domain.EventSelectionChanged),
	}
	if q := r.URL.Query().Get("types"); q != "" {
		topics = topics[:0]
		for _, t := range strings.Split(q, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(topics)
	defer cancel()
	s.logger.Info("SSE: Client subscribed", "types", topics)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var head struct {
				Type string `json:"type"`
			}
			_ = json.Unmarshal([]byte(msg), &head)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", head.Type, msg)
			flusher.Flush()
		}
	}
}

func blockID(r *http.Request) domain.BlockID {
	return domain.BlockID(chi.URLParam(r, "id"))
}

func (s *Server) mode(w http.ResponseWriter, r *http.Request) (render.Mode, bool) {
	q := r.URL.Query().Get("mode")
	if q == "" {
		return render.ModeStatic, true
	}
	m, err := render.ParseMode(q)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return m, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

type fieldError struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

type errorBody struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

// statusFor maps editor errors onto HTTP statuses.
func statusFor(err error) int {
	var se *registry.SchemaError
	var be *store.BlockError
	switch {
	case errors.As(err, &se), errors.As(err, &be),
		errors.Is(err, domain.ErrTypeNotFound),
		errors.Is(err, domain.ErrInvalidRoot),
		errors.Is(err, domain.ErrMissingRoot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBlockNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRootProtected):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidView),
		errors.Is(err, domain.ErrInvalidViewport),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrNotContainer),
		errors.Is(err, domain.ErrSiteOutOfRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeError(w, status, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Error: err.Error()}
	for _, fe := range schema.ValidationErrors(err) {
		var ve *schema.ValidationError
		if errors.As(fe, &ve) {
			body.Fields = append(body.Fields, fieldError{Key: ve.Key, Reason: ve.Reason})
		}
	}
	writeJSON(w, status, body, s.logger)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
