package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"findata-mcp/internal/apperr"
	"findata-mcp/internal/app"
	"findata-mcp/observability"
	"findata-mcp/tools"
)

// maxBodyBytes bounds a tool call request body
const maxBodyBytes = 1 << 20

// ClientIDHeader lets callers name themselves for per-client rate limiting
const ClientIDHeader = "X-Client-ID"

// Backend is the application as seen by the HTTP handlers
type Backend interface {
	Call(ctx context.Context, req tools.Request) tools.Response
	Health(ctx context.Context) app.HealthReport
}

// Handler handles HTTP API requests
type Handler struct {
	backend Backend
}

// NewHandler creates a new Handler
func NewHandler(backend Backend) *Handler {
	return &Handler{backend: backend}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.backend.Health(r.Context()))
}

// toolEntry is a catalog entry with its JSON schema
type toolEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// HandleListTools returns the tool catalog
func (h *Handler) HandleListTools(w http.ResponseWriter, r *http.Request) {
	entries := make([]toolEntry, len(tools.Catalog))
	for i, d := range tools.Catalog {
		entries[i] = toolEntry{Name: string(d.Name), Description: d.Description, InputSchema: d.InputSchema()}
	}
	h.jsonResponse(w, http.StatusOK, map[string]any{"tools": entries})
}

// HandleCallTool runs one tool call. The HTTP status mirrors the error kind.
func (h *Handler) HandleCallTool(w http.ResponseWriter, r *http.Request) {
	var req tools.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.jsonError(w, apperr.Invalid("body", "must be a JSON object with name and arguments: %v", err))
		return
	}
	if req.Args == nil {
		req.Args = map[string]any{}
	}
	req.CallerKey = CallerKey(r)

	resp := h.backend.Call(r.Context(), req)
	if !resp.OK {
		if resp.Error.RetryAfterSeconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(resp.Error.RetryAfterSeconds))
		}
		h.jsonResponse(w, apperr.HTTPStatus(resp.Err), resp)
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// HandleListResources returns the schema resources
func (h *Handler) HandleListResources(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]any{"resources": tools.Resources()})
}

// HandleReadResource returns the description of one table
func (h *Handler) HandleReadResource(w http.ResponseWriter, r *http.Request) {
	uri := tools.SchemaScheme + chi.URLParam(r, "table")
	text, ok := tools.ReadResource(uri)
	if !ok {
		h.jsonError(w, &apperr.NotFoundError{Identifier: uri})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

// HandleListPrompts returns the prompt templates
func (h *Handler) HandleListPrompts(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]any{"prompts": tools.Prompts})
}

// HandleGetPrompt renders a prompt from query parameters
func (h *Handler) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := tools.LookupPrompt(name)
	if !ok {
		h.jsonError(w, &apperr.NotFoundError{Identifier: name})
		return
	}

	args := make(map[string]string, len(p.Args))
	for _, a := range p.Args {
		args[a.Name] = r.URL.Query().Get(a.Name)
	}
	text, err := p.Render(args)
	if err != nil {
		h.jsonError(w, apperr.Invalid(p.Args[0].Name, "is required"))
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"name": p.Name, "text": text})
}

// CallerKey identifies the caller: an explicit client id when given,
// otherwise the remote host.
func CallerKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		observability.Warn("failed to encode response", "error", err)
	}
}

// jsonError writes a typed error in the same shape as a failed tool call
func (h *Handler) jsonError(w http.ResponseWriter, err error) {
	body := tools.ErrorBody{Kind: apperr.KindOf(err), Message: err.Error()}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
		body.Reason = ve.Reason
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		body.Identifier = nf.Identifier
	}
	h.jsonResponse(w, apperr.HTTPStatus(err), map[string]any{"ok": false, "error": body})
}
