package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	oapiruntime "github.com/oapi-codegen/runtime"

	"github.com/yourorg/keyverify/internal/console"
	"github.com/yourorg/keyverify/internal/registry"
)

// Response messages. External clients match some of these literally.
const (
	msgMissingKey      = "Faltando chave"
	msgKeyRequired     = "Chave é obrigatória"
	msgKeyExists       = "Chave já existe"
	msgKeyNotFound     = "Chave não encontrada"
	msgKeyInvalid      = "Chave inválida"
	msgBadJSON         = "JSON inválido"
	msgKeyCreated      = "Chave criada com sucesso"
	msgKeyRemoved      = "Chave removida com sucesso"
	msgEndpointMissing = "Endpoint não encontrado"
	msgInternal        = "Erro interno do servidor"
	msgReportFailed    = "Falha ao gerar relatório"
)

// PDFPrinter prints rendered console HTML to a PDF document.
type PDFPrinter interface {
	Print(ctx context.Context, html string) ([]byte, error)
}

// Handler serves the verification, management and console endpoints.
type Handler struct {
	store   *registry.Store
	cfg     Config
	metrics *Metrics
	pdf     PDFPrinter
	logger  *slog.Logger
	started time.Time
	now     func() time.Time
}

// NewHandler creates a handler bound to store.
func NewHandler(store *registry.Store, cfg Config, metrics *Metrics, pdf PDFPrinter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(store)
	}
	if cfg.DefaultLogLimit <= 0 {
		cfg.DefaultLogLimit = registry.DefaultRecentLimit
	}
	return &Handler{
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		pdf:     pdf,
		logger:  logger,
		started: time.Now(),
		now:     time.Now,
	}
}

// CreateKeyRequest is the request body for creating a key.
type CreateKeyRequest struct {
	Key string `json:"key"`
}

// CreateKeyResponse is the response for a created key.
type CreateKeyResponse struct {
	registry.KeyRecord
	Message string `json:"message"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a client error.
type ErrorResponse struct {
	Error string `json:"error"`
}

type internalErrorBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Uptime    int64        `json:"uptime"`
	Memory    MemoryReport `json:"memory"`
	ValidKeys int          `json:"validKeys"`
	TotalLogs int          `json:"totalLogs"`
	Version   string       `json:"version"`
}

// MemoryReport is a subset of runtime.MemStats, in bytes.
type MemoryReport struct {
	Sys        uint64 `json:"sys"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	HeapSys    uint64 `json:"heapSys"`
	TotalAlloc uint64 `json:"totalAlloc"`
	NumGC      uint32 `json:"numGC"`
}

// NotFoundResponse lists the public endpoints.
type NotFoundResponse struct {
	Error              string             `json:"error"`
	AvailableEndpoints AvailableEndpoints `json:"availableEndpoints"`
}

// AvailableEndpoints is part of NotFoundResponse.
type AvailableEndpoints struct {
	API    string `json:"api"`
	Web    string `json:"web"`
	Health string `json:"health"`
	Logs   string `json:"logs"`
	Stats  string `json:"stats"`
}

// Verify handles GET /verificar?chave=. The body is exactly "Aprovado" or
// "Recusado"; the key is matched without trimming.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("chave")
	source := clientIP(r, h.cfg.TrustProxyHeaders)

	result, err := h.store.Verify(key, source)
	h.metrics.observeVerification(result)
	if errors.Is(err, registry.ErrMissingKey) {
		writeText(w, http.StatusBadRequest, msgMissingKey)
		return
	}

	writeText(w, http.StatusOK, string(result))
}

// ListKeys handles GET /api/keys
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Keys().List())
}

// CreateKey handles POST /api/keys. Both JSON and form-encoded bodies are accepted.
func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
	key, err := decodeKey(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgBadJSON})
		return
	}

	rec, err := h.store.AddKey(key)
	switch {
	case errors.Is(err, registry.ErrEmptyKey):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgKeyRequired})
		return
	case errors.Is(err, registry.ErrAlreadyExists):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgKeyExists})
		return
	case err != nil:
		h.writeInternalError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "key created", slog.String("key", rec.Key))
	writeJSON(w, http.StatusCreated, CreateKeyResponse{KeyRecord: rec, Message: msgKeyCreated})
}

// DeleteKey handles DELETE /api/keys/{key}
func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	key, err := pathKey(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgKeyInvalid})
		return
	}

	if err := h.store.RemoveKey(key); err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msgKeyNotFound})
		return
	}

	h.logger.InfoContext(r.Context(), "key removed", slog.String("key", key))
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgKeyRemoved})
}

// ListLogs handles GET /api/logs?limit=
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := h.cfg.DefaultLogLimit
	var requested int
	err := oapiruntime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &requested)
	if err == nil && requested > 0 {
		limit = requested
	}
	writeJSON(w, http.StatusOK, h.store.Log().Recent(limit))
}

// Stats handles GET /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	now := h.now()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Uptime:    int64(math.Floor(now.Sub(h.started).Seconds())),
		Memory: MemoryReport{
			Sys:        ms.Sys,
			HeapAlloc:  ms.HeapAlloc,
			HeapSys:    ms.HeapSys,
			TotalAlloc: ms.TotalAlloc,
			NumGC:      ms.NumGC,
		},
		ValidKeys: h.store.Keys().Len(),
		TotalLogs: h.store.Log().Len(),
		Version:   h.cfg.Version,
	})
}

// Console handles GET /
func (h *Handler) Console(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := console.Render(&buf, console.NewPage(h.store, baseURL(r), h.now())); err != nil {
		h.writeInternalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Report handles GET /api/report.pdf
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: msgReportFailed})
		return
	}

	var buf bytes.Buffer
	if err := console.Render(&buf, console.NewPage(h.store, baseURL(r), h.now())); err != nil {
		h.writeInternalError(w, r, err)
		return
	}
	pdf, err := h.pdf.Print(r.Context(), buf.String())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "pdf export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: msgReportFailed})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio-chaves.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// NotFound handles every unmatched route and method.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, NotFoundResponse{
		Error: msgEndpointMissing,
		AvailableEndpoints: AvailableEndpoints{
			API:    "/verificar?chave=YOUR_KEY",
			Web:    "/",
			Health: "/health",
			Logs:   "/api/logs",
			Stats:  "/api/stats",
		},
	})
}

func (h *Handler) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, internalErrorBody{
		Error:     msgInternal,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

func decodeKey(r *http.Request) (string, error) {
	defer r.Body.Close()

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return r.PostForm.Get("key"), nil
	}

	var req CreateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return req.Key, nil
}

// pathKey returns the percent-decoded {key} parameter. chi matches on the raw
// path only when the request path carries escapes the default encoding would
// not produce; otherwise the parameter is already decoded.
func pathKey(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return raw, nil
	}

	var key string
	err := oapiruntime.BindStyledParameterWithOptions("simple", "key", raw, &key, oapiruntime.BindStyledParameterOptions{
		ParamLocation: oapiruntime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	return key, err
}

func baseURL(r *http.Request) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
		if r.TLS != nil {
			proto = "https"
		}
	}
	return proto + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
