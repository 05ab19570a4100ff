package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/acmecorp/docquery/internal/config"
	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
	"github.com/acmecorp/docquery/internal/core/usecase"
	"github.com/acmecorp/docquery/internal/observability/metrics"
)

type Router struct {
	cfg      config.Config
	ingestUC ports.DocumentIngestor
	queryUC  ports.QueryService
	docs     ports.DocumentReader
	sessions *usecase.SessionManager
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingestUC ports.DocumentIngestor,
	queryUC ports.QueryService,
	docs ports.DocumentReader,
	sessions *usecase.SessionManager,
) *Router {
	return &Router{
		cfg:      cfg,
		ingestUC: ingestUC,
		queryUC:  queryUC,
		docs:     docs,
		sessions: sessions,
	}
}

// SetMetrics attaches the server metrics registry. Handlers record nothing
// when it is absent.
func (rt *Router) SetMetrics(m *metrics.HTTPServerMetrics) { rt.metrics = m }

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/rag/query", rt.queryRAG)
	mux.HandleFunc("/v1/sessions", rt.createSession)
	mux.HandleFunc("/v1/sessions/", rt.sessionByID)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	category, ok := domain.ParseCategory(r.FormValue("category"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
		return
	}

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		category,
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) queryRAG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.queryUC.Answer(r.Context(), req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrieval("api", "rag_query", len(answer.Sources), time.Since(start))
		rt.metrics.RecordCategoryRequest("api", answer.Category.String())
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.sessions == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "sessions are not enabled"})
		return
	}

	var req struct {
		MemoryMode string `json:"memory_mode"`
	}
	// An absent or empty body means defaults; malformed JSON does not.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	var mode domain.MemoryMode
	if strings.TrimSpace(req.MemoryMode) != "" {
		mode = domain.ParseMemoryMode(req.MemoryMode)
	}

	session := rt.sessions.Create(mode)
	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id":  session.ID(),
		"memory_mode": string(session.MemoryMode()),
	})
}

func (rt *Router) sessionByID(w http.ResponseWriter, r *http.Request) {
	if rt.sessions == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "sessions are not enabled"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	if id, ok := strings.CutSuffix(rest, "/messages"); ok {
		rt.postSessionMessage(w, r, id)
		return
	}

	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.sessions.Delete(rest); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) postSessionMessage(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	session, err := rt.sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	compactionsBefore := session.Compactions()
	answer, err := session.Handle(r.Context(), req.Message)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordSessionTurn("api", "error")
		}
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		outcome := "answered"
		if answer.Text == domain.NoRelevantDocumentsMessage {
			outcome = "no_context"
		}
		rt.metrics.RecordSessionTurn("api", outcome)
		rt.metrics.RecordCategoryRequest("api", answer.Category.String())
		rt.metrics.RecordRetrieval("api", "session_message", len(answer.Sources), time.Since(start))
		rt.metrics.RecordMemoryCompactions("api", session.Compactions()-compactionsBefore)
	}
	writeJSON(w, http.StatusOK, answer)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
