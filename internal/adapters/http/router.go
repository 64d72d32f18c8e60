package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/roadsign-assistant/internal/core/ports"
	"github.com/kirillkom/roadsign-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	answerer ports.QueryAnswerer
	metrics  *metrics.QueryMetrics

	rateLimitRPS   float64
	rateLimitBurst int
}

func NewRouter(answerer ports.QueryAnswerer, m *metrics.QueryMetrics, rateLimitRPS float64, rateLimitBurst int) *Router {
	return &Router{
		answerer:       answerer,
		metrics:        m,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/ask", rt.ask)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = corsMiddleware(handler)
	handler = metricsMiddleware(handler, rt.metrics)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

// healthz only reports ok once the corpus and index are built: bootstrap
// refuses to construct the router over a partially loaded corpus.
func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	response, err := rt.answerer.Answer(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveQuery(
			serviceName,
			string(response.Intent),
			len(response.Documents),
			response.NoContext,
			response.Fallback,
			time.Since(start),
		)
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
