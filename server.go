package talon

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8080".
	Addr string

	// Analyzer serves the requests. When nil, a default Analyzer is used.
	Analyzer *Analyzer

	// Logger receives request logs. Default: discard.
	Logger *slog.Logger
}

// NewServer builds an http.Server exposing the analysis API:
//
//	GET  /health
//	GET  /spf/{domain}
//	GET  /dkim/{domain}?selector=s&aggressive=true
//	GET  /dmarc/{domain}
//	POST /report
//
// The caller owns the returned server and is responsible for ListenAndServe
// and Shutdown.
func NewServer(config ServerConfig) *http.Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.Analyzer == nil {
		config.Analyzer = NewAnalyzer(AnalyzerConfig{})
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}

	h := &apiHandler{analyzer: config.Analyzer, log: config.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /spf/{domain}", h.spf)
	mux.HandleFunc("GET /dkim/{domain}", h.dkim)
	mux.HandleFunc("GET /dmarc/{domain}", h.dmarc)
	mux.HandleFunc("POST /report", h.report)

	return &http.Server{
		Addr:              config.Addr,
		Handler:           h.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type apiHandler struct {
	analyzer *Analyzer
	log      *slog.Logger
}

func (h *apiHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}

func (h *apiHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encoding response", "error", err)
	}
}

func (h *apiHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrEmptyDomain) {
		status = http.StatusBadRequest
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *apiHandler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "talon",
	})
}

func (h *apiHandler) spf(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")
	if domain == "" {
		h.writeError(w, ErrEmptyDomain)
		return
	}
	section, _ := h.analyzer.analyzeSPF(r.Context(), domain)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"domain": domain,
		"spf":    section,
	})
}

func (h *apiHandler) dkim(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")
	if domain == "" {
		h.writeError(w, ErrEmptyDomain)
		return
	}

	if selector := r.URL.Query().Get("selector"); selector != "" {
		info := h.analyzer.ProbeSelector(r.Context(), domain, selector)
		h.writeJSON(w, http.StatusOK, map[string]any{
			"domain":   domain,
			"selector": info,
		})
		return
	}

	aggressive := r.URL.Query().Get("aggressive") == "true"
	found := h.analyzer.DiscoverSelectors(r.Context(), domain, aggressive)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"domain":             domain,
		"found_selectors":    found,
		"aggressive_checked": aggressive,
	})
}

func (h *apiHandler) dmarc(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")
	if domain == "" {
		h.writeError(w, ErrEmptyDomain)
		return
	}
	section := h.analyzer.analyzeDMARC(r.Context(), domain)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"domain": domain,
		"dmarc":  section,
	})
}

func (h *apiHandler) report(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain         string `json:"domain"`
		AggressiveDKIM bool   `json:"aggressive_dkim"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	report, err := h.analyzer.AnalyzeDomain(r.Context(), req.Domain, req.AggressiveDKIM)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}
