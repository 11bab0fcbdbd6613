package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

type Server struct {
	svc     *application.MarketService
	updater *application.Updater
	ping    func(ctx context.Context) error
}

func NewServer(svc *application.MarketService, updater *application.Updater) *Server {
	return &Server{svc: svc, updater: updater}
}

// WithPing wires a readiness check, usually the database pool's Ping.
func (s *Server) WithPing(fn func(ctx context.Context) error) *Server {
	s.ping = fn
	return s
}

// envelope matches the shape every list and detail endpoint responds with.
type envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) ListCurrent(w http.ResponseWriter, r *http.Request) {
	class, ok := parseClass(w, r)
	if !ok {
		return
	}
	quotes, err := s.svc.ListCurrent(r.Context(), class)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeList(w, quotes)
}

func (s *Server) GetCurrent(w http.ResponseWriter, r *http.Request) {
	class, ok := parseClass(w, r)
	if !ok {
		return
	}
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		badRequest(w, "invalid asset key")
		return
	}
	q, err := s.svc.GetCurrent(r.Context(), class, key)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: q})
}

func (s *Server) History(w http.ResponseWriter, r *http.Request) {
	class, ok := parseClass(w, r)
	if !ok {
		return
	}
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		badRequest(w, "invalid asset key")
		return
	}
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days < 0 {
			badRequest(w, "days must be a non-negative integer")
			return
		}
	}
	points, err := s.svc.History(r.Context(), class, key, days)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeList(w, points)
}

func (s *Server) ListNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	items, err := s.svc.News(r.Context(), application.NewsFilter{
		Category: q.Get("category"),
		Source:   q.Get("source"),
		Limit:    limit,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeList(w, items)
}

func (s *Server) RecentLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	logs, err := s.svc.RecentUpdateLogs(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeList(w, logs)
}

// RunUpdate triggers an update cycle synchronously. Individual stage
// failures are reported inside the body; only an unknown class is a 400.
func (s *Server) RunUpdate(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("class")
	report, err := s.updater.RunCycle(r.Context(), target)
	if err != nil {
		if errors.Is(err, application.ErrBadRequest) {
			badRequest(w, err.Error())
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: report.Succeeded(), Data: report})
}

func parseClass(w http.ResponseWriter, r *http.Request) (domain.AssetClass, bool) {
	raw := chi.URLParam(r, "class")
	class, ok := domain.ParseAssetClass(raw)
	if !ok || !class.Numeric() {
		badRequest(w, "unknown asset class: "+raw)
		return "", false
	}
	return class, true
}

func writeList(w http.ResponseWriter, v any) {
	n := sliceLen(v)
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &n, Data: v})
}

func sliceLen(v any) int {
	switch s := v.(type) {
	case []domain.AssetQuote:
		return len(s)
	case []domain.HistoryPoint:
		return len(s)
	case []domain.NewsItem:
		return len(s)
	case []domain.UpdateLog:
		return len(s)
	}
	return 0
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case application.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "not found"})
	case errors.Is(err, domain.ErrUnsupportedClass):
		badRequest(w, err.Error())
	default:
		internalError(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: msg})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: http.StatusText(http.StatusInternalServerError)})
}
