package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedwatch/pkg/journal"
)

const (
	defaultDeliveriesLimit = 50
	maxDeliveriesLimit     = 500
)

type sourceInfo struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Badge string `json:"badge,omitempty"`
}

type cacheInfo struct {
	Size int `json:"size"`
	Cap  int `json:"cap"`
}

type statusResponse struct {
	Status        string          `json:"status"`
	Version       string          `json:"version"`
	Time          time.Time       `json:"time"`
	Sources       []sourceInfo    `json:"sources"`
	CheckInterval string          `json:"check_interval"`
	Cache         cacheInfo       `json:"cache"`
	Cycles        int64           `json:"cycles"`
	Sent          int64           `json:"sent"`
	Failed        int64           `json:"failed"`
	LastCycle     *time.Time      `json:"last_cycle,omitempty"`
	Journal       *journal.Counts `json:"journal,omitempty"`
}

// statusHandler returns watcher status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	st := s.status.Status()
	resp := statusResponse{
		Status:        "ok",
		Version:       s.version,
		Time:          time.Now().UTC(),
		Sources:       make([]sourceInfo, 0, len(st.Sources)),
		CheckInterval: st.Interval.String(),
		Cache:         cacheInfo{Size: st.CacheSize, Cap: st.CacheCap},
		Cycles:        st.Cycles,
		Sent:          st.Sent,
		Failed:        st.Failed,
	}
	for _, src := range st.Sources {
		resp.Sources = append(resp.Sources, sourceInfo{Name: src.Name, URL: src.URL, Badge: src.Badge})
	}
	if !st.LastCycle.IsZero() {
		last := st.LastCycle.UTC()
		resp.LastCycle = &last
	}

	if s.deliveries != nil {
		counts, err := s.deliveries.Counts(r.Context())
		if err != nil {
			lgr.Printf("[WARN] failed to get journal counts: %v", err)
		} else {
			resp.Journal = &counts
		}
	}

	renderJSON(w, r, http.StatusOK, resp)
}

// deliveriesHandler returns recent delivery attempts, newest first
func (s *Server) deliveriesHandler(w http.ResponseWriter, r *http.Request) {
	if s.deliveries == nil {
		renderError(w, r, errors.New("journal disabled"), http.StatusNotFound)
		return
	}

	limit := defaultDeliveriesLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			renderError(w, r, fmt.Errorf("invalid limit %q", limitStr), http.StatusBadRequest)
			return
		}
		limit = min(l, maxDeliveriesLimit)
	}

	recs, err := s.deliveries.Recent(r.Context(), limit)
	if err != nil {
		lgr.Printf("[ERROR] failed to get deliveries: %v", err)
		renderError(w, r, errors.New("can't get deliveries"), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []journal.Delivery{}
	}
	renderJSON(w, r, http.StatusOK, recs)
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
