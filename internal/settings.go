package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"pm-dashboard-api/internal/localstore"
	"pm-dashboard-api/internal/syncer"
)

type sheetURLPayload struct {
	SheetURL string `json:"sheetUrl"`
}

func (s *Server) getSheetURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sheetURLPayload{SheetURL: s.sheetURL()})
}

// putSheetURL stores the sync endpoint durably. An empty value clears the
// override and falls back to the environment default.
func (s *Server) putSheetURL(w http.ResponseWriter, r *http.Request) {
	var in sheetURLPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if in.SheetURL != "" {
		u, err := url.Parse(in.SheetURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			http.Error(w, "sheetUrl must be an absolute http(s) URL", http.StatusBadRequest)
			return
		}
	}

	if err := s.kv.Set(r.Context(), localstore.KeySheetURL, in.SheetURL); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sheetURLPayload{SheetURL: s.sheetURL()})
}

// refreshStatus records the outcome of the last fetch-and-replace.
type refreshStatus struct {
	Finished time.Time `json:"finished"`
	Count    int       `json:"count"`
	Error    string    `json:"error,omitempty"`
}

// RefreshFromSheet fetches the full record set and replaces local state with
// it. Used by the sync endpoint and by the startup hydration pass.
func (s *Server) RefreshFromSheet(ctx context.Context) (int, error) {
	records, err := s.client.Fetch(ctx)

	status := refreshStatus{Finished: s.clock()}
	if err != nil {
		status.Error = err.Error()
		s.setLastRefresh(status)
		return 0, err
	}

	s.Store.ReplaceAll(ctx, records)
	s.Metrics.SetRecordCount(s.Store.Len())
	status.Count = s.Store.Len()
	s.setLastRefresh(status)
	return status.Count, nil
}

func (s *Server) setLastRefresh(status refreshStatus) {
	s.refreshMu.Lock()
	s.lastRefresh = &status
	s.refreshMu.Unlock()
}

// syncRefresh is the manual fetch-and-replace trigger. Local state is only
// touched on a successful fetch.
func (s *Server) syncRefresh(w http.ResponseWriter, r *http.Request) {
	count, err := s.RefreshFromSheet(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// syncStatus reports the most recent push and refresh outcomes.
func (s *Server) syncStatus(w http.ResponseWriter, r *http.Request) {
	var lastPush *syncer.Result
	if res, ok := s.Pusher.Last(); ok {
		lastPush = &res
	}

	s.refreshMu.RLock()
	lastRefresh := s.lastRefresh
	s.refreshMu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"configured":  s.sheetURL() != "",
		"lastPush":    lastPush,
		"lastRefresh": lastRefresh,
	})
}
