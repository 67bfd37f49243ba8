package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"pm-dashboard-api/internal/auth"
	"pm-dashboard-api/internal/derive"
	"pm-dashboard-api/internal/models"
	"pm-dashboard-api/internal/store"

	"github.com/go-chi/chi/v5"
)

// saveRequest is a record plus the free-text department override used when
// the "Others" sentinel is chosen in the department list.
type saveRequest struct {
	models.PMRecord
	DepartmentOther string `json:"departmentOther,omitempty"`
}

// LIST with category filter, text search, sort & pagination
func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	records := derive.FilterByDevice(s.Store.Snapshot(), params.device)
	records = filterByQuery(records, params.q)
	sortRecords(records, params.sort)

	total := len(records)
	page := paginate(records, params.limit, params.offset)
	if !auth.HasVaultAccess(r.Context()) {
		for i := range page {
			page[i] = page[i].Redacted()
		}
	}

	sendListResponse(w, page, total, params)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok := s.Store.Get(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !auth.HasVaultAccess(r.Context()) {
		rec = rec.Redacted()
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeSave(w, r)
	if !ok {
		return
	}

	if err := s.Store.Create(r.Context(), in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.Metrics.SetRecordCount(s.Store.Len())
	out, _ := s.Store.Get(in.ID)
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	in, ok := s.decodeSave(w, r)
	if !ok {
		return
	}
	if in.ID != id {
		http.Error(w, "body id does not match path", http.StatusBadRequest)
		return
	}

	if err := s.Store.Update(r.Context(), in); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, _ := s.Store.Get(id)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	s.Store.Delete(r.Context(), chi.URLParam(r, "id"))
	s.Metrics.SetRecordCount(s.Store.Len())
	w.WriteHeader(http.StatusNoContent)
}

// replaceRecords swaps in a full record set wholesale, the same shape the
// remote sheet returns. Null and id-less rows are dropped silently.
func (s *Server) replaceRecords(w http.ResponseWriter, r *http.Request) {
	var records []models.PMRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	s.Store.ReplaceAll(r.Context(), records)
	s.Metrics.SetRecordCount(s.Store.Len())
	writeJSON(w, http.StatusOK, map[string]int{"count": s.Store.Len()})
}

// decodeSave parses and validates the shared create/update payload. A false
// return means the response has already been written.
func (s *Server) decodeSave(w http.ResponseWriter, r *http.Request) (models.PMRecord, bool) {
	var in saveRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return models.PMRecord{}, false
	}

	if in.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return models.PMRecord{}, false
	}
	if in.Device != models.DeviceComputer && in.Device != models.DevicePrinter {
		http.Error(w, "device must be Computer or Printer", http.StatusBadRequest)
		return models.PMRecord{}, false
	}
	if int64(len(in.ImageURL)) > s.imageMaxBytes {
		http.Error(w, "image payload too large", http.StatusBadRequest)
		return models.PMRecord{}, false
	}

	in.Department = s.catalog.ResolveDepartment(in.Department, in.DepartmentOther)
	return in.PMRecord, true
}

// getStats reduces the category-filtered set to its aggregate statistics.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	device := parseDevice(r.URL.Query().Get("device"))
	records := derive.FilterByDevice(s.Store.Snapshot(), device)
	writeJSON(w, http.StatusOK, derive.Compute(records, s.catalog, s.clock))
}

// getCatalog exposes the enumerations that drive edit forms: departments,
// health conditions and the per-category activity checklists.
func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"departments":     s.catalog.Departments,
		"departmentOther": s.catalog.DepartmentOther,
		"deviceStatuses":  s.catalog.DeviceStatuses,
		"activities":      s.catalog.Activities,
	})
}
