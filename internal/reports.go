package internal

import (
	"net/http"
	"net/url"

	"pm-dashboard-api/internal/derive"
	"pm-dashboard-api/internal/models"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

// shareURL builds the public link a record is addressable at. Anyone with
// the link can view the report; the secret fields never appear on it.
func (s *Server) shareURL(id string) string {
	return s.publicBaseURL + "/report?view=" + url.QueryEscape(id)
}

// reportView is the public single-record report payload.
type reportView struct {
	Record        models.PMRecord `json:"record"`
	Alert         derive.Alert    `json:"alert"`
	DateDisplay   string          `json:"dateDisplay"`
	NextPMDisplay string          `json:"nextPmDisplay"`
	Broken        bool            `json:"broken"`
	ShareURL      string          `json:"shareUrl"`
	QRPath        string          `json:"qrPath"`
}

// tagPayload is one printable equipment tag.
type tagPayload struct {
	ID            string `json:"id"`
	AssetName     string `json:"assetName,omitempty"`
	ComputerName  string `json:"computerName,omitempty"`
	Department    string `json:"department"`
	Device        string `json:"device"`
	Location      string `json:"location,omitempty"`
	NextPMDisplay string `json:"nextPmDisplay"`
	ShareURL      string `json:"shareUrl"`
	QRPath        string `json:"qrPath"`
}

func (s *Server) tagFor(rec models.PMRecord) tagPayload {
	return tagPayload{
		ID:            rec.ID,
		AssetName:     rec.AssetName,
		ComputerName:  rec.ComputerName,
		Department:    rec.Department,
		Device:        rec.Device,
		Location:      rec.Location,
		NextPMDisplay: models.FormatDisplay(rec.NextPMDate),
		ShareURL:      s.shareURL(rec.ID),
		QRPath:        "/report/" + url.PathEscape(rec.ID) + "/qr.png",
	}
}

// getReport resolves the ?view= query parameter to a read-only public report.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("view")
	if id == "" {
		http.Error(w, "view parameter is required", http.StatusBadRequest)
		return
	}

	rec, ok := s.Store.Get(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, reportView{
		Record:        rec.Redacted(),
		Alert:         derive.Classify(rec.NextPMDate, s.clock),
		DateDisplay:   models.FormatDisplay(rec.Date),
		NextPMDisplay: models.FormatDisplay(rec.NextPMDate),
		Broken:        s.catalog.IsBroken(rec.DeviceStatus),
		ShareURL:      s.shareURL(rec.ID),
		QRPath:        "/report/" + url.PathEscape(rec.ID) + "/qr.png",
	})
}

// getReportQR renders the share link as a QR code PNG.
func (s *Server) getReportQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.Store.Get(id); !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(s.shareURL(id), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// getTag returns the printable tag payload for one record.
func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.Store.Get(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.tagFor(rec))
}

// printTags returns tag payloads for the whole category-filtered set, for
// batch printing.
func (s *Server) printTags(w http.ResponseWriter, r *http.Request) {
	device := parseDevice(r.URL.Query().Get("device"))
	records := derive.FilterByDevice(s.Store.Snapshot(), device)

	tags := make([]tagPayload, 0, len(records))
	for _, rec := range records {
		tags = append(tags, s.tagFor(rec))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tags":  tags,
		"total": len(tags),
	})
}
