package internal

import (
	"net/http"

	"pm-dashboard-api/internal/derive"
	"pm-dashboard-api/pkg/exporter"
)

// exportRecords streams the category-filtered set as an xlsx workbook. The
// secret fields go out in cleartext, which is why the route sits behind the
// admin group.
func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)
	records := derive.FilterByDevice(s.Store.Snapshot(), params.device)
	records = filterByQuery(records, params.q)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.Filename(s.companyName, s.clock())+`"`)

	if err := exporter.Write(w, records); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
