package internal

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"pm-dashboard-api/internal/models"
)

// listParams holds common query parameters for list endpoints
type listParams struct {
	limit  int
	offset int
	q      string
	sort   string
	device string
}

// parseListParams parses device, limit, offset, q, and sort from the request
// Defaults: limit=50 (max 200), offset=0
func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()

	limit := 50
	if s := strings.TrimSpace(values.Get("limit")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			if v > 200 {
				v = 200
			}
			limit = v
		}
	}

	offset := 0
	if s := strings.TrimSpace(values.Get("offset")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	return listParams{
		limit:  limit,
		offset: offset,
		q:      strings.TrimSpace(values.Get("q")),
		sort:   strings.TrimSpace(values.Get("sort")),
		device: parseDevice(values.Get("device")),
	}
}

// parseDevice normalizes the category filter; anything unrecognized means
// no filter.
func parseDevice(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "computer":
		return models.DeviceComputer
	case "printer":
		return models.DevicePrinter
	default:
		return ""
	}
}

// filterByQuery keeps records whose identifying text fields contain q,
// case-insensitively. An empty q keeps everything.
func filterByQuery(records []models.PMRecord, q string) []models.PMRecord {
	if q == "" {
		return records
	}
	needle := strings.ToLower(q)
	out := make([]models.PMRecord, 0, len(records))
	for _, rec := range records {
		for _, field := range []string{
			rec.ID, rec.Department, rec.Personnel, rec.ComputerName,
			rec.AssetName, rec.Location,
		} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// sortKeys maps incoming sort keys to record field accessors. Date keys sort
// chronologically; unparseable values sort last.
var sortKeys = map[string]func(*models.PMRecord) string{
	"id":         func(r *models.PMRecord) string { return r.ID },
	"date":       func(r *models.PMRecord) string { return r.Date },
	"nextPmDate": func(r *models.PMRecord) string { return r.NextPMDate },
	"department": func(r *models.PMRecord) string { return r.Department },
	"status":     func(r *models.PMRecord) string { return r.Status },
}

var dateSortKeys = map[string]bool{"date": true, "nextPmDate": true}

// sortRecords applies a comma-separated sort expression in place; '-'
// prefixes a descending key. Unknown keys are skipped; an empty expression
// keeps input order.
func sortRecords(records []models.PMRecord, sortParam string) {
	if sortParam == "" {
		return
	}

	type clause struct {
		get  func(*models.PMRecord) string
		date bool
		desc bool
	}
	clauses := []clause{}
	for _, raw := range strings.Split(sortParam, ",") {
		key := strings.TrimSpace(raw)
		if key == "" {
			continue
		}
		desc := strings.HasPrefix(key, "-")
		key = strings.TrimPrefix(key, "-")
		get, ok := sortKeys[key]
		if !ok {
			continue
		}
		clauses = append(clauses, clause{get: get, date: dateSortKeys[key], desc: desc})
	}
	if len(clauses) == 0 {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		for _, c := range clauses {
			a, b := c.get(&records[i]), c.get(&records[j])
			if a == b {
				continue
			}
			var less bool
			if c.date {
				less = dateLess(a, b)
			} else {
				less = a < b
			}
			if c.desc {
				return !less
			}
			return less
		}
		return false
	})
}

func dateLess(a, b string) bool {
	ta, aok := models.ParseDate(a)
	tb, bok := models.ParseDate(b)
	switch {
	case aok && bok:
		return ta.Before(tb)
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// paginate slices one page out of the filtered set.
func paginate(records []models.PMRecord, limit, offset int) []models.PMRecord {
	if offset >= len(records) {
		return []models.PMRecord{}
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}

// sendListResponse sends a paginated list response with metadata
func sendListResponse(w http.ResponseWriter, items interface{}, total int, params listParams) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  params.limit,
		"offset": params.offset,
	})
}
