// Package localstore is the durable storage collaborator: a tiny string-keyed
// store holding exactly two entries, the serialized record set and the
// configured sheet URL. It is read at startup and written through on every
// change.
package localstore

import "context"

// Keys for the two durable entries.
const (
	KeyRecords  = "pm_dashboard_data"
	KeySheetURL = "pm_sheet_url"
)

// KV is the durable storage contract. Get returns ok=false for a missing
// key; both operations are full-value, no incremental diffing.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
