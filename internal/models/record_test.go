package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleNextComputer(t *testing.T) {
	rec := PMRecord{
		ID:     "PM-100",
		Date:   "2025-01-15",
		Device: DeviceComputer,
		Status: StatusCompleted,
	}
	rec.ScheduleNext()
	assert.Equal(t, "2025-07-14", rec.NextPMDate)
}

func TestScheduleNextPrinter(t *testing.T) {
	rec := PMRecord{
		ID:     "PRT-100",
		Date:   "2025-01-15",
		Device: DevicePrinter,
		Status: StatusCompleted,
	}
	rec.ScheduleNext()
	assert.Equal(t, "2025-03-16", rec.NextPMDate)
}

func TestScheduleNextOnlyWhenCompleted(t *testing.T) {
	rec := PMRecord{
		ID:         "PM-101",
		Date:       "2025-01-15",
		Device:     DeviceComputer,
		Status:     StatusPending,
		NextPMDate: "2025-02-01",
	}
	rec.ScheduleNext()
	assert.Equal(t, "2025-02-01", rec.NextPMDate, "pending record must keep its next date")
}

func TestScheduleNextUnparseableBaseDate(t *testing.T) {
	rec := PMRecord{
		ID:         "PM-102",
		Date:       "no-date",
		Device:     DeviceComputer,
		Status:     StatusCompleted,
		NextPMDate: "2025-02-01",
	}
	rec.ScheduleNext()
	assert.Equal(t, "2025-02-01", rec.NextPMDate)
}

func TestActivitiesRoundTrip(t *testing.T) {
	rec := PMRecord{Activity: "A | B | C"}
	assert.Equal(t, []string{"A", "B", "C"}, rec.Activities())

	rec.SetActivities([]string{"X", "Y"})
	assert.Equal(t, "X | Y", rec.Activity)

	empty := PMRecord{}
	assert.Nil(t, empty.Activities())
}

func TestRedacted(t *testing.T) {
	rec := PMRecord{ID: "PM-1", Password: "pc-secret", ServerPassword: "srv-secret", Personnel: "User"}
	red := rec.Redacted()
	assert.Empty(t, red.Password)
	assert.Empty(t, red.ServerPassword)
	assert.Equal(t, "User", red.Personnel)
	assert.Equal(t, "pc-secret", rec.Password, "original must be untouched")
}

func TestWellFormed(t *testing.T) {
	var nilRec *PMRecord
	assert.False(t, nilRec.WellFormed())
	assert.False(t, (&PMRecord{}).WellFormed())
	assert.True(t, (&PMRecord{ID: "PM-1"}).WellFormed())
}

func TestSeedRecords(t *testing.T) {
	seed := SeedRecords()
	require.Len(t, seed, 2)
	assert.Equal(t, DeviceComputer, seed[0].Device)
	assert.Equal(t, DevicePrinter, seed[1].Device)
}
