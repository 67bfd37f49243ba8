package models

import (
	"strings"
)

// Device categories. Fixed at record creation.
const (
	DeviceComputer = "Computer"
	DevicePrinter  = "Printer"
)

// Workflow statuses for a maintenance visit.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// ActivitySeparator joins completed checklist items in the sheet wire format.
const ActivitySeparator = " | "

// PMRecord represents one maintenance-tracked device. JSON field names follow
// the spreadsheet column wire format so records round-trip unchanged through
// the remote sheet endpoint.
type PMRecord struct {
	ID             string `json:"id"`
	Date           string `json:"date"`                     // last PM date
	NextPMDate     string `json:"nextPmDate,omitempty"`     // computed on completion
	Department     string `json:"department"`
	Device         string `json:"device"`                   // Computer | Printer
	Personnel      string `json:"personnel"`
	Status         string `json:"status"`                   // Pending | In Progress | Completed
	Activity       string `json:"activity,omitempty"`       // checklist items joined by " | "
	ComputerName   string `json:"computerName,omitempty"`   // hostname (Computer) or model (Printer)
	ComputerUser   string `json:"computerUser,omitempty"`
	Password       string `json:"password,omitempty"`
	ServerPassword string `json:"serverPassword,omitempty"`
	Antivirus      string `json:"antivirus,omitempty"`
	ImageURL       string `json:"imageUrl,omitempty"`       // Base64 payload or link
	Technician     string `json:"technician,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
	WarrantyExpiry string `json:"warrantyExpiry,omitempty"`
	SpareField     string `json:"spareField,omitempty"`     // notes / spare parts
	AssetName      string `json:"assetName,omitempty"`
	Model          string `json:"model,omitempty"`
	SerialNumber   string `json:"serialNumber,omitempty"`
	Location       string `json:"location,omitempty"`
	DeviceStatus   string `json:"deviceStatus,omitempty"`   // health condition label
}

// ServiceInterval returns the PM interval for a device category.
// Computers are serviced every 180 days, printers every 60.
func ServiceInterval(device string) int {
	if device == DeviceComputer {
		return 180
	}
	return 60
}

// ScheduleNext recomputes NextPMDate from the last service date when the
// workflow status is Completed. It runs at the moment of save only; an
// unparseable base date leaves NextPMDate untouched.
func (r *PMRecord) ScheduleNext() {
	if r.Status != StatusCompleted {
		return
	}
	base, ok := ParseDate(r.Date)
	if !ok {
		return
	}
	r.NextPMDate = base.AddDate(0, 0, ServiceInterval(r.Device)).Format(ISODate)
}

// Activities splits the joined checklist string into its items.
func (r *PMRecord) Activities() []string {
	if r.Activity == "" {
		return nil
	}
	parts := strings.Split(r.Activity, ActivitySeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetActivities joins checklist items back into the wire format.
func (r *PMRecord) SetActivities(items []string) {
	r.Activity = strings.Join(items, ActivitySeparator)
}

// Redacted returns a copy safe for unprivileged readers: the two secret
// fields are blanked.
func (r PMRecord) Redacted() PMRecord {
	r.Password = ""
	r.ServerPassword = ""
	return r
}

// HasImage reports whether the record carries an image payload.
func (r *PMRecord) HasImage() bool {
	return r.ImageURL != ""
}

// WellFormed is the basic shape check applied during wholesale replacement:
// a record must at least carry an id.
func (r *PMRecord) WellFormed() bool {
	return r != nil && r.ID != ""
}

// SeedRecords is the data set used when durable storage is empty or
// unreadable, mirroring the sample rows the sheet starts with.
func SeedRecords() []PMRecord {
	return []PMRecord{
		{
			ID:           "PM-001",
			Date:         "2025-01-15",
			NextPMDate:   "2025-07-14",
			Department:   "Maintenance / ซ่อมบำรุง",
			Device:       DeviceComputer,
			Personnel:    "User 1",
			Status:       StatusCompleted,
			DeviceStatus: "Ready / ใช้งานได้ปกติ (In Use / กำลังใช้งาน)",
			Activity:     "Hardware Check / ตรวจสอบฮาร์ดแวร์ (6M) | OS Update / ระบบปฏิบัติการ (6M)",
			ComputerName: "MT-PC-01",
			ComputerUser: "Administrator",
		},
		{
			ID:           "PRT-001",
			Date:         "2025-02-15",
			NextPMDate:   "2025-04-16",
			Department:   "Accounting / บัญชี",
			Device:       DevicePrinter,
			Personnel:    "Accounting Staff",
			Status:       StatusPending,
			DeviceStatus: "Ready / ใช้งานได้ปกติ (Standby / ไม่ได้ใช้งาน)",
			ComputerName: "ACC-PRT-01",
			ComputerUser: "Administrator",
		},
	}
}
