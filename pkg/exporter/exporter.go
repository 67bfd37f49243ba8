// Package exporter renders a record set as an xlsx workbook for download.
package exporter

import (
	"fmt"
	"io"
	"time"

	"pm-dashboard-api/internal/models"

	"github.com/tealeg/xlsx/v3"
)

// SheetName is the single worksheet every export carries.
const SheetName = "PM_Report"

// Column order is fixed; consumers key their spreadsheets off these headers.
var headers = []string{
	"ID", "Date", "Next_PM", "Dept", "Device", "Staff", "Status",
	"Health", "Host", "Activities", "Start", "Warranty", "Info",
	"Image", "Pass_PC", "Pass_SRV",
}

// Filename builds the download name, e.g. "TCI_PM_2025-06-01.xlsx".
func Filename(company string, now time.Time) string {
	return fmt.Sprintf("%s_PM_%s.xlsx", company, now.Format("2006-01-02"))
}

// Write builds the workbook for the given records and streams it to w.
// Dates render in the Thai display format; both password fields go out in
// cleartext, matching the report this replaces.
func Write(w io.Writer, records []models.PMRecord) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for _, rec := range records {
		imageFlag := "No"
		if rec.HasImage() {
			imageFlag = "Yes"
		}
		row := sheet.AddRow()
		for _, value := range []string{
			rec.ID,
			models.FormatDisplay(rec.Date),
			models.FormatDisplay(rec.NextPMDate),
			rec.Department,
			rec.Device,
			rec.Personnel,
			rec.Status,
			rec.DeviceStatus,
			rec.ComputerName,
			rec.Activity,
			rec.StartDate,
			rec.WarrantyExpiry,
			rec.SpareField,
			imageFlag,
			rec.Password,
			rec.ServerPassword,
		} {
			row.AddCell().SetString(value)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
