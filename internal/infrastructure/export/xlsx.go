// Package export renders the event log for download.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

const sheetName = "Logs"

var header = []any{"Date", "Time", "Worker ID", "Worker", "Action", "Event ID"}

// FileName returns the attachment name for an export, e.g. logs-2026-10.xlsx.
func FileName(month, ext string) string {
	if month == "" {
		return "logs." + ext
	}
	return fmt.Sprintf("logs-%s.%s", month, ext)
}

// WriteXLSX writes events as a single-sheet workbook. Dates and times are
// rendered in loc; events keep the order they are given in.
func WriteXLSX(w io.Writer, events []domain.ClockEvent, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	for i, e := range events {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		date, clock := "", ""
		if !e.Malformed() {
			local := e.Timestamp.In(loc)
			date, clock = local.Format("2006-01-02"), local.Format("15:04:05")
		}
		row := []any{date, clock, e.WorkerID, e.WorkerName, string(e.Action), e.ID}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 12); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "C", "D", 24); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("xlsx: freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}
