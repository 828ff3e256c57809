// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package report renders the registry into operator-facing XLSX
// workbooks, one row per monitored domain with its last known status.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sepehrz/filterwatch/src/filterwatch"
)

// sheetName is the single worksheet the report writes.
const sheetName = "Domains"

// header is the first row of the report.
var header = []string{
	"Domain", "Label", "Category", "Purpose", "Interval (min)",
	"Notify", "Last Status", "Last Checked (UTC)", "Public Answers", "Local Answers", "Notes",
}

// Write renders entries into an XLSX workbook at path.
func Write(path string, entries []filterwatch.DomainEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, e := range entries {
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &[]any{
			e.Name,
			e.Label,
			e.Category.String(),
			e.Purpose,
			e.CheckIntervalMinutes,
			e.NotifyAdmins,
			statusCell(e.LastStatus),
			timeCell(e.LastCheckedAt),
			answersCell(e.LastDetails, true),
			answersCell(e.LastDetails, false),
			e.Notes,
		}); err != nil {
			return fmt.Errorf("write row for %s: %w", e.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func statusCell(v *filterwatch.Verdict) string {
	if v == nil {
		return "never checked"
	}
	return string(*v)
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func answersCell(d *filterwatch.CheckDetails, public bool) string {
	if d == nil {
		return ""
	}
	if public {
		return d.Public.Summary()
	}
	return d.Local.Summary()
}
