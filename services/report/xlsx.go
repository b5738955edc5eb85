// Package reportsvc writes attendance reports as Excel workbooks.
package reportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/Shubham414kumar/vidyasphere/core/attendance"
)

const (
	recordsSheet = "Attendance"
	summarySheet = "Summary"
)

type xlsxReporter struct{}

var _ attendance.Reporter = xlsxReporter{}

func NewXLSXReporter() attendance.Reporter { return xlsxReporter{} }

func (xlsxReporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (xlsxReporter) FileExt() string { return ".xlsx" }

func (r xlsxReporter) WriteAttendance(w io.Writer, records []attendance.Record, stats attendance.Stats) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = errors.Wrap(cErr, "closing workbook")
		}
	}()

	if err = f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if _, err = f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "adding summary sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}

	rows := make([][]interface{}, 0, len(records)+1)
	rows = append(rows, []interface{}{"Date", "Subject", "Status"})
	for _, rec := range records {
		status := "Absent"
		if rec.Present {
			status = "Present"
		}
		rows = append(rows, []interface{}{rec.Date.String(), rec.SubjectName, status})
	}
	if err = writeRows(f, recordsSheet, rows, bold); err != nil {
		return err
	}

	rows = [][]interface{}{{"Subject", "Present", "Total", "Percentage"}}
	for _, s := range stats.Subjects {
		rows = append(rows, []interface{}{s.SubjectName, s.Present, s.Total, s.Percentage})
	}
	rows = append(rows, []interface{}{"Overall", stats.Present, stats.Total, stats.Percentage})
	if err = writeRows(f, summarySheet, rows, bold); err != nil {
		return err
	}

	return errors.Wrap(f.Write(w), "writing workbook")
}

// writeRows writes rows from A1 down and makes the first one a bold header.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "naming cell")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrap(err, "writing "+sheet+" row")
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return errors.Wrap(err, "naming cell")
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return errors.Wrap(err, "styling header")
	}
	return errors.Wrap(f.SetColWidth(sheet, "A", "D", 18), "sizing columns")
}
