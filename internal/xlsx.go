package internal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxColumns are the columns written by ExportXLSX and read by ImportXLSX, in
// export order. Import looks columns up by header text, so order and extra
// columns do not matter there.
var xlsxColumns = []string{"ID", "Name", "Category", "Cost", "Frequency", "Next Date", "Notes", "Monthly", "Days Left"}

// ImportXLSX reads subscriptions from the first sheet of an xlsx workbook. The
// first row must hold headers including Name, Cost and Next Date.
func ImportXLSX(path string) ([]InputFields, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int)
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "cost", "next date"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("sheet %q: missing %q column", sheet, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var fields []InputFields
	for _, row := range rows[1:] {
		name := cell(row, "name")
		if name == "" {
			// blank rows and the totals row written by ExportXLSX
			continue
		}
		fields = append(fields, InputFields{
			Name:      name,
			Category:  cell(row, "category"),
			Cost:      cell(row, "cost"),
			Frequency: cell(row, "frequency"),
			NextDate:  xlsxDate(cell(row, "next date")),
			Notes:     cell(row, "notes"),
		})
	}
	return fields, nil
}

// xlsxDate accepts YYYY-MM-DD text or an Excel date serial number
func xlsxDate(v string) string {
	if _, err := ParseDate(v); err == nil {
		return v
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v // let validation report it
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format(dateLayout)
}

// ExportXLSX writes the rows of summary to a new workbook, followed by a totals row
func ExportXLSX(path string, summary Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Subscriptions"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	setRow := func(rowNum int, values []any) error {
		for i, v := range values {
			ref, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, ref, v); err != nil {
				return fmt.Errorf("writing %s: %w", ref, err)
			}
		}
		return nil
	}

	header := make([]any, len(xlsxColumns))
	for i, h := range xlsxColumns {
		header[i] = h
	}
	if err := setRow(1, header); err != nil {
		return err
	}

	for i, row := range summary.Rows {
		values := []any{
			row.ID,
			row.Name,
			row.Category,
			row.Cost.InexactFloat64(),
			string(row.Frequency),
			row.NextDate.String(),
			row.Notes,
			row.MonthlyCost.Round(2).InexactFloat64(),
			row.DaysLeft,
		}
		if err := setRow(i+2, values); err != nil {
			return err
		}
	}

	totalsRow := len(summary.Rows) + 3 // one blank row between data and totals
	totals := []any{"", "", "", "", "", "", "Total / month", summary.TotalMonthly.Round(2).InexactFloat64()}
	if err := setRow(totalsRow, totals); err != nil {
		return err
	}
	yearly := []any{"", "", "", "", "", "", "Total / year", summary.TotalYearly.Round(2).InexactFloat64()}
	if err := setRow(totalsRow+1, yearly); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetRowStyle(sheet, totalsRow, totalsRow+1, bold); err != nil {
		return fmt.Errorf("styling totals: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func init() {
	RegisterImporter("xlsx", ImporterFunc(ImportXLSX))
}
