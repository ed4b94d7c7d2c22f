package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/wafermap/internal/fsutil"
	"github.com/banshee-data/wafermap/internal/version"
)

// Sheet names.
const (
	SheetSummary    = "Summary"
	SheetDies       = "Dies"
	SheetHistograms = "Histograms"
)

var (
	diesHeader      = []string{"Row", "Col", "X (mm)", "Y (mm)", "Radius (mm)", "Label"}
	histogramHeader = []string{"Histogram", "Low (mm)", "High (mm)", "Count"}
)

// WriteXLSX writes r as a workbook to path on fs.
func WriteXLSX(fs fsutil.FileSystem, path string, r *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDies, SheetHistograms} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeSummary(f, styles, r); err != nil {
		return err
	}
	if err := writeDies(f, styles, r); err != nil {
		return err
	}
	if err := writeHistograms(f, styles, r); err != nil {
		return err
	}

	sel := r.Selection
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("%s %s", sel.Mask.Name, sel.Map),
		Subject:     "Wafer map report",
		Identifier:  r.ID,
		Creator:     "wafermap " + version.Version,
		Created:     r.Created.Format(time.RFC3339),
		Description: fmt.Sprintf("%d die on %s", sel.DieCount, sel.Mask.Path),
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type sheetStyles struct {
	title  int
	header int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("title style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("header style: %w", err)
	}
	return sheetStyles{title: title, header: header}, nil
}

// writeTable writes a merged title in row 1, header in row 2, and rows from
// row 3 on.
func writeTable(f *excelize.File, s sheetStyles, sheet, title string, header []string, rows [][]interface{}) error {
	endCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", endCol+"1"); err != nil {
		return fmt.Errorf("%s: merge title: %w", sheet, err)
	}
	_ = f.SetCellValue(sheet, "A1", title)
	_ = f.SetCellStyle(sheet, "A1", endCol+"1", s.title)

	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A2", &hdr); err != nil {
		return fmt.Errorf("%s: header: %w", sheet, err)
	}
	_ = f.SetCellStyle(sheet, "A2", endCol+"2", s.header)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s: row %d: %w", sheet, i+1, err)
		}
	}
	return f.SetColWidth(sheet, "A", endCol, 14)
}

func writeSummary(f *excelize.File, s sheetStyles, r *Report) error {
	sel := r.Selection
	g := sel.Geometry
	rows := [][]interface{}{
		{"Report ID", r.ID},
		{"Created", r.Created.Format(time.RFC3339)},
		{"Mask", sel.Mask.Name},
		{"Map", sel.Map},
		{"Wafer (mm)", g.Diameter},
		{"Pitch X (mm)", g.Pitch.X},
		{"Pitch Y (mm)", g.Pitch.Y},
		{"Center", fmt.Sprintf("%d,%d", g.Center.Y, g.Center.X)},
		{"Die count", sel.DieCount},
		{"Radius min (mm)", sel.Stats.Min},
		{"Radius max (mm)", sel.Stats.Max},
		{"Radius mean (mm)", sel.Stats.Mean},
	}
	for _, q := range sel.Stats.Quantiles {
		rows = append(rows, []interface{}{fmt.Sprintf("Radius p%.0f (mm)", q.P*100), q.Value})
	}
	title := fmt.Sprintf("%s: %s", sel.Mask.Name, sel.Map)
	if err := writeTable(f, s, SheetSummary, title, []string{"Property", "Value"}, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "B", 40)
}

func writeDies(f *excelize.File, s sheetStyles, r *Report) error {
	sel := r.Selection
	rows := make([][]interface{}, len(sel.Dies))
	for i, d := range sel.Dies {
		x, y := sel.Geometry.Offset(d)
		rows[i] = []interface{}{d.Y, d.X, x, y, sel.Radii[i], d.Label}
	}
	title := fmt.Sprintf("%s: %s (%d die)", sel.Mask.Name, sel.Map, sel.DieCount)
	return writeTable(f, s, SheetDies, title, diesHeader, rows)
}

func writeHistograms(f *excelize.File, s sheetStyles, r *Report) error {
	var rows [][]interface{}
	for _, h := range r.Selection.Histograms() {
		for _, b := range h.Bins {
			rows = append(rows, []interface{}{h.Spec.Title, b.Low, b.High, b.Count})
		}
	}
	return writeTable(f, s, SheetHistograms, "Radial histograms", histogramHeader, rows)
}
