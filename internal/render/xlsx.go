package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// MarksSheetName is the worksheet MarksSheet writes.
const MarksSheetName = "Marks"

var marksHeader = []string{"Section", "Question", "Type", "Text", "Marks"}

// MarksSheet writes a marks breakdown of doc as an XLSX workbook: one row per
// question, a formula total per section and the paper's maximum marks.
func MarksSheet(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MarksSheetName); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(MarksSheetName, cell, v)
	}

	for i, h := range marksHeader {
		if err := set(i+1, 1, h); err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
	}
	if err := f.SetCellStyle(MarksSheetName, "A1", "E1", bold); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}

	row := 2
	for _, s := range doc.Sections {
		first := row
		for _, g := range s.Groups {
			for _, it := range g.Items {
				values := []any{s.Title, it.Label, g.Type.Label(), it.Text, it.Marks}
				for col, v := range values {
					if err := set(col+1, row, v); err != nil {
						return fmt.Errorf("render xlsx: %w", err)
					}
				}
				row++
			}
		}

		if err := set(1, row, s.Title+" total"); err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
		cell, _ := excelize.CoordinatesToCellName(5, row)
		formula := "0"
		if row > first {
			formula = fmt.Sprintf("SUM(E%d:E%d)", first, row-1)
		}
		if err := f.SetCellFormula(MarksSheetName, cell, formula); err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
		if err := f.SetCellStyle(MarksSheetName, fmt.Sprintf("A%d", row), cell, bold); err != nil {
			return fmt.Errorf("render xlsx: %w", err)
		}
		row += 2
	}

	if err := set(1, row, "Paper total"); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	if err := set(5, row, doc.TotalMarks); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	if err := f.SetCellStyle(MarksSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), bold); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}

	if err := f.SetColWidth(MarksSheetName, "D", "D", 60); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	return nil
}
