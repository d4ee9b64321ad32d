package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/alanyang/ticket-router/internal/domain/assignment"
)

const sheetName = "Assignments"

var xlsxHeaders = []string{"Ticket ID", "Assigned Agent ID", "Rationale"}

// WriteXLSX renders records as a single-sheet workbook, one row per record in
// processing order. Unassigned tickets leave the agent cell empty.
func WriteXLSX(w io.Writer, records []assignment.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, header := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("locating header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("writing header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling header %s: %w", cell, err)
		}
	}

	for i, r := range records {
		if err := writeXLSXRow(f, i+2, r); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 18); err != nil {
		return fmt.Errorf("sizing id columns: %w", err)
	}
	if err := f.SetColWidth(sheetName, "C", "C", 80); err != nil {
		return fmt.Errorf("sizing rationale column: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, row int, r assignment.Record) error {
	agentID := ""
	if r.AssignedAgentID != nil {
		agentID = r.AssignedAgentID.String()
	}
	for col, v := range []string{r.TicketID.String(), agentID, r.Rationale} {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("locating row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("writing %s: %w", cell, err)
		}
	}
	return nil
}

func WriteXLSXFile(path string, records []assignment.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteXLSX(w, records) })
}
