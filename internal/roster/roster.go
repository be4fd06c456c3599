package roster

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"idcard/internal/apiclient"
)

// SheetName is the worksheet holding the roster.
const SheetName = "Students"

// Header is the first row of the export.
var Header = []string{"ID", "Name", "Email", "Phone", "Roll Number", "Department", "Address", "Blood Group", "Validity", "ID Card Uploaded"}

// Write renders students, in the order given, as an .xlsx workbook.
func Write(w io.Writer, students []apiclient.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, toRow(Header)); err != nil {
		return err
	}
	for i, s := range students {
		uploaded := "No"
		if s.IDCardImage != "" {
			uploaded = "Yes"
		}
		row := []any{s.ID, s.Name, s.Email, s.Phone, s.RollNumber, s.Department, s.Address, s.BloodGroup, s.Validity, uploaded}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}

func toRow(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
