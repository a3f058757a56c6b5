package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"crewdesk/internal/models"

	"github.com/xuri/excelize/v2"
)

// Columns is the header row shared by the CSV and XLSX exports.
var Columns = []string{
	"id", "name", "phone", "email", "state", "counties", "radius",
	"experience", "exp_types", "vehicle", "vehicle_type", "license", "ladder",
	"tools", "insurance", "photo1_url", "photo2_url", "status", "notes", "created_at",
}

func row(a models.Applicant) []string {
	return []string{
		a.ID.String(),
		a.Name,
		a.Phone,
		a.Email,
		a.State,
		a.Counties,
		strconv.Itoa(a.Radius),
		a.Experience,
		a.ExpTypes,
		a.Vehicle.String(),
		a.VehicleType,
		a.License.String(),
		a.Ladder.String(),
		a.Tools.String(),
		string(a.Insurance),
		a.Photo1URL,
		a.Photo2URL,
		string(a.Status),
		a.Notes,
		a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV dumps the applicants with a header row of column names.
func WriteCSV(w io.Writer, applicants []models.Applicant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, a := range applicants {
		if err := cw.Write(row(a)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const (
	applicantsSheet = "Applicants"
	summarySheet    = "Summary"
)

// WriteXLSX writes a workbook with an Applicants sheet and a Summary sheet
// of counts per status.
func WriteXLSX(w io.Writer, applicants []models.Applicant) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", applicantsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeApplicantsSheet(f, applicants, headerStyle); err != nil {
		return fmt.Errorf("failed to create applicants sheet: %w", err)
	}
	if err := writeSummarySheet(f, applicants, headerStyle); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

func writeApplicantsSheet(f *excelize.File, applicants []models.Applicant, headerStyle int) error {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(applicantsSheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(applicantsSheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}

	for i, a := range applicants {
		vals := row(a)
		cells := make([]any, len(vals))
		for j, v := range vals {
			cells[j] = v
		}
		// radius as a number so the sheet can sort and sum it
		cells[6] = a.Radius

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(applicantsSheet, cell, &cells); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(applicantsSheet, "B", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(applicantsSheet, "F", "F", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(applicantsSheet, "I", "I", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(applicantsSheet, "S", "S", 40); err != nil {
		return err
	}
	return f.SetPanes(applicantsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, applicants []models.Applicant, headerStyle int) error {
	counts := map[models.Status]int{}
	for _, a := range applicants {
		counts[a.Status]++
	}

	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Status", "Applicants"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	r := 2
	for _, st := range models.Statuses {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", r), &[]any{string(st), counts[st]}); err != nil {
			return err
		}
		r++
	}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", r), &[]any{"Total", len(applicants)}); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 16)
}
