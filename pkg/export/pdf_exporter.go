package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/teach-app/teach-api/internal/models"
)

// SchedulePDFExporter renders a tutor's weekly plan as a printable PDF.
type SchedulePDFExporter struct{}

// NewSchedulePDFExporter constructs the exporter.
func NewSchedulePDFExporter() *SchedulePDFExporter {
	return &SchedulePDFExporter{}
}

// Render lays out the plan day by day in display order. Days without slots
// are listed as unavailable so the page always shows the full week.
func (e *SchedulePDFExporter) Render(userName string, plan *models.WeeklyPlan) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Weekly Schedule - %s", userName), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	for _, day := range models.AllDays {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, string(day), "B", 1, "", false, 0, "")

		slots := plan.SlotsForDay(day)
		pdf.SetFont("Arial", "", 10)
		if len(slots) == 0 {
			pdf.CellFormat(0, 7, "No availability", "", 1, "", false, 0, "")
		} else {
			for _, slot := range slots {
				pdf.CellFormat(0, 7, fmt.Sprintf("%s - %s", slot.StartTime, slot.EndTime), "", 1, "", false, 0, "")
			}
		}
		pdf.Ln(2)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render schedule pdf: %w", err)
	}
	return buf.Bytes(), nil
}
