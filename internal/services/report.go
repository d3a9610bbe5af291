package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	historySheet  = "History"
	visitorsSheet = "Visitors"
	reportTime    = "2006-01-02 15:04"
)

var historyHeader = []interface{}{
	"Pass ID", "Visitor", "Email", "Type", "Department", "Purpose",
	"Status", "Valid Date", "Requested At", "Checked In", "Checked Out", "Verification",
}

// ExportHistory renders terminal passes and the visitor report as an xlsx workbook.
func (m *PassManager) ExportHistory(ctx context.Context) (*bytes.Buffer, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	history := m.History()
	visitors := m.VisitorReport()

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(historySheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	if err := writeRow(f, historySheet, 1, historyHeader); err != nil {
		return nil, "", err
	}
	f.SetCellStyle(historySheet, "A1", cell(colName(len(historyHeader)-1), 1), headerStyle)
	f.SetColWidth(historySheet, "A", "E", 20)
	f.SetColWidth(historySheet, "F", "F", 40)
	f.SetColWidth(historySheet, "G", "K", 18)
	f.SetColWidth(historySheet, "L", "L", 50)

	for i, p := range history {
		row := []interface{}{
			p.ID, p.VisitorName, p.VisitorEmail, string(p.Type), p.Department, p.Purpose,
			string(p.Status), p.ValidDate, p.RequestedAt.Format(reportTime),
			formatOptional(p.CheckInTime), formatOptional(p.CheckOutTime), p.AIVerification,
		}
		if err := writeRow(f, historySheet, i+2, row); err != nil {
			return nil, "", err
		}
	}

	if _, err := f.NewSheet(visitorsSheet); err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeRow(f, visitorsSheet, 1, []interface{}{"Name", "Email", "Passes"}); err != nil {
		return nil, "", err
	}
	f.SetCellStyle(visitorsSheet, "A1", "C1", headerStyle)
	f.SetColWidth(visitorsSheet, "A", "B", 28)
	for i, v := range visitors {
		if err := writeRow(f, visitorsSheet, i+2, []interface{}{v.User.Name, v.User.Email, v.PassCount}); err != nil {
			return nil, "", err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		m.logger.Error("Failed to write history workbook", zap.Error(err))
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("gatepass_history_%s.xlsx", m.now().Format("20060102"))
	return buf, filename, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(reportTime)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
