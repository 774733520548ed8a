package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/modules/dashboard"
	"github.com/xuri/excelize/v2"
)

const (
	trendSheet   = "Trend"
	marketsSheet = "Markets"
	summarySheet = "Summary"
)

// HandleExport handles GET /api/dashboard/export.xlsx
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.orchestrator.Current()
	if !ok {
		http.Error(w, "No snapshot available yet", http.StatusNotFound)
		return
	}

	f, err := BuildWorkbook(snapshot)
	if err != nil {
		h.log.Error().Err(err).Str("snapshot_id", snapshot.ID).Msg("Failed to build workbook")
		http.Error(w, "Failed to build workbook", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("cropwatch-%s-%s.xlsx",
		strings.ToLower(snapshot.Crop.Name),
		strings.ToLower(strings.ReplaceAll(string(snapshot.Region), " ", "-")))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		h.log.Error().Err(err).Msg("Failed to write workbook")
	}
}

// BuildWorkbook renders a snapshot as a workbook with Trend, Markets and
// Summary sheets.
func BuildWorkbook(s *domain.DashboardSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", trendSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	steps := []func(*excelize.File, *domain.DashboardSnapshot) error{
		writeTrendSheet,
		writeMarketsSheet,
		writeSummarySheet,
	}
	for _, step := range steps {
		if err := step(f, s); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, width float64) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
		col := strings.TrimRight(cell, "0123456789")
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func writeTrendSheet(f *excelize.File, s *domain.DashboardSnapshot) error {
	headers := []string{"Month", "Price", "Market Average", "Predicted", "Moving Average"}
	if err := writeHeaders(f, trendSheet, headers, 16); err != nil {
		return err
	}

	// The moving average starts at the end of its first full window
	offset := len(s.Series) - len(s.Stats.MovingAverage)

	for i, p := range s.Series {
		values := []interface{}{p.Month, p.Price, p.MarketAverage, p.Predicted}
		if i >= offset && offset >= 0 {
			values = append(values, s.Stats.MovingAverage[i-offset])
		}
		if err := writeRow(f, trendSheet, i+2, values...); err != nil {
			return err
		}
	}
	return nil
}

func writeMarketsSheet(f *excelize.File, s *domain.DashboardSnapshot) error {
	if _, err := f.NewSheet(marketsSheet); err != nil {
		return fmt.Errorf("failed to create markets sheet: %w", err)
	}
	if err := writeHeaders(f, marketsSheet, []string{"Market", "Price"}, 16); err != nil {
		return err
	}

	for i, q := range s.Quotes {
		if err := writeRow(f, marketsSheet, i+2, q.Market, q.Price); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s *domain.DashboardSnapshot) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeHeaders(f, summarySheet, []string{"Field", "Value"}, 28); err != nil {
		return err
	}

	bestPrice := "-"
	if s.BestTime.HasPrice() {
		bestPrice = "₹" + dashboard.FormatThousands(*s.BestTime.Price)
	}

	rows := [][2]interface{}{
		{"Crop", s.Crop.Name},
		{"Unit", s.Crop.Unit},
		{"Region", string(s.Region)},
		{"Current Price", s.CurrentPrice},
		{"Price Change (%)", s.PriceChangePercent},
		{"Trend", string(s.Trend)},
		{"Best Month", s.BestTime.Month},
		{"Best Price", bestPrice},
		{"Reason", s.BestTime.Reason},
		{"Advice", s.Advice},
		{"Markets Tracked", s.MarketsTracked},
		{"Mean", s.Stats.Mean},
		{"Std Dev", s.Stats.StdDev},
		{"Generated At", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Snapshot ID", s.ID},
	}

	for i, kv := range rows {
		if err := writeRow(f, summarySheet, i+2, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes values left to right starting in column A
func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
