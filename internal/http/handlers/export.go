package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"helium-admin/internal/sqlinline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var usageExportColumns = []struct {
	header string
	width  float64
}{
	{"User ID", 38},
	{"Name", 22},
	{"Email", 28},
	{"Prompt Tokens", 14},
	{"Completion Tokens", 17},
	{"Total Tokens", 13},
	{"Estimated Cost ($)", 16},
	{"Usage Count", 12},
	{"Earliest Activity", 18},
	{"Latest Activity", 18},
	{"Paid", 8},
	{"Activity Level", 13},
	{"Days Since Last", 14},
	{"Activity Score", 13},
	{"User Type", 10},
}

func (a *App) UsageAggregatedExport(w http.ResponseWriter, r *http.Request) {
	var req aggregatedUsageRequest
	if !a.bind(w, r, &req) {
		return
	}
	req.applyDefaults()

	rows, err := a.SQL.Query(r.Context(), sqlinline.QAggregatedUsageExport,
		req.SearchQuery, req.ActivityFilter, req.UserTypeFilter)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "Failed to export usage logs")
		return
	}
	defer rows.Close()

	page, err := collectUsageRows(rows)
	if err != nil {
		a.Logger.Error().Err(err).Msg("read usage export rows")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to export usage logs")
		return
	}

	buf, err := buildUsageWorkbook(page)
	if err != nil {
		a.Logger.Error().Err(err).Msg("build usage workbook")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to export usage logs")
		return
	}

	filename := fmt.Sprintf("usage_logs_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func buildUsageWorkbook(page usagePage) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Usage Logs"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, col := range usageExportColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, name, name, col.width)
		f.SetCellValue(sheet, cellRef(i+1, 1), col.header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(usageExportColumns), 1), headerStyle)

	const timeLayout = "2006-01-02 15:04"
	row := 2
	for _, u := range page.rows {
		values := []any{
			u.UserID,
			u.UserName,
			u.UserEmail,
			u.TotalPromptTokens,
			u.TotalCompletionTokens,
			u.TotalTokens,
			u.TotalEstimatedCost,
			u.UsageCount,
			u.EarliestActivity.UTC().Format(timeLayout),
			u.LatestActivity.UTC().Format(timeLayout),
			u.HasCompletedPayment,
			string(u.ActivityLevel),
			int(u.DaysSinceLastActivity),
			u.ActivityScore,
			string(u.UserType),
		}
		for i, v := range values {
			f.SetCellValue(sheet, cellRef(i+1, row), v)
		}
		row++
	}

	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellValue(sheet, cellRef(1, row), fmt.Sprintf("Totals (%d users)", page.totalCount))
	f.SetCellValue(sheet, cellRef(6, row), page.grandTotalTokens)
	f.SetCellValue(sheet, cellRef(7, row), page.grandTotalCost)
	f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(usageExportColumns), row), totalStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func cellRef(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return fmt.Sprintf("%s%d", name, row)
}
