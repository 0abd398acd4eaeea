package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/adpulse/adpulse/internal/models"
)

// ReadPerformance parses an uploaded performance export into normalized rows.
// Unparsable dates and malformed numbers are warnings, never fatal; only a
// missing required column or an unreadable file aborts the import. Dropped
// rows are counted in the report's RowsSkipped.
func ReadPerformance(r io.Reader) ([]models.CampaignRow, models.ImportReport, error) {
	var report models.ImportReport

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, report, fmt.Errorf("read header: %w", err)
	}
	idx, err := resolveHeaders(header, performanceColumns)
	if err != nil {
		return nil, report, err
	}

	var rows []models.CampaignRow
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			report.RowsSkipped++
			report.Warnings = append(report.Warnings, models.ImportWarning{Line: line, Message: err.Error()})
			continue
		}
		name := strings.TrimSpace(cell(record, idx["campaign"]))
		if name == "" {
			report.RowsSkipped++
			report.Warnings = append(report.Warnings, models.ImportWarning{Line: line, Field: "campaign", Message: "empty campaign name, row dropped"})
			continue
		}
		row := models.CampaignRow{
			Date:         ParseDate(cell(record, idx["date"])),
			CampaignName: name,
			Advertiser:   strings.TrimSpace(cell(record, idx["advertiser"])),
			Agency:       strings.TrimSpace(cell(record, idx["agency"])),
			Impressions:  ParseInt(cell(record, idx["impressions"])),
			Clicks:       ParseInt(cell(record, idx["clicks"])),
			Revenue:      ParseFloat(cell(record, idx["revenue"])),
			Spend:        ParseFloat(cell(record, idx["spend"])),
			Transactions: ParseInt(cell(record, idx["transactions"])),
		}
		if !row.HasDate() {
			// Kept for non-temporal totals, excluded from date-keyed work.
			report.Warnings = append(report.Warnings, models.ImportWarning{
				Line: line, Field: "date",
				Message: fmt.Sprintf("unparsable date %q, row excluded from time series", cell(record, idx["date"])),
			})
		}
		rows = append(rows, row)
	}
	return rows, report, nil
}
