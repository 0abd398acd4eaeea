package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/adpulse/adpulse/internal/models"
)

// ReadContracts parses a contract-terms export. Rows without a parseable
// start or end date are dropped with a warning and counted in the report's
// RowsSkipped; numeric fields strip "$" and "," before parsing.
func ReadContracts(r io.Reader) ([]models.ContractTerms, models.ImportReport, error) {
	var report models.ImportReport

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, report, fmt.Errorf("read header: %w", err)
	}
	idx, err := resolveHeaders(header, contractColumns)
	if err != nil {
		return nil, report, err
	}

	drop := func(line int, field, msg string) {
		report.RowsSkipped++
		report.Warnings = append(report.Warnings, models.ImportWarning{Line: line, Field: field, Message: msg})
	}

	var terms []models.ContractTerms
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			drop(line, "", err.Error())
			continue
		}
		name := strings.TrimSpace(cell(record, idx["name"]))
		if name == "" {
			drop(line, "name", "empty campaign name, row dropped")
			continue
		}
		start := ParseDate(cell(record, idx["start"]))
		end := ParseDate(cell(record, idx["end"]))
		if start.IsZero() || end.IsZero() {
			drop(line, "start/end", "unparsable flight dates, row dropped")
			continue
		}
		if end.Before(start) {
			drop(line, "start/end", "end date before start date, row dropped")
			continue
		}
		terms = append(terms, models.ContractTerms{
			CampaignName:    name,
			StartDate:       start,
			EndDate:         end,
			Budget:          ParseFloat(cell(record, idx["budget"])),
			CPM:             ParseFloat(cell(record, idx["cpm"])),
			ImpressionsGoal: ParseInt(cell(record, idx["goal"])),
			UpdatedAt:       time.Now().UTC(),
		})
	}
	return terms, report, nil
}
