package csvio

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpulse/adpulse/internal/models"
)

func TestReadPerformance(t *testing.T) {
	in := strings.Join([]string{
		"Date,Campaign Order Name,Advertiser,Agency,Impressions,Clicks,Revenue,Spend,Transactions",
		`2025-01-01,Spring Promo,Acme,OMG,"1,000",10,$55.50,$20.00,3`,
		"2025-01-02,Spring Promo,Acme,OMG,2000,20,60,25,4",
	}, "\n")

	rows, report, err := ReadPerformance(strings.NewReader(in))
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.Zero(t, report.RowsSkipped)
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), r.Date)
	assert.Equal(t, "Spring Promo", r.CampaignName)
	assert.Equal(t, "Acme", r.Advertiser)
	assert.Equal(t, "OMG", r.Agency)
	assert.Equal(t, 1000, r.Impressions)
	assert.Equal(t, 10, r.Clicks)
	assert.Equal(t, 55.50, r.Revenue)
	assert.Equal(t, 20.0, r.Spend)
	assert.Equal(t, 3, r.Transactions)
}

func TestReadPerformanceHeaderSynonyms(t *testing.T) {
	in := strings.Join([]string{
		"Day,Name,Imps,Total Clicks,Total Revenue,Cost,Orders",
		"1/5/2025,X,100,1,2.5,1.0,0",
	}, "\n")
	rows, _, err := ReadPerformance(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "X", rows[0].CampaignName)
	assert.Equal(t, 100, rows[0].Impressions)
	assert.Equal(t, 1.0, rows[0].Spend)
}

func TestReadPerformanceMissingRequiredColumns(t *testing.T) {
	in := "Campaign,Clicks\nX,1\n"
	_, _, err := ReadPerformance(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "date")
	assert.Contains(t, err.Error(), "impressions")
	assert.Contains(t, err.Error(), "revenue")
	assert.NotContains(t, err.Error(), "campaign order name")
}

func TestReadPerformanceEmptyCampaignSkipped(t *testing.T) {
	in := strings.Join([]string{
		"Date,Campaign,Impressions,Clicks,Revenue",
		"2025-01-01,,100,1,2",
		"2025-01-01,Real,100,1,2",
	}, "\n")
	rows, report, err := ReadPerformance(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, report.RowsSkipped)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 2, report.Warnings[0].Line)
	assert.Equal(t, "campaign", report.Warnings[0].Field)
}

func TestReadPerformanceBadDateKeptWithWarning(t *testing.T) {
	in := strings.Join([]string{
		"Date,Campaign,Impressions,Clicks,Revenue",
		"soon,Undated,100,1,2",
	}, "\n")
	rows, report, err := ReadPerformance(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].HasDate())
	// flagged but not skipped: the row still feeds non-temporal totals
	assert.Zero(t, report.RowsSkipped)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "date", report.Warnings[0].Field)
}

func TestReadPerformanceShortRecord(t *testing.T) {
	in := strings.Join([]string{
		"Date,Campaign,Impressions,Clicks,Revenue",
		"2025-01-01,Short,100",
	}, "\n")
	rows, _, err := ReadPerformance(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].Impressions)
	assert.Equal(t, 0, rows[0].Clicks)
	assert.Equal(t, 0.0, rows[0].Revenue)
}

func TestReadPerformanceTotalsRowSurvivesParsing(t *testing.T) {
	// The sentinel row is parsed like any other; exclusion is the
	// aggregation layer's job.
	in := strings.Join([]string{
		"Date,Campaign,Impressions,Clicks,Revenue",
		"2025-01-01,A,100,1,2",
		",Totals,100,1,2",
	}, "\n")
	rows, _, err := ReadPerformance(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.TotalsSentinel, rows[1].CampaignName)
}
