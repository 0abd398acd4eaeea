package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/store"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestUpsertPerformanceRowsConverges(t *testing.T) {
	ctx := context.Background()
	s := New()

	rows := []models.CampaignRow{
		{Date: day("2025-01-01"), CampaignName: "A", Advertiser: "Acme", Impressions: 100},
		{Date: day("2025-01-02"), CampaignName: "A", Advertiser: "Acme", Impressions: 200},
	}
	n, err := s.UpsertPerformanceRows(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// re-upload with a corrected figure for the same day
	rows[1].Impressions = 250
	_, err = s.UpsertPerformanceRows(ctx, rows)
	require.NoError(t, err)

	got, err := s.PerformanceRows(ctx, store.RowFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 250, got[1].Impressions)
}

func TestPerformanceRowsFiltering(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.UpsertPerformanceRows(ctx, []models.CampaignRow{
		{Date: day("2025-01-01"), CampaignName: "A", Agency: "OMG"},
		{Date: day("2025-01-05"), CampaignName: "B", Agency: "Other"},
		{CampaignName: "Undated", Agency: "OMG"},
	})
	require.NoError(t, err)

	got, err := s.PerformanceRows(ctx, store.RowFilter{From: day("2025-01-02")})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].CampaignName)

	got, err = s.PerformanceRows(ctx, store.RowFilter{Agencies: []string{"omg"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.PerformanceRows(ctx, store.RowFilter{Campaigns: []string{"a"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].CampaignName)
}

func TestDatasetVersionChangesOnWrite(t *testing.T) {
	ctx := context.Background()
	s := New()
	v1, err := s.DatasetVersion(ctx)
	require.NoError(t, err)

	_, err = s.UpsertPerformanceRows(ctx, []models.CampaignRow{{Date: day("2025-01-01"), CampaignName: "A"}})
	require.NoError(t, err)
	v2, err := s.DatasetVersion(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestContractTermsCaseInsensitiveKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.UpsertContractTerms(ctx, []models.ContractTerms{
		{CampaignName: "Spring Promo", Budget: 100},
	})
	require.NoError(t, err)
	_, err = s.UpsertContractTerms(ctx, []models.ContractTerms{
		{CampaignName: "SPRING PROMO", Budget: 200},
	})
	require.NoError(t, err)

	terms, err := s.ContractTerms(ctx)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, 200.0, terms[0].Budget)

	require.NoError(t, s.DeleteContractTerms(ctx, "spring promo"))
	assert.ErrorIs(t, s.DeleteContractTerms(ctx, "spring promo"), store.ErrNotFound)
}

func TestAnomalyFlagPartialUpdates(t *testing.T) {
	ctx := context.Background()
	s := New()

	f, err := s.SetAnomalyDuration(ctx, "abc", "A", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, f.CustomDurationDays)
	assert.False(t, f.Ignored)

	// toggling suppression keeps the saved duration, and an empty campaign
	// name keeps the stored one
	f, err = s.SetAnomalyIgnored(ctx, "abc", "", true)
	require.NoError(t, err)
	assert.True(t, f.Ignored)
	assert.Equal(t, 30, f.CustomDurationDays)
	assert.Equal(t, "A", f.CampaignName)

	f, err = s.SetAnomalyDuration(ctx, "abc", "A", 10)
	require.NoError(t, err)
	assert.True(t, f.Ignored)
	assert.Equal(t, 10, f.CustomDurationDays)

	flags, err := s.AnomalyFlags(ctx)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.True(t, flags["abc"].Ignored)
	assert.Equal(t, 10, flags["abc"].CustomDurationDays)
	assert.False(t, flags["abc"].UpdatedAt.IsZero())
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	task := models.Task{ID: "t1", Title: "reconcile spend", Status: "todo", Priority: "high", CreatedAt: time.Now()}
	require.NoError(t, s.CreateTask(ctx, task))

	task.Status = "done"
	require.NoError(t, s.UpdateTask(ctx, task))

	got, err := s.Task(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)

	require.NoError(t, s.DeleteTask(ctx, "t1"))
	_, err = s.Task(ctx, "t1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTask(ctx, task), store.ErrNotFound)
}

func TestRecentActivityNewestFirstAndLimited(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendActivity(ctx, models.ActivityEntry{
			ID: string(rune('a' + i)), Action: "import", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	got, err := s.RecentActivity(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "e", got[0].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestAnnouncementsAndResources(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateAnnouncement(ctx, models.Announcement{ID: "a1", Title: "hi", CreatedAt: time.Now()}))
	anns, err := s.Announcements(ctx)
	require.NoError(t, err)
	require.Len(t, anns, 1)
	require.NoError(t, s.DeleteAnnouncement(ctx, "a1"))
	assert.ErrorIs(t, s.DeleteAnnouncement(ctx, "a1"), store.ErrNotFound)

	require.NoError(t, s.CreateResource(ctx, models.TeamResource{ID: "r1", Title: "runbook", URL: "https://example.com", CreatedAt: time.Now()}))
	res, err := s.Resources(ctx)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.NoError(t, s.DeleteResource(ctx, "r1"))
	assert.ErrorIs(t, s.DeleteResource(ctx, "r1"), store.ErrNotFound)
}
