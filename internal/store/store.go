// Package store defines the persistence boundary for the dashboard's
// backend collections. Implementations live in the postgres and memory
// subpackages.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/adpulse/adpulse/internal/models"
)

// ErrNotFound is returned when a keyed entity does not exist.
var ErrNotFound = errors.New("not found")

// RowFilter narrows performance-row reads. Zero times mean unbounded; empty
// slices mean no filter. Name matching is case-insensitive.
type RowFilter struct {
	From        time.Time
	To          time.Time
	Campaigns   []string
	Advertisers []string
	Agencies    []string
}

// Store is the full persistence surface. All derived data (series, totals,
// anomalies, health) is recomputed from PerformanceRows on demand; nothing
// derived is ever written back.
type Store interface {
	// Performance rows. Upsert replaces a campaign's day on conflict so
	// re-uploading the same export converges instead of double counting.
	UpsertPerformanceRows(ctx context.Context, rows []models.CampaignRow) (int, error)
	PerformanceRows(ctx context.Context, f RowFilter) ([]models.CampaignRow, error)
	// DatasetVersion changes whenever performance rows change; report
	// caches key on it.
	DatasetVersion(ctx context.Context) (string, error)

	// Contract terms, keyed by campaign name.
	UpsertContractTerms(ctx context.Context, terms []models.ContractTerms) (int, error)
	ContractTerms(ctx context.Context) ([]models.ContractTerms, error)
	DeleteContractTerms(ctx context.Context, campaignName string) error

	// Anomaly suppression. Detection results are transient; only the flag
	// and optional duration override persist, keyed by fingerprint. The two
	// attributes are independent: each setter touches its own column, leaves
	// the other intact, and returns the merged record. An empty campaignName
	// keeps the stored one.
	SetAnomalyIgnored(ctx context.Context, fingerprint, campaignName string, ignored bool) (models.AnomalyFlag, error)
	SetAnomalyDuration(ctx context.Context, fingerprint, campaignName string, days int) (models.AnomalyFlag, error)
	AnomalyFlags(ctx context.Context) (map[string]models.AnomalyFlag, error)

	// Team task board.
	CreateTask(ctx context.Context, t models.Task) error
	UpdateTask(ctx context.Context, t models.Task) error
	DeleteTask(ctx context.Context, id string) error
	Task(ctx context.Context, id string) (models.Task, error)
	Tasks(ctx context.Context) ([]models.Task, error)

	// Activity log.
	AppendActivity(ctx context.Context, e models.ActivityEntry) error
	RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error)

	// Announcements.
	CreateAnnouncement(ctx context.Context, a models.Announcement) error
	Announcements(ctx context.Context) ([]models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error

	// Team resources.
	CreateResource(ctx context.Context, r models.TeamResource) error
	Resources(ctx context.Context) ([]models.TeamResource, error)
	DeleteResource(ctx context.Context, id string) error
}

// MatchRow reports whether a row passes the filter. Shared by
// implementations that filter in process.
func MatchRow(r models.CampaignRow, f RowFilter) bool {
	if !f.From.IsZero() && (!r.HasDate() || r.Date.Before(f.From)) {
		return false
	}
	if !f.To.IsZero() && (!r.HasDate() || r.Date.After(f.To)) {
		return false
	}
	if !matchName(r.CampaignName, f.Campaigns) {
		return false
	}
	if !matchName(r.Advertiser, f.Advertisers) {
		return false
	}
	return matchName(r.Agency, f.Agencies)
}

func matchName(name string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if strings.EqualFold(name, w) {
			return true
		}
	}
	return false
}
