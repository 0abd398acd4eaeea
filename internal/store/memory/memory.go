// Package memory is an in-process Store used in tests and in dev runs
// without a DATABASE_URL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	rows          map[string]models.CampaignRow // keyed by date|campaign|advertiser|agency
	terms         map[string]models.ContractTerms
	flags         map[string]models.AnomalyFlag
	tasks         map[string]models.Task
	activity      []models.ActivityEntry
	announcements map[string]models.Announcement
	resources     map[string]models.TeamResource
	version       int64
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		rows:          make(map[string]models.CampaignRow),
		terms:         make(map[string]models.ContractTerms),
		flags:         make(map[string]models.AnomalyFlag),
		tasks:         make(map[string]models.Task),
		announcements: make(map[string]models.Announcement),
		resources:     make(map[string]models.TeamResource),
	}
}

func rowKey(r models.CampaignRow) string {
	return r.Date.Format("2006-01-02") + "|" + r.CampaignName + "|" + r.Advertiser + "|" + r.Agency
}

func (s *Store) UpsertPerformanceRows(_ context.Context, rows []models.CampaignRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.rows[rowKey(r)] = r
	}
	s.version++
	return len(rows), nil
}

func (s *Store) PerformanceRows(_ context.Context, f store.RowFilter) ([]models.CampaignRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CampaignRow
	for _, r := range s.rows {
		if store.MatchRow(r, f) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CampaignName < out[j].CampaignName
	})
	return out, nil
}

func (s *Store) DatasetVersion(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("mem-%d-%d", s.version, len(s.rows)), nil
}

func (s *Store) UpsertContractTerms(_ context.Context, terms []models.ContractTerms) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range terms {
		s.terms[strings.ToLower(t.CampaignName)] = t
	}
	return len(terms), nil
}

func (s *Store) ContractTerms(_ context.Context) ([]models.ContractTerms, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ContractTerms, 0, len(s.terms))
	for _, t := range s.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].CampaignName) < strings.ToLower(out[j].CampaignName)
	})
	return out, nil
}

func (s *Store) DeleteContractTerms(_ context.Context, campaignName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(campaignName)
	if _, ok := s.terms[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.terms, key)
	return nil
}

func (s *Store) SetAnomalyIgnored(_ context.Context, fingerprint, campaignName string, ignored bool) (models.AnomalyFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.mergeFlagLocked(fingerprint, campaignName)
	f.Ignored = ignored
	s.flags[fingerprint] = f
	return f, nil
}

func (s *Store) SetAnomalyDuration(_ context.Context, fingerprint, campaignName string, days int) (models.AnomalyFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.mergeFlagLocked(fingerprint, campaignName)
	f.CustomDurationDays = days
	s.flags[fingerprint] = f
	return f, nil
}

// mergeFlagLocked loads or creates the record so a setter only changes its
// own attribute.
func (s *Store) mergeFlagLocked(fingerprint, campaignName string) models.AnomalyFlag {
	f := s.flags[fingerprint]
	f.Fingerprint = fingerprint
	if campaignName != "" {
		f.CampaignName = campaignName
	}
	f.UpdatedAt = time.Now().UTC()
	return f
}

func (s *Store) AnomalyFlags(_ context.Context) (map[string]models.AnomalyFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.AnomalyFlag, len(s.flags))
	for k, v := range s.flags {
		out[k] = v
	}
	return out, nil
}

func (s *Store) CreateTask(_ context.Context, t models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	return nil
}

func (s *Store) UpdateTask(_ context.Context, t models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return store.ErrNotFound
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *Store) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) Task(_ context.Context, id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Store) Tasks(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AppendActivity(_ context.Context, e models.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, e)
	return nil
}

func (s *Store) RecentActivity(_ context.Context, limit int) ([]models.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ActivityEntry, len(s.activity))
	copy(out, s.activity)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateAnnouncement(_ context.Context, a models.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements[a.ID] = a
	return nil
}

func (s *Store) Announcements(_ context.Context) ([]models.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Announcement, 0, len(s.announcements))
	for _, a := range s.announcements {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteAnnouncement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.announcements[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.announcements, id)
	return nil
}

func (s *Store) CreateResource(_ context.Context, r models.TeamResource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[r.ID] = r
	return nil
}

func (s *Store) Resources(_ context.Context) ([]models.TeamResource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TeamResource, 0, len(s.resources))
	for _, r := range s.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteResource(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.resources, id)
	return nil
}
