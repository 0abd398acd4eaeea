package models

import "time"

// TotalsSentinel marks pre-summed rows some upstream exports append at the
// bottom of the file. They must never feed aggregation.
const TotalsSentinel = "Totals"

// CampaignRow is one normalized day of delivery for one campaign.
// A zero Date means the source date was unparsable; such rows still count
// toward non-temporal totals but are excluded from date-keyed aggregation.
type CampaignRow struct {
	Date         time.Time `json:"date"`
	CampaignName string    `json:"campaign_name"`
	Advertiser   string    `json:"advertiser,omitempty"`
	Agency       string    `json:"agency,omitempty"`
	Impressions  int       `json:"impressions"`
	Clicks       int       `json:"clicks"`
	Revenue      float64   `json:"revenue"`
	Spend        float64   `json:"spend"`
	Transactions int       `json:"transactions"`
}

func (r CampaignRow) HasDate() bool { return !r.Date.IsZero() }

// TimeSeriesPoint is one day of an aggregated, date-keyed series.
type TimeSeriesPoint struct {
	Date         time.Time `json:"date"`
	Impressions  int       `json:"impressions"`
	Clicks       int       `json:"clicks"`
	Revenue      float64   `json:"revenue"`
	Spend        float64   `json:"spend"`
	Transactions int       `json:"transactions"`
	CTR          float64   `json:"ctr"`
	ROAS         float64   `json:"roas"`
}

// GroupTotals is the output of a keyed aggregation (campaign, advertiser,
// agency or weekday). Rows counts contributing input rows.
type GroupTotals struct {
	Key          string  `json:"key"`
	Impressions  int     `json:"impressions"`
	Clicks       int     `json:"clicks"`
	Revenue      float64 `json:"revenue"`
	Spend        float64 `json:"spend"`
	Transactions int     `json:"transactions"`
	Rows         int     `json:"rows"`
	CTR          float64 `json:"ctr"`
	ROAS         float64 `json:"roas"`
	AOV          float64 `json:"aov"`
}

// TrendData holds day-over-day percentage changes between the last two
// points of a date-sorted series.
type TrendData struct {
	Impressions  float64 `json:"impressions"`
	Clicks       float64 `json:"clicks"`
	Revenue      float64 `json:"revenue"`
	Spend        float64 `json:"spend"`
	Transactions float64 `json:"transactions"`
	CTR          float64 `json:"ctr"`
	ROAS         float64 `json:"roas"`
}

type AnomalyType string

const (
	AnomalyImpressionChange AnomalyType = "impression_change"
	AnomalyTransactionDrop  AnomalyType = "transaction_drop"
	AnomalyTransactionZero  AnomalyType = "transaction_zero"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Anomaly is a transient detection result. The full candidate set is
// regenerated on every run; only the suppression flag and an optional
// duration override are persisted, keyed by Fingerprint.
type Anomaly struct {
	Fingerprint  string             `json:"fingerprint"`
	CampaignName string             `json:"campaign_name"`
	Type         AnomalyType        `json:"type"`
	DateDetected time.Time          `json:"date_detected"`
	Severity     Severity           `json:"severity"`
	Details      map[string]float64 `json:"details,omitempty"`
	Ignored      bool               `json:"is_ignored"`
}

// AnomalyFlag is the persisted part of an anomaly: suppression plus an
// optional contracted-duration override used by the health scorer.
type AnomalyFlag struct {
	Fingerprint        string    `json:"fingerprint"`
	CampaignName       string    `json:"campaign_name"`
	Ignored            bool      `json:"is_ignored"`
	CustomDurationDays int       `json:"custom_duration,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ContractTerms are the flight terms a campaign was sold under.
type ContractTerms struct {
	CampaignName    string    `json:"campaign_name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Budget          float64   `json:"budget"`
	CPM             float64   `json:"cpm"`
	ImpressionsGoal int       `json:"impressions_goal"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BurnRateWindow reports the rolling delivery rate over a trailing window.
// Confidence reflects window reliability only; it never feeds the composite.
type BurnRateWindow struct {
	WindowDays    int     `json:"window_days"`
	Impressions   int     `json:"impressions"`
	DailyRate     float64 `json:"daily_rate"`
	PercentOfGoal float64 `json:"percent_of_goal"`
	Confidence    string  `json:"confidence"`
}

// CampaignHealth is the composite health view for one campaign, rebuilt
// wholesale on every request.
type CampaignHealth struct {
	CampaignName         string           `json:"campaign_name"`
	HealthScore          float64          `json:"health_score"`
	ROAS                 float64          `json:"roas"`
	ROASScore            float64          `json:"roas_score"`
	DeliveryPacing       float64          `json:"delivery_pacing"`
	DeliveryPacingScore  float64          `json:"delivery_pacing_score"`
	BurnRatePercentage   float64          `json:"burn_rate_percentage"`
	BurnRateScore        float64          `json:"burn_rate_score"`
	CTR                  float64          `json:"ctr"`
	CTRScore             float64          `json:"ctr_score"`
	Overspend            float64          `json:"overspend"`
	OverspendScore       float64          `json:"overspend_score"`
	CompletionPercentage float64          `json:"completion_percentage"`
	BurnRateData         []BurnRateWindow `json:"burn_rate_data"`
}

// Task is a card on the team board.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`   // "todo", "in_progress", "done"
	Priority    string     `json:"priority"` // "low", "normal", "high"
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ActivityEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamResource struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportWarning records one non-fatal problem found while normalizing an
// uploaded file.
type ImportWarning struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportReport summarizes one upload.
type ImportReport struct {
	RowsImported int             `json:"rows_imported"`
	RowsSkipped  int             `json:"rows_skipped"`
	Warnings     []ImportWarning `json:"warnings,omitempty"`
}
