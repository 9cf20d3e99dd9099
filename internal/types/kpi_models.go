// internal/types/kpi_models.go
package types

import "time"

// --------------------------------------------
// Rate-based KPIs over one injury + near-miss snapshot
// --------------------------------------------
type SafetyKPIs struct {
	TRIR           float64 `json:"trir"`
	LTIR           float64 `json:"ltir"`
	DAFWR          float64 `json:"dafwr"`
	NMFR           float64 `json:"nmfr"`
	RecordableRate float64 `json:"recordable_rate"`
	SafetyIndex    float64 `json:"safety_index"`

	TotalInjuries      int `json:"total_injuries"`
	RecordableInjuries int `json:"recordable_injuries"`
	LostTimeCases      int `json:"lost_time_cases"`
	TotalDaysAway      int `json:"total_days_away"`
	NearMisses         int `json:"near_misses"`
	CriticalEvents     int `json:"critical_events"`

	AvgRiskScore       float64 `json:"avg_risk_score"`
	SeverityScore      float64 `json:"severity_score"`
	LeadIndicatorScore float64 `json:"lead_indicator_score"`
	LagIndicatorScore  float64 `json:"lag_indicator_score"`

	Trend30Days float64 `json:"trend_30_days"`
	Trend60Days float64 `json:"trend_60_days"`
	Trend90Days float64 `json:"trend_90_days"`

	BaselineHours float64 `json:"baseline_hours"`
}

// --------------------------------------------
// Data quality
// --------------------------------------------
type QualityMetrics struct {
	Completeness    float64  `json:"completeness"`
	Accuracy        float64  `json:"accuracy"`
	Consistency     float64  `json:"consistency"`
	Timeliness      float64  `json:"timeliness"`
	OverallScore    float64  `json:"overall_score"`
	MissingFields   []string `json:"missing_fields"`
	DuplicateCount  int      `json:"duplicate_count"`
	AvgWordCount    float64  `json:"avg_word_count"`
	RecordsAssessed int      `json:"records_assessed"`
}

type FrequencyBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// --------------------------------------------
// Trends
// --------------------------------------------
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendWorsening TrendDirection = "worsening"
)

type TrendAnalysis struct {
	Metric        string         `json:"metric"`
	Direction     TrendDirection `json:"direction"`
	ChangePercent float64        `json:"change_percent"`
	Prediction    float64        `json:"prediction"`
	Confidence    float64        `json:"confidence"`
	Factors       []string       `json:"factors"`
}

type MonthCount struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Pattern struct {
	Kind        string    `json:"kind"`
	Keys        [2]string `json:"keys"`
	Count       int       `json:"count"`
	Description string    `json:"description"`
}

type Categorization struct {
	SuggestedCategory string   `json:"suggested_category"`
	Confidence        int      `json:"confidence"`
	Keywords          []string `json:"keywords"`
}

// --------------------------------------------
// Risk matrix
// --------------------------------------------
type RiskMatrixCell struct {
	Severity   int      `json:"severity"`
	Likelihood int      `json:"likelihood"`
	Count      int      `json:"count"`
	RiskLevel  string   `json:"risk_level"`
	RecordIDs  []string `json:"record_ids"`
}

// --------------------------------------------
// Insights and recommendations
// --------------------------------------------
type InsightSeverity string

const (
	InsightCritical InsightSeverity = "critical"
	InsightWarning  InsightSeverity = "warning"
	InsightInfo     InsightSeverity = "info"
)

type PredictiveInsight struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	Severity         InsightSeverity `json:"severity"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Confidence       int             `json:"confidence"`
	RelatedData      []string        `json:"related_data"`
	SuggestedActions []string        `json:"suggested_actions"`
	Timestamp        time.Time       `json:"timestamp"`
}

type SmartRecommendation struct {
	ID                   string `json:"id"`
	Category             string `json:"category"`
	Recommendation       string `json:"recommendation"`
	Reasoning            string `json:"reasoning"`
	Priority             int    `json:"priority"`
	Impact               string `json:"impact"`
	ImplementationEffort string `json:"implementation_effort"`
}

// --------------------------------------------
// Action tracking
// --------------------------------------------
type ActionStatus string

const (
	ActionOpen       ActionStatus = "open"
	ActionInProgress ActionStatus = "in-progress"
	ActionCompleted  ActionStatus = "completed"
	ActionOverdue    ActionStatus = "overdue"
)

type ActionPriority string

const (
	PriorityLow      ActionPriority = "low"
	PriorityMedium   ActionPriority = "medium"
	PriorityHigh     ActionPriority = "high"
	PriorityCritical ActionPriority = "critical"
)

type ActionItem struct {
	ID            string         `json:"id"`
	IncidentID    string         `json:"incident_id"`
	Type          string         `json:"type"` // injury | nearmiss
	Action        string         `json:"action"`
	Responsible   string         `json:"responsible"`
	DueDate       string         `json:"due_date"`
	CreatedDate   string         `json:"created_date"`
	CompletedDate string         `json:"completed_date,omitempty"`
	Status        ActionStatus   `json:"status"`
	Priority      ActionPriority `json:"priority"`
}

type ActionStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}
