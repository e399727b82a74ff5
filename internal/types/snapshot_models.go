// internal/types/snapshot_models.go
package types

import "time"

// --------------------------------------------
// Raw usage counters supplied by the caller
// --------------------------------------------
type UsageCounters struct {
	TotalUsers      int            `json:"total_users"`
	ActiveUsers24h  int            `json:"active_users_24h"`
	AppOpens        int            `json:"app_opens"`
	ImagesGenerated int            `json:"images_generated"`
	VoiceSessions   int            `json:"voice_sessions"`
	ByLocale        map[string]int `json:"by_locale,omitempty"`
	ByDevice        map[string]int `json:"by_device,omitempty"`
	ByVersion       map[string]int `json:"by_version,omitempty"`
}

// --------------------------------------------
// Aggregate user-side metrics
// --------------------------------------------
type UserMetrics struct {
	TotalUsers      int            `json:"total_users"`
	ActiveUsers24h  int            `json:"active_users_24h"`
	AppOpens        int            `json:"app_opens"`
	ImagesGenerated int            `json:"images_generated"`
	VoiceSessions   int            `json:"voice_sessions"`
	ByLocale        map[string]int `json:"by_locale,omitempty"`
	ByDevice        map[string]int `json:"by_device,omitempty"`
	ByVersion       map[string]int `json:"by_version,omitempty"`
}

// --------------------------------------------
// Aggregate AI-side metrics
// --------------------------------------------

// DepthBuckets counts conversations by depth. The three buckets always sum
// to the number of classified conversations.
type DepthBuckets struct {
	Shallow  int `json:"shallow"`
	Moderate int `json:"moderate"`
	Deep     int `json:"deep"`
}

// ResponseQualityBuckets counts assistant messages by length band. The three
// buckets always sum to the total assistant message count.
type ResponseQualityBuckets struct {
	TooShort    int `json:"too_short"`
	Appropriate int `json:"appropriate"`
	TooLong     int `json:"too_long"`
}

// SuccessBuckets counts conversations by outcome classification.
type SuccessBuckets struct {
	Successful int `json:"successful"`
	Partial    int `json:"partial"`
	Failed     int `json:"failed"`
	Abandoned  int `json:"abandoned"`
}

// TopicCount is one row of the topic frequency table, sorted by count
// descending, ties by topic name ascending.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type AIMetrics struct {
	TotalConversations     int                    `json:"total_conversations"`
	TotalMessages          int                    `json:"total_messages"`
	TotalUserMessages      int                    `json:"total_user_messages"`
	TotalAssistantMessages int                    `json:"total_assistant_messages"`
	Depth                  DepthBuckets           `json:"depth"`
	ResponseQuality        ResponseQualityBuckets `json:"response_quality"`
	Success                SuccessBuckets         `json:"success"`
	MeanResponseLength     float64                `json:"mean_response_length"`
	Hourly                 [24]int                `json:"hourly"`
	Topics                 []TopicCount           `json:"topics"`
}

// AggregateMetrics is the fan-in of one evaluation batch: everything the
// insight, funnel and trend stages consume.
type AggregateMetrics struct {
	User UserMetrics `json:"user_metrics"`
	AI   AIMetrics   `json:"ai_metrics"`
}

// --------------------------------------------
// Insights and action items
// --------------------------------------------
type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightNegative InsightType = "negative"
	InsightNeutral  InsightType = "neutral"
)

type Insight struct {
	Type           InsightType `json:"type"`
	Category       string      `json:"category"`
	Finding        string      `json:"finding"`
	Recommendation string      `json:"recommendation,omitempty"`
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type Effort string

const (
	EffortQuick       Effort = "quick"
	EffortMedium      Effort = "medium"
	EffortSignificant Effort = "significant"
)

type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

type ActionStatus string

const (
	StatusPending    ActionStatus = "pending"
	StatusInProgress ActionStatus = "in_progress"
	StatusCompleted  ActionStatus = "completed"
	StatusDismissed  ActionStatus = "dismissed"
)

// ActionItem is derived from a negative insight. The engine always emits
// status=pending; the consuming UI owns any later status edits and
// reconciles them against regenerated items.
type ActionItem struct {
	ID         string       `json:"id"`
	InsightRef string       `json:"insight_ref"`
	Action     string       `json:"action"`
	Priority   Priority     `json:"priority"`
	Effort     Effort       `json:"effort"`
	Impact     Impact       `json:"impact"`
	Status     ActionStatus `json:"status"`
}

// --------------------------------------------
// Funnel
// --------------------------------------------
type FunnelStage struct {
	Name         string `json:"name"`
	Count        int    `json:"count"`
	RetentionPct int    `json:"retention_pct"`
}

type FunnelDropOff struct {
	From    string `json:"from"`
	To      string `json:"to"`
	RatePct int    `json:"rate_pct"`
}

type FunnelResult struct {
	Stages     []FunnelStage   `json:"stages"`
	DropOffs   []FunnelDropOff `json:"drop_offs"`
	Suggestion string          `json:"suggestion"`
}

// --------------------------------------------
// Snapshot: one evaluation run's full output
// --------------------------------------------

// Snapshot is keyed by Date (YYYY-MM-DD); an empty Date means the all-time
// aggregate. A second run for the same date overwrites the first.
type Snapshot struct {
	ID                    string       `json:"id"`
	Date                  string       `json:"date,omitempty"`
	GeneratedAt           time.Time    `json:"generated_at"`
	SampleSize            int          `json:"sample_size"`
	ConversationsAnalyzed int          `json:"conversations_analyzed"`
	SkippedConversations  int          `json:"skipped_conversations"`
	UserMetrics           UserMetrics  `json:"user_metrics"`
	AIMetrics             AIMetrics    `json:"ai_metrics"`
	Insights              []Insight    `json:"insights"`
	ActionItems           []ActionItem `json:"action_items"`
	Funnel                FunnelResult `json:"funnel"`
	QualityScore          int          `json:"quality_score"`
}

// --------------------------------------------
// Trend / comparison output
// --------------------------------------------
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

type TrendPoint struct {
	Date         string `json:"date"`
	QualityScore int    `json:"quality_score"`
}

type TrendResult struct {
	Points         []TrendPoint   `json:"points"`
	RollingAverage float64        `json:"rolling_average"`
	Volatility     float64        `json:"volatility"`
	Direction      TrendDirection `json:"direction"`
	Sufficient     bool           `json:"sufficient"`
}

// MetricChange compares one tracked metric between two snapshots.
// Direction is "improved", "declined" or "neutral" depending on the metric's
// polarity (more conversations is good, more failures is bad, response
// length has no single good direction).
type MetricChange struct {
	Name          string  `json:"name"`
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent int     `json:"change_percent"`
	Direction     string  `json:"direction"`
}

type ComparisonResult struct {
	CurrentID  string         `json:"current_id"`
	PreviousID string         `json:"previous_id"`
	Metrics    []MetricChange `json:"metrics"`
}
