package types

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// RawMessage is one turn of an inbound transcript. Timestamp is optional;
// messages without one are excluded from time-based stats but still scored.
type RawMessage struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// RawConversation is the input contract at the engine boundary. Whatever
// shape the source sent gets converted into this (or rejected) before any
// classification runs.
type RawConversation struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Locale    string       `json:"locale,omitempty"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
	Messages  []RawMessage `json:"messages"`
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentUnknown  Sentiment = "unknown"
)

type Classification string

const (
	ClassificationSuccessful Classification = "successful"
	ClassificationPartial    Classification = "partial"
	ClassificationFailed     Classification = "failed"
	ClassificationAbandoned  Classification = "abandoned"
)

// OutcomeIndicators are the five boolean signals the classifier scores.
type OutcomeIndicators struct {
	UserReturned    bool `json:"user_returned"`
	ExpressedThanks bool `json:"expressed_thanks"`
	GotAnswer       bool `json:"got_answer"`
	HadFollowUp     bool `json:"had_follow_up"`
	EndedPositively bool `json:"ended_positively"`
}

// ConversationOutcome is the classifier's verdict for one conversation.
// Score is the weighted indicator sum scaled to 0-100; Reasons lists the
// indicators that drove (or sank) the classification, in evaluation order.
type ConversationOutcome struct {
	Score          int               `json:"score"`
	Classification Classification    `json:"classification"`
	Reasons        []string          `json:"reasons"`
	Indicators     OutcomeIndicators `json:"indicators"`
}

// TopicDetail carries the evidence behind one detected topic.
type TopicDetail struct {
	Topic      string   `json:"topic"`
	Confidence float64  `json:"confidence"`
	Examples   []string `json:"examples,omitempty"`
}

// Conversation is one fully classified transcript. Immutable after scoring;
// re-evaluation produces a new record, never mutates history in place.
type Conversation struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Messages        []RawMessage        `json:"messages"`
	CreatedAt       *time.Time          `json:"created_at,omitempty"`
	LastMessageAt   *time.Time          `json:"last_message_at,omitempty"`
	Language        string              `json:"language"`
	Topics          []string            `json:"topics"`
	TopicDetails    []TopicDetail       `json:"topic_details"`
	Success         ConversationOutcome `json:"success"`
	Sentiment       Sentiment           `json:"sentiment"`
	EngagementScore int                 `json:"engagement_score"`
}
