package extractor

import (
	"strings"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/types"
)

// Signals is everything the extractor pulls out of one transcript's text.
// Extraction never fails: absence of matches yields empty/unknown defaults,
// and identical input always produces identical output.
type Signals struct {
	Topics       []string            `json:"topics"`
	TopicDetails []types.TopicDetail `json:"topic_details"`
	Sentiment    types.Sentiment     `json:"sentiment"`
	Language     string              `json:"language"`
}

// TopicMatcher assigns topic labels with confidence and example snippets.
// The default is a keyword-table matcher; a statistical classifier can be
// swapped in without touching the classifier's contract.
type TopicMatcher interface {
	Match(messages []types.RawMessage) []types.TopicDetail
}

// SentimentScorer classifies overall user sentiment for a transcript.
type SentimentScorer interface {
	Score(messages []types.RawMessage) types.Sentiment
}

// PhraseMatcher reports whether a piece of text matches a phrase dictionary.
type PhraseMatcher interface {
	MatchesText(text string) bool
}

type Extractor struct {
	topics    TopicMatcher
	sentiment SentimentScorer
}

// New builds the default keyword-dictionary extractor.
func New(h config.Heuristics) *Extractor {
	return &Extractor{
		topics:    NewKeywordTopicMatcher(defaultTopicKeywords, h.MaxTopicExamples, h.ExampleSnippetChars),
		sentiment: NewWordCountSentimentScorer(positiveWords, negativeWords),
	}
}

// NewWithStrategies wires custom matching strategies, mainly for tests and
// future non-keyword classifiers.
func NewWithStrategies(topics TopicMatcher, sentiment SentimentScorer) *Extractor {
	return &Extractor{topics: topics, sentiment: sentiment}
}

// Extract runs topic, sentiment and language detection over one raw
// conversation.
func (e *Extractor) Extract(conv types.RawConversation) Signals {
	details := e.topics.Match(conv.Messages)

	topics := make([]string, 0, len(details))
	for _, d := range details {
		topics = append(topics, d.Topic)
	}

	return Signals{
		Topics:       topics,
		TopicDetails: details,
		Sentiment:    e.sentiment.Score(conv.Messages),
		Language:     languageFromLocale(conv.Locale),
	}
}

// languageFromLocale is a metadata passthrough, not language ID: the primary
// subtag of the locale hint, or "unknown" when absent.
func languageFromLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "unknown"
	}
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}
