package classifier

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/extractor"
	"chat-insights-go/internal/types"
)

func newClassifier() *Classifier {
	return New(config.Default().Heuristics)
}

func longAnswer() string {
	return strings.Repeat("Here is a detailed explanation of the fix. ", 3)
}

func successfulConversation() types.RawConversation {
	return types.RawConversation{
		ID: "c1",
		Messages: []types.RawMessage{
			{Role: types.RoleUser, Content: "how do I fix this bug?"},
			{Role: types.RoleAssistant, Content: longAnswer()},
			{Role: types.RoleUser, Content: "thanks, that worked"},
			{Role: types.RoleAssistant, Content: longAnswer()},
		},
	}
}

func TestClassify_Successful(t *testing.T) {
	c := newClassifier()

	out, err := c.Classify(successfulConversation(), extractor.Signals{Sentiment: types.SentimentPositive})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	// gotAnswer + expressedThanks + hadFollowUp + endedPositively = 0.9
	if out.Score != 90 {
		t.Errorf("Score = %d, want 90", out.Score)
	}
	if out.Classification != types.ClassificationSuccessful {
		t.Errorf("Classification = %v, want successful", out.Classification)
	}

	wantReasons := []string{"expressed_thanks", "got_answer", "had_follow_up", "ended_positively"}
	if !reflect.DeepEqual(out.Reasons, wantReasons) {
		t.Errorf("Reasons = %v, want %v", out.Reasons, wantReasons)
	}
}

func TestClassify_AbandonedOneShot(t *testing.T) {
	c := newClassifier()

	out, err := c.Classify(types.RawConversation{
		ID:       "c1",
		Messages: []types.RawMessage{{Role: types.RoleUser, Content: "hello?"}},
	}, extractor.Signals{Sentiment: types.SentimentNeutral})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if out.Score >= 20 {
		t.Errorf("Score = %d, want < 20", out.Score)
	}
	if out.Classification != types.ClassificationAbandoned {
		t.Errorf("Classification = %v, want abandoned", out.Classification)
	}
	// abandoned lists the missing indicators, in evaluation order
	wantReasons := []string{"user_returned", "expressed_thanks", "got_answer", "had_follow_up", "ended_positively"}
	if !reflect.DeepEqual(out.Reasons, wantReasons) {
		t.Errorf("Reasons = %v, want %v", out.Reasons, wantReasons)
	}
}

func TestClassify_FailedLongButFruitless(t *testing.T) {
	c := newClassifier()

	// three messages, no useful answer, user gets nothing: hadFollowUp is
	// false (under 4 messages), final message is a user complaint
	out, err := c.Classify(types.RawConversation{
		ID: "c1",
		Messages: []types.RawMessage{
			{Role: types.RoleUser, Content: "my app is broken"},
			{Role: types.RoleAssistant, Content: "Could you clarify what you mean?"},
			{Role: types.RoleUser, Content: "this is useless"},
		},
	}, extractor.Signals{Sentiment: types.SentimentNegative})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if out.Classification != types.ClassificationFailed {
		t.Errorf("Classification = %v, want failed (score %d)", out.Classification, out.Score)
	}
}

func TestClassify_PartialBand(t *testing.T) {
	c := newClassifier()

	// gotAnswer + endedPositively = 0.5 -> score 50 -> partial
	out, err := c.Classify(types.RawConversation{
		ID: "c1",
		Messages: []types.RawMessage{
			{Role: types.RoleUser, Content: "explain interfaces"},
			{Role: types.RoleAssistant, Content: longAnswer()},
		},
	}, extractor.Signals{Sentiment: types.SentimentNeutral})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if out.Score != 50 {
		t.Errorf("Score = %d, want 50", out.Score)
	}
	if out.Classification != types.ClassificationPartial {
		t.Errorf("Classification = %v, want partial", out.Classification)
	}
}

func TestClassify_ClarifyingQuestionIsNotAnAnswer(t *testing.T) {
	c := newClassifier()

	long := strings.Repeat("Could you tell me more about the environment you run this in", 2) + "?"
	out, err := c.Classify(types.RawConversation{
		ID: "c1",
		Messages: []types.RawMessage{
			{Role: types.RoleUser, Content: "it crashes"},
			{Role: types.RoleAssistant, Content: long},
		},
	}, extractor.Signals{Sentiment: types.SentimentNeutral})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if out.Indicators.GotAnswer {
		t.Error("GotAnswer = true for a clarifying question")
	}
}

func TestClassify_UserReturned(t *testing.T) {
	c := newClassifier()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	ts := func(d time.Duration) *time.Time {
		t := base.Add(d)
		return &t
	}

	out, err := c.Classify(types.RawConversation{
		ID: "c1",
		Messages: []types.RawMessage{
			{Role: types.RoleUser, Content: "hi", Timestamp: ts(0)},
			{Role: types.RoleAssistant, Content: longAnswer(), Timestamp: ts(time.Minute)},
			{Role: types.RoleUser, Content: "back again, one more question", Timestamp: ts(2 * time.Hour)},
			{Role: types.RoleAssistant, Content: longAnswer(), Timestamp: ts(2*time.Hour + time.Minute)},
		},
	}, extractor.Signals{Sentiment: types.SentimentNeutral})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if !out.Indicators.UserReturned {
		t.Error("UserReturned = false across a 2h session gap")
	}
	// all five indicators except expressedThanks: 0.35+0.2+0.15+0.1 = 0.8
	if out.Score != 80 {
		t.Errorf("Score = %d, want 80", out.Score)
	}
}

func TestClassify_NoTimestampsNeverReturns(t *testing.T) {
	c := newClassifier()

	out, err := c.Classify(successfulConversation(), extractor.Signals{Sentiment: types.SentimentNeutral})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Indicators.UserReturned {
		t.Error("UserReturned = true without any timestamps")
	}
}

func TestClassify_EmptyConversationRejected(t *testing.T) {
	c := newClassifier()

	if _, err := c.Classify(types.RawConversation{ID: "c1"}, extractor.Signals{}); err == nil {
		t.Fatal("Classify() accepted a conversation with zero messages")
	}
}

func TestClassify_ScoreBounds(t *testing.T) {
	c := newClassifier()

	convs := []types.RawConversation{
		{ID: "a", Messages: []types.RawMessage{{Role: types.RoleUser, Content: "x"}}},
		successfulConversation(),
		{ID: "b", Messages: []types.RawMessage{
			{Role: types.RoleAssistant, Content: longAnswer()},
		}},
	}
	for _, conv := range convs {
		out, err := c.Classify(conv, extractor.Signals{Sentiment: types.SentimentNeutral})
		if err != nil {
			t.Fatalf("Classify(%s) error = %v", conv.ID, err)
		}
		if out.Score < 0 || out.Score > 100 {
			t.Errorf("Classify(%s) score = %d, out of [0,100]", conv.ID, out.Score)
		}
	}
}

func TestEngagementScoreBounds(t *testing.T) {
	c := newClassifier()

	conv := successfulConversation()
	sig := extractor.Signals{Topics: []string{"coding", "support"}}
	got := c.EngagementScore(conv, sig, types.OutcomeIndicators{UserReturned: true})
	if got < 0 || got > 100 {
		t.Fatalf("EngagementScore = %d, out of [0,100]", got)
	}

	big := types.RawConversation{ID: "big"}
	for i := 0; i < 40; i++ {
		big.Messages = append(big.Messages, types.RawMessage{Role: types.RoleUser, Content: "x"})
	}
	if got := c.EngagementScore(big, sig, types.OutcomeIndicators{}); got != 100 {
		t.Errorf("EngagementScore = %d, want clamped to 100", got)
	}
}
