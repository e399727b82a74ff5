package classifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/extractor"
	"chat-insights-go/internal/types"
)

// indicator names in fixed evaluation order; reasons are emitted in this
// order for audit and UI display.
var indicatorOrder = []string{
	"user_returned",
	"expressed_thanks",
	"got_answer",
	"had_follow_up",
	"ended_positively",
}

// Classifier assigns an outcome classification and scores to one
// conversation. Pure and order-independent: safe to call from many
// goroutines at once.
type Classifier struct {
	h         config.Heuristics
	gratitude extractor.PhraseMatcher
}

func New(h config.Heuristics) *Classifier {
	return &Classifier{h: h, gratitude: extractor.NewGratitudeMatcher()}
}

// NewWithGratitude swaps the thank-you phrase dictionary, mainly for tests.
func NewWithGratitude(h config.Heuristics, gratitude extractor.PhraseMatcher) *Classifier {
	return &Classifier{h: h, gratitude: gratitude}
}

// Classify computes the outcome for one conversation. A conversation with
// zero messages is invalid input and is rejected, not classified.
func (c *Classifier) Classify(conv types.RawConversation, sig extractor.Signals) (types.ConversationOutcome, error) {
	if len(conv.Messages) == 0 {
		return types.ConversationOutcome{}, fmt.Errorf("conversation %s has no messages", conv.ID)
	}

	ind := c.indicators(conv, sig)
	score := c.score(ind)

	userMsgs, assistantMsgs := 0, 0
	for _, m := range conv.Messages {
		switch m.Role {
		case types.RoleUser:
			userMsgs++
		case types.RoleAssistant:
			assistantMsgs++
		}
	}

	oneShot := userMsgs == 1 && assistantMsgs == 0
	var class types.Classification
	switch {
	case score >= 70:
		class = types.ClassificationSuccessful
	case score >= 40:
		class = types.ClassificationPartial
	case oneShot || (len(conv.Messages) <= 2 && score < 20):
		class = types.ClassificationAbandoned
	case len(conv.Messages) >= 2:
		class = types.ClassificationFailed
	default:
		class = types.ClassificationAbandoned
	}

	return types.ConversationOutcome{
		Score:          score,
		Classification: class,
		Reasons:        reasons(ind, class),
		Indicators:     ind,
	}, nil
}

// EngagementScore is a deterministic 0-100 depth-and-breadth measure.
func (c *Classifier) EngagementScore(conv types.RawConversation, sig extractor.Signals, ind types.OutcomeIndicators) int {
	score := len(conv.Messages)*10 + len(sig.Topics)*5
	if ind.UserReturned {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

func (c *Classifier) indicators(conv types.RawConversation, sig extractor.Signals) types.OutcomeIndicators {
	var ind types.OutcomeIndicators

	ind.UserReturned = c.userReturned(conv.Messages)

	for _, m := range conv.Messages {
		if m.Role == types.RoleUser && c.gratitude.MatchesText(m.Content) {
			ind.ExpressedThanks = true
			break
		}
	}

	if last := lastAssistant(conv.Messages); last != nil {
		trimmed := strings.TrimSpace(last.Content)
		ind.GotAnswer = len([]rune(trimmed)) >= c.h.MinAnswerChars && !strings.HasSuffix(trimmed, "?")
	}

	ind.HadFollowUp = len(conv.Messages) >= c.h.FollowUpMinMessages

	lastMsg := conv.Messages[len(conv.Messages)-1]
	ind.EndedPositively = sig.Sentiment != types.SentimentNegative && lastMsg.Role == types.RoleAssistant

	return ind
}

// userReturned detects a multi-session conversation: a user message after a
// session-sized gap that follows at least one assistant message. Messages
// without timestamps never create a boundary.
func (c *Classifier) userReturned(messages []types.RawMessage) bool {
	assistantSeen := false
	var prev *time.Time
	for i := range messages {
		m := &messages[i]
		if m.Role == types.RoleUser && assistantSeen && prev != nil && m.Timestamp != nil {
			if m.Timestamp.Sub(*prev) > c.h.SessionGap {
				return true
			}
		}
		if m.Role == types.RoleAssistant {
			assistantSeen = true
		}
		if m.Timestamp != nil {
			prev = m.Timestamp
		}
	}
	return false
}

func (c *Classifier) score(ind types.OutcomeIndicators) int {
	w := c.h.Weights
	total := w.GotAnswer + w.ExpressedThanks + w.HadFollowUp + w.EndedPositively + w.UserReturned
	if total <= 0 {
		return 0
	}
	sum := 0.0
	if ind.GotAnswer {
		sum += w.GotAnswer
	}
	if ind.ExpressedThanks {
		sum += w.ExpressedThanks
	}
	if ind.HadFollowUp {
		sum += w.HadFollowUp
	}
	if ind.EndedPositively {
		sum += w.EndedPositively
	}
	if ind.UserReturned {
		sum += w.UserReturned
	}
	return int(math.Round(100 * sum / total))
}

// reasons lists the true indicators for positive classes and the false ones
// for failed/abandoned, in fixed evaluation order.
func reasons(ind types.OutcomeIndicators, class types.Classification) []string {
	wantTrue := class == types.ClassificationSuccessful || class == types.ClassificationPartial
	values := map[string]bool{
		"user_returned":    ind.UserReturned,
		"expressed_thanks": ind.ExpressedThanks,
		"got_answer":       ind.GotAnswer,
		"had_follow_up":    ind.HadFollowUp,
		"ended_positively": ind.EndedPositively,
	}
	var out []string
	for _, name := range indicatorOrder {
		if values[name] == wantTrue {
			out = append(out, name)
		}
	}
	return out
}

func lastAssistant(messages []types.RawMessage) *types.RawMessage {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == types.RoleAssistant {
			return &messages[i]
		}
	}
	return nil
}
