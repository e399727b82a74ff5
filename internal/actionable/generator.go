package actionable

import (
	"fmt"
	"sort"

	"chat-insights-go/internal/aggregator"
	"chat-insights-go/internal/config"
	"chat-insights-go/internal/types"
)

// rule is one row of the insight rule table. Every rule runs on every
// generation pass; any number may fire. Rules never divide by zero: each
// predicate guards its own denominator.
type rule struct {
	category string
	eval     func(m types.AggregateMetrics, t config.InsightThresholds) (*types.Insight, types.Priority)
}

var ruleTable = []rule{
	{
		category: "quality",
		eval: func(m types.AggregateMetrics, t config.InsightThresholds) (*types.Insight, types.Priority) {
			pct := aggregator.Pct(m.AI.ResponseQuality.TooShort, m.AI.TotalAssistantMessages)
			if m.AI.TotalAssistantMessages == 0 || pct <= t.TooShortPct {
				return nil, ""
			}
			prio := types.PriorityHigh
			if pct > t.TooShortCriticalPct {
				prio = types.PriorityCritical
			}
			return &types.Insight{
				Type:           types.InsightNegative,
				Category:       "quality",
				Finding:        fmt.Sprintf("%.0f%% of assistant responses are under the minimum useful length", pct),
				Recommendation: "Raise minimum response detail; short replies correlate with failed conversations",
			}, prio
		},
	},
	{
		category: "engagement",
		eval: func(m types.AggregateMetrics, t config.InsightThresholds) (*types.Insight, types.Priority) {
			pct := aggregator.Pct(m.AI.Depth.Shallow, m.AI.TotalConversations)
			if pct <= t.ShallowPct {
				return nil, ""
			}
			return &types.Insight{
				Type:           types.InsightNegative,
				Category:       "engagement",
				Finding:        fmt.Sprintf("%.0f%% of conversations end within two messages", pct),
				Recommendation: "Strengthen first-response hooks to pull users into a second exchange",
			}, types.PriorityHigh
		},
	},
	{
		category: "retention",
		eval: func(m types.AggregateMetrics, t config.InsightThresholds) (*types.Insight, types.Priority) {
			if m.User.TotalUsers == 0 {
				return nil, ""
			}
			pct := aggregator.Pct(m.User.ActiveUsers24h, m.User.TotalUsers)
			if pct >= t.ActiveUserMinPct {
				return nil, ""
			}
			return &types.Insight{
				Type:           types.InsightNegative,
				Category:       "retention",
				Finding:        fmt.Sprintf("only %.1f%% of users were active in the last 24h", pct),
				Recommendation: "Introduce re-engagement prompts and surface unfinished conversations",
			}, types.PriorityHigh
		},
	},
	{
		category: "engagement",
		eval: func(m types.AggregateMetrics, t config.InsightThresholds) (*types.Insight, types.Priority) {
			pct := aggregator.Pct(m.AI.Success.Abandoned, m.AI.TotalConversations)
			if pct <= t.AbandonedPct {
				return nil, ""
			}
			return &types.Insight{
				Type:           types.InsightNegative,
				Category:       "engagement",
				Finding:        fmt.Sprintf("%.0f%% of conversations were abandoned before a useful reply", pct),
				Recommendation: "Audit opening turns of abandoned conversations for unanswered intents",
			}, types.PriorityHigh
		},
	},
	{
		category: "quality",
		eval: func(m types.AggregateMetrics, t config.InsightThresholds) (*types.Insight, types.Priority) {
			pct := aggregator.Pct(m.AI.Success.Failed, m.AI.TotalConversations)
			if pct <= t.FailedPct {
				return nil, ""
			}
			return &types.Insight{
				Type:           types.InsightNegative,
				Category:       "quality",
				Finding:        fmt.Sprintf("%.0f%% of conversations classified as failed", pct),
				Recommendation: "Review failed transcripts for recurring topics and answer gaps",
			}, types.PriorityHigh
		},
	},
}

// effortImpact is the fixed per-category lookup for action item derivation.
var effortImpact = map[string]struct {
	effort types.Effort
	impact types.Impact
	action string
}{
	"quality":    {types.EffortQuick, types.ImpactHigh, "Tune response-length and answer-completeness thresholds"},
	"engagement": {types.EffortMedium, types.ImpactHigh, "Redesign early-conversation prompts to invite follow-up"},
	"retention":  {types.EffortSignificant, types.ImpactHigh, "Build a re-engagement notification flow"},
}

var priorityRank = map[types.Priority]int{
	types.PriorityCritical: 3,
	types.PriorityHigh:     2,
	types.PriorityMedium:   1,
	types.PriorityLow:      0,
}

// Generate runs the full rule table over one aggregate and derives the
// ranked action-item list. With zero conversations it reports insufficient
// data instead of fabricating findings.
func Generate(m types.AggregateMetrics, t config.InsightThresholds) ([]types.Insight, []types.ActionItem) {
	if m.AI.TotalConversations == 0 {
		return []types.Insight{{
			Type:     types.InsightNeutral,
			Category: "data",
			Finding:  "insufficient data: no conversations were analyzed in this period",
		}}, nil
	}

	var insights []types.Insight
	var items []types.ActionItem

	for _, r := range ruleTable {
		ins, prio := r.eval(m, t)
		if ins == nil {
			continue
		}
		insights = append(insights, *ins)

		ei := effortImpact[r.category]
		items = append(items, types.ActionItem{
			ID:         fmt.Sprintf("act-%02d-%s", len(items)+1, r.category),
			InsightRef: fmt.Sprintf("insight-%d", len(insights)-1),
			Action:     ei.action,
			Priority:   prio,
			Effort:     ei.effort,
			Impact:     ei.impact,
			Status:     types.StatusPending,
		})
	}

	if len(insights) == 0 {
		insights = append(insights, types.Insight{
			Type:     types.InsightPositive,
			Category: "quality",
			Finding:  "no quality, engagement or retention thresholds were breached",
		})
	}

	rank(items)
	return insights, items
}

// rank orders by priority, then quick-win score, stable on insertion order.
func rank(items []types.ActionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := priorityRank[items[i].Priority], priorityRank[items[j].Priority]
		if pi != pj {
			return pi > pj
		}
		return QuickWinScore(items[i]) > QuickWinScore(items[j])
	})
}

// QuickWinScore is the composite secondary ranking key.
func QuickWinScore(a types.ActionItem) int {
	score := 0
	switch a.Effort {
	case types.EffortQuick:
		score += 2
	case types.EffortMedium:
		score++
	}
	switch a.Impact {
	case types.ImpactHigh:
		score += 2
	case types.ImpactMedium:
		score++
	}
	return score
}

// QuickWins filters the low-effort, high-impact subset.
func QuickWins(items []types.ActionItem) []types.ActionItem {
	var out []types.ActionItem
	for _, a := range items {
		if a.Effort == types.EffortQuick && a.Impact == types.ImpactHigh {
			out = append(out, a)
		}
	}
	return out
}
