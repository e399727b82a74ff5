package aggregator

import (
	"sort"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/types"
)

// Aggregate folds a batch of classified conversations plus raw usage
// counters into one AggregateMetrics. Bucket sums stay equal to the counts
// they were derived from: a conversation lands in exactly one depth bucket,
// an assistant message in exactly one length bucket.
func Aggregate(convs []types.Conversation, counters types.UsageCounters, h config.Heuristics) types.AggregateMetrics {
	ai := types.AIMetrics{TotalConversations: len(convs)}

	topicCounts := map[string]int{}
	respChars := 0

	for _, c := range convs {
		ai.TotalMessages += len(c.Messages)

		switch {
		case len(c.Messages) <= h.ShallowMaxMessages:
			ai.Depth.Shallow++
		case len(c.Messages) <= h.ModerateMaxMessages:
			ai.Depth.Moderate++
		default:
			ai.Depth.Deep++
		}

		switch c.Success.Classification {
		case types.ClassificationSuccessful:
			ai.Success.Successful++
		case types.ClassificationPartial:
			ai.Success.Partial++
		case types.ClassificationFailed:
			ai.Success.Failed++
		case types.ClassificationAbandoned:
			ai.Success.Abandoned++
		}

		for _, m := range c.Messages {
			switch m.Role {
			case types.RoleUser:
				ai.TotalUserMessages++
			case types.RoleAssistant:
				ai.TotalAssistantMessages++
				n := len([]rune(m.Content))
				respChars += n
				switch {
				case n < h.MinResponseChars:
					ai.ResponseQuality.TooShort++
				case n <= h.MaxResponseChars:
					ai.ResponseQuality.Appropriate++
				default:
					ai.ResponseQuality.TooLong++
				}
			}
		}

		// conversations without a timestamp are excluded from the hourly
		// histogram but still counted everywhere else
		if c.CreatedAt != nil {
			ai.Hourly[c.CreatedAt.UTC().Hour()]++
		}

		for _, t := range c.Topics {
			topicCounts[t]++
		}
	}

	if ai.TotalAssistantMessages > 0 {
		ai.MeanResponseLength = float64(respChars) / float64(ai.TotalAssistantMessages)
	}

	ai.Topics = sortedTopics(topicCounts)

	return types.AggregateMetrics{
		User: types.UserMetrics{
			TotalUsers:      counters.TotalUsers,
			ActiveUsers24h:  counters.ActiveUsers24h,
			AppOpens:        counters.AppOpens,
			ImagesGenerated: counters.ImagesGenerated,
			VoiceSessions:   counters.VoiceSessions,
			ByLocale:        counters.ByLocale,
			ByDevice:        counters.ByDevice,
			ByVersion:       counters.ByVersion,
		},
		AI: ai,
	}
}

// sortedTopics orders by count descending, ties by topic name ascending so
// equal inputs always aggregate to equal output.
func sortedTopics(counts map[string]int) []types.TopicCount {
	out := make([]types.TopicCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, types.TopicCount{Topic: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}

// Pct is the shared guarded percentage helper: a zero denominator yields 0,
// never NaN.
func Pct(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}
