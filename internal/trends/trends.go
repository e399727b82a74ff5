package trends

import (
	"fmt"
	"math"
	"sort"

	"chat-insights-go/internal/types"
)

// directionDelta is the dead band around "stable": a quality move must
// exceed it (in either direction) to count as a trend.
const directionDelta = 5

// QualityScore is the default 0-100 snapshot health number, used when no
// externally supplied score exists. Base 50, depth-ratio bonus, response
// length band bonus, insight polarity adjustment, clamped.
func QualityScore(ai types.AIMetrics, insights []types.Insight) int {
	score := 50.0

	if ai.TotalConversations > 0 {
		deep := float64(ai.Depth.Deep) / float64(ai.TotalConversations)
		moderate := float64(ai.Depth.Moderate) / float64(ai.TotalConversations)
		score += deep*25 + moderate*15
	}

	switch mean := ai.MeanResponseLength; {
	case mean >= 100 && mean <= 400:
		score += 15
	case mean >= 50 && mean <= 600:
		score += 8
	}

	for _, ins := range insights {
		switch ins.Type {
		case types.InsightPositive:
			score += 3
		case types.InsightNegative:
			score -= 5
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}

// scoreOf prefers the score attached to the snapshot and recomputes the
// default formula only when none is present.
func scoreOf(s *types.Snapshot) int {
	if s.QualityScore > 0 {
		return s.QualityScore
	}
	return QualityScore(s.AIMetrics, s.Insights)
}

// Analyze computes per-snapshot quality, rolling average, volatility and
// direction over a run of dated snapshots. Input order does not matter; the
// window is re-sorted by date ascending, and undated (all-time) snapshots
// are excluded. Fewer than two dated snapshots is an insufficient-data
// result, not an error.
func Analyze(snapshots []*types.Snapshot) types.TrendResult {
	dated := make([]*types.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s != nil && s.Date != "" {
			dated = append(dated, s)
		}
	}
	sort.Slice(dated, func(i, j int) bool { return dated[i].Date < dated[j].Date })

	res := types.TrendResult{Direction: types.TrendStable}
	if len(dated) == 0 {
		return res
	}

	sum := 0.0
	for _, s := range dated {
		score := scoreOf(s)
		res.Points = append(res.Points, types.TrendPoint{Date: s.Date, QualityScore: score})
		sum += float64(score)
	}
	mean := sum / float64(len(dated))
	res.RollingAverage = mean

	variance := 0.0
	for _, p := range res.Points {
		d := float64(p.QualityScore) - mean
		variance += d * d
	}
	res.Volatility = math.Sqrt(variance / float64(len(res.Points)))

	if len(dated) < 2 {
		return res
	}
	res.Sufficient = true

	delta := res.Points[len(res.Points)-1].QualityScore - res.Points[0].QualityScore
	switch {
	case delta > directionDelta:
		res.Direction = types.TrendImproving
	case delta < -directionDelta:
		res.Direction = types.TrendDeclining
	}
	return res
}

// polarity says whether growth in a metric is good, bad or neither.
type polarity int

const (
	higherIsBetter polarity = iota
	lowerIsBetter
	neutral
)

type trackedMetric struct {
	name     string
	polarity polarity
	value    func(s *types.Snapshot) float64
}

var trackedMetrics = []trackedMetric{
	{"quality_score", higherIsBetter, func(s *types.Snapshot) float64 { return float64(scoreOf(s)) }},
	{"conversations_analyzed", higherIsBetter, func(s *types.Snapshot) float64 { return float64(s.ConversationsAnalyzed) }},
	{"successful_conversations", higherIsBetter, func(s *types.Snapshot) float64 { return float64(s.AIMetrics.Success.Successful) }},
	{"failed_conversations", lowerIsBetter, func(s *types.Snapshot) float64 { return float64(s.AIMetrics.Success.Failed) }},
	{"abandoned_conversations", lowerIsBetter, func(s *types.Snapshot) float64 { return float64(s.AIMetrics.Success.Abandoned) }},
	{"mean_response_length", neutral, func(s *types.Snapshot) float64 { return s.AIMetrics.MeanResponseLength }},
	{"active_users_24h", higherIsBetter, func(s *types.Snapshot) float64 { return float64(s.UserMetrics.ActiveUsers24h) }},
	{"total_users", higherIsBetter, func(s *types.Snapshot) float64 { return float64(s.UserMetrics.TotalUsers) }},
}

// Compare produces the period-over-period delta between snapshot idA
// (current) and idB (previous) for every tracked metric.
func Compare(snapshots []*types.Snapshot, idA, idB string) (types.ComparisonResult, error) {
	current := findSnapshot(snapshots, idA)
	previous := findSnapshot(snapshots, idB)
	if current == nil {
		return types.ComparisonResult{}, fmt.Errorf("snapshot %q not found", idA)
	}
	if previous == nil {
		return types.ComparisonResult{}, fmt.Errorf("snapshot %q not found", idB)
	}

	res := types.ComparisonResult{CurrentID: current.ID, PreviousID: previous.ID}
	for _, m := range trackedMetrics {
		cur, prev := m.value(current), m.value(previous)
		change := cur - prev
		res.Metrics = append(res.Metrics, types.MetricChange{
			Name:          m.name,
			Current:       cur,
			Previous:      prev,
			Change:        change,
			ChangePercent: changePercent(cur, prev),
			Direction:     direction(m.polarity, change),
		})
	}
	return res, nil
}

func findSnapshot(snapshots []*types.Snapshot, id string) *types.Snapshot {
	for _, s := range snapshots {
		if s == nil {
			continue
		}
		if s.ID == id || (s.Date != "" && s.Date == id) {
			return s
		}
	}
	return nil
}

// changePercent guards the zero-previous case: growth from nothing is 100%,
// nothing-to-nothing is 0%.
func changePercent(cur, prev float64) int {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(100 * (cur - prev) / prev))
}

func direction(p polarity, change float64) string {
	if p == neutral || change == 0 {
		return "neutral"
	}
	improved := change > 0
	if p == lowerIsBetter {
		improved = !improved
	}
	if improved {
		return "improved"
	}
	return "declined"
}
