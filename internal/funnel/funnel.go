package funnel

import (
	"math"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/types"
)

var stageNames = []string{"Started", "Engaged", "DeepDive", "PowerUsers"}

// remediation is keyed by the stage transition with the highest drop-off.
var remediation = []string{
	"Improve first-response engagement: most users never make it past the opening exchange",
	"Improve mid-conversation personalization to carry engaged users deeper",
	"Add proactive follow-ups to convert deep users into regulars",
}

const goodRetention = "Stage-to-stage retention is healthy; no funnel intervention needed"

// Analyze derives the 4-stage engagement funnel from depth buckets. The
// stage multipliers are hand-tuned product heuristics carried in config.
func Analyze(d types.DepthBuckets, cfg config.FunnelConfig) types.FunnelResult {
	total := d.Shallow + d.Moderate + d.Deep
	counts := []int{
		total,
		d.Moderate + d.Deep + int(math.Floor(cfg.ShallowCarry*float64(d.Shallow))),
		d.Deep + int(math.Floor(cfg.ModerateCarry*float64(d.Moderate))),
		int(math.Floor(cfg.PowerShare * float64(d.Deep))),
	}

	stages := make([]types.FunnelStage, len(counts))
	for i, n := range counts {
		stages[i] = types.FunnelStage{
			Name:         stageNames[i],
			Count:        n,
			RetentionPct: roundPct(n, total),
		}
	}

	drops := make([]types.FunnelDropOff, 0, len(counts)-1)
	worst, worstRate := -1, -1
	for i := 1; i < len(counts); i++ {
		rate := roundPct(counts[i-1]-counts[i], counts[i-1])
		drops = append(drops, types.FunnelDropOff{
			From:    stageNames[i-1],
			To:      stageNames[i],
			RatePct: rate,
		})
		if rate > worstRate {
			worstRate = rate
			worst = i - 1
		}
	}

	suggestion := goodRetention
	if worstRate >= cfg.DropOffWarnPct && worst >= 0 {
		suggestion = remediation[worst]
	}

	return types.FunnelResult{Stages: stages, DropOffs: drops, Suggestion: suggestion}
}

func roundPct(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
