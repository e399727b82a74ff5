package actionable

import (
	"testing"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/types"
)

func thresholds() config.InsightThresholds {
	return config.Default().Heuristics.Insights
}

// healthyMetrics trips no rule.
func healthyMetrics() types.AggregateMetrics {
	return types.AggregateMetrics{
		User: types.UserMetrics{TotalUsers: 100, ActiveUsers24h: 40},
		AI: types.AIMetrics{
			TotalConversations:     100,
			TotalAssistantMessages: 200,
			Depth:                  types.DepthBuckets{Shallow: 20, Moderate: 50, Deep: 30},
			ResponseQuality:        types.ResponseQualityBuckets{TooShort: 10, Appropriate: 180, TooLong: 10},
			Success:                types.SuccessBuckets{Successful: 70, Partial: 20, Failed: 5, Abandoned: 5},
		},
	}
}

func negatives(insights []types.Insight) int {
	n := 0
	for _, i := range insights {
		if i.Type == types.InsightNegative {
			n++
		}
	}
	return n
}

func TestGenerate_AllHealthy(t *testing.T) {
	insights, items := Generate(healthyMetrics(), thresholds())

	if negatives(insights) != 0 {
		t.Errorf("negative insights = %d, want 0", negatives(insights))
	}
	if len(insights) != 1 || insights[0].Type != types.InsightPositive {
		t.Errorf("insights = %+v, want single positive", insights)
	}
	if len(items) != 0 {
		t.Errorf("action items = %d, want 0", len(items))
	}
}

func TestGenerate_InsufficientData(t *testing.T) {
	insights, items := Generate(types.AggregateMetrics{}, thresholds())

	if len(insights) != 1 {
		t.Fatalf("insights = %d, want exactly 1", len(insights))
	}
	if insights[0].Type != types.InsightNeutral || insights[0].Category != "data" {
		t.Errorf("insight = %+v, want neutral/data", insights[0])
	}
	if len(items) != 0 {
		t.Errorf("action items = %d, want 0", len(items))
	}
}

func TestGenerate_RuleRows(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(m *types.AggregateMetrics)
		wantCategory string
		wantPriority types.Priority
	}{
		{
			name: "too short responses over 20%",
			mutate: func(m *types.AggregateMetrics) {
				m.AI.ResponseQuality = types.ResponseQualityBuckets{TooShort: 60, Appropriate: 140}
			},
			wantCategory: "quality",
			wantPriority: types.PriorityHigh,
		},
		{
			name: "too short responses over 40% escalates to critical",
			mutate: func(m *types.AggregateMetrics) {
				m.AI.ResponseQuality = types.ResponseQualityBuckets{TooShort: 90, Appropriate: 110}
			},
			wantCategory: "quality",
			wantPriority: types.PriorityCritical,
		},
		{
			name: "shallow conversations over 60%",
			mutate: func(m *types.AggregateMetrics) {
				m.AI.Depth = types.DepthBuckets{Shallow: 70, Moderate: 20, Deep: 10}
			},
			wantCategory: "engagement",
			wantPriority: types.PriorityHigh,
		},
		{
			name: "active users under 5%",
			mutate: func(m *types.AggregateMetrics) {
				m.User.ActiveUsers24h = 2
			},
			wantCategory: "retention",
			wantPriority: types.PriorityHigh,
		},
		{
			name: "abandoned over 25%",
			mutate: func(m *types.AggregateMetrics) {
				m.AI.Success = types.SuccessBuckets{Successful: 40, Abandoned: 60}
			},
			wantCategory: "engagement",
			wantPriority: types.PriorityHigh,
		},
		{
			name: "failed over 15%",
			mutate: func(m *types.AggregateMetrics) {
				m.AI.Success = types.SuccessBuckets{Successful: 70, Failed: 30}
			},
			wantCategory: "quality",
			wantPriority: types.PriorityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := healthyMetrics()
			tt.mutate(&m)

			insights, items := Generate(m, thresholds())
			if negatives(insights) != 1 {
				t.Fatalf("negative insights = %d, want 1 (%+v)", negatives(insights), insights)
			}
			if len(items) != 1 {
				t.Fatalf("action items = %d, want 1", len(items))
			}
			item := items[0]
			if item.Priority != tt.wantPriority {
				t.Errorf("Priority = %v, want %v", item.Priority, tt.wantPriority)
			}
			ei := effortImpact[tt.wantCategory]
			if item.Effort != ei.effort || item.Impact != ei.impact {
				t.Errorf("effort/impact = %v/%v, want %v/%v", item.Effort, item.Impact, ei.effort, ei.impact)
			}
			if item.Status != types.StatusPending {
				t.Errorf("Status = %v, want pending", item.Status)
			}
		})
	}
}

func TestGenerate_RankingPutsCriticalAndQuickWinsFirst(t *testing.T) {
	m := healthyMetrics()
	// trip every rule: critical quality first, then the quick-win quality
	// item ahead of the medium/significant effort ones at equal priority
	m.AI.ResponseQuality = types.ResponseQualityBuckets{TooShort: 90, Appropriate: 110}
	m.AI.Depth = types.DepthBuckets{Shallow: 70, Moderate: 20, Deep: 10}
	m.User.ActiveUsers24h = 2
	m.AI.Success = types.SuccessBuckets{Failed: 30, Abandoned: 40, Successful: 30}

	insights, items := Generate(m, thresholds())
	if negatives(insights) != 5 {
		t.Fatalf("negative insights = %d, want 5", negatives(insights))
	}
	if len(items) != 5 {
		t.Fatalf("action items = %d, want 5", len(items))
	}

	if items[0].Priority != types.PriorityCritical {
		t.Errorf("items[0].Priority = %v, want critical", items[0].Priority)
	}
	// second slot: the remaining quality item (quick effort, high impact)
	if items[1].Effort != types.EffortQuick || items[1].Impact != types.ImpactHigh {
		t.Errorf("items[1] = %v/%v, want quick/high", items[1].Effort, items[1].Impact)
	}
	for i := 1; i < len(items); i++ {
		if QuickWinScore(items[i]) > QuickWinScore(items[i-1]) && items[i].Priority == items[i-1].Priority {
			t.Errorf("items not sorted by quick-win score at %d", i)
		}
	}
}

func TestGenerate_SortStability(t *testing.T) {
	m := healthyMetrics()
	// the shallow and abandoned rules share category, priority, effort and
	// impact; their relative order must match rule-table insertion order
	m.AI.Depth = types.DepthBuckets{Shallow: 70, Moderate: 20, Deep: 10}
	m.AI.Success = types.SuccessBuckets{Successful: 30, Abandoned: 70}

	_, items := Generate(m, thresholds())
	if len(items) != 2 {
		t.Fatalf("action items = %d, want 2", len(items))
	}
	if items[0].ID != "act-01-engagement" || items[1].ID != "act-02-engagement" {
		t.Errorf("order = [%s %s], want insertion order preserved", items[0].ID, items[1].ID)
	}
}

func TestQuickWins(t *testing.T) {
	items := []types.ActionItem{
		{ID: "a", Effort: types.EffortQuick, Impact: types.ImpactHigh},
		{ID: "b", Effort: types.EffortMedium, Impact: types.ImpactHigh},
		{ID: "c", Effort: types.EffortQuick, Impact: types.ImpactLow},
	}
	wins := QuickWins(items)
	if len(wins) != 1 || wins[0].ID != "a" {
		t.Errorf("QuickWins = %+v, want only item a", wins)
	}
}
