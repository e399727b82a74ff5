// Package engine runs the full evaluation pipeline: signal extraction,
// classification, aggregation, insight generation and funnel analysis, fanned
// in to one snapshot per run.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"chat-insights-go/internal/actionable"
	"chat-insights-go/internal/aggregator"
	"chat-insights-go/internal/classifier"
	"chat-insights-go/internal/config"
	"chat-insights-go/internal/extractor"
	"chat-insights-go/internal/funnel"
	"chat-insights-go/internal/logger"
	"chat-insights-go/internal/trends"
	"chat-insights-go/internal/types"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Engine struct {
	cfg        *config.Config
	log        *logger.Logger
	extractor  *extractor.Extractor
	classifier *classifier.Classifier
}

func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:        cfg,
		log:        logger.New(),
		extractor:  extractor.New(cfg.Heuristics),
		classifier: classifier.New(cfg.Heuristics),
	}
}

// Evaluate classifies a batch of raw conversations, folds in the usage
// counters and returns one snapshot. date "" produces the all-time
// aggregate; a rerun for the same date yields byte-identical output except
// generatedAt. Persisting the snapshot is the caller's job.
func (e *Engine) Evaluate(ctx context.Context, convs []types.RawConversation, counters types.UsageCounters, date string, prior *types.Snapshot) (*types.Snapshot, error) {
	if date != "" && !dateRe.MatchString(date) {
		return nil, fmt.Errorf("invalid snapshot date %q, want YYYY-MM-DD", date)
	}

	log := e.log.WithComponent("engine").WithField("date", date).WithField("sample_size", len(convs))

	classified, skipped, err := e.classifyAll(ctx, convs)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.WithField("skipped", skipped).Warn("malformed conversations excluded from batch")
	}

	metrics := aggregator.Aggregate(classified, counters, e.cfg.Heuristics)
	insights, items := actionable.Generate(metrics, e.cfg.Heuristics.Insights)
	quality := trends.QualityScore(metrics.AI, insights)

	if prior != nil {
		insights = append(insights, priorContext(metrics.AI, prior))
	}

	snap := &types.Snapshot{
		ID:                    snapshotID(date),
		Date:                  date,
		GeneratedAt:           time.Now().UTC(),
		SampleSize:            len(convs),
		ConversationsAnalyzed: len(classified),
		SkippedConversations:  skipped,
		UserMetrics:           metrics.User,
		AIMetrics:             metrics.AI,
		Insights:              insights,
		ActionItems:           items,
		Funnel:                funnel.Analyze(metrics.AI.Depth, e.cfg.Heuristics.Funnel),
		QualityScore:          quality,
	}

	log.WithField("conversations_analyzed", snap.ConversationsAnalyzed).
		WithField("quality_score", snap.QualityScore).
		Info("evaluation complete")
	return snap, nil
}

// classifyAll fans the batch out over a bounded worker pool. Each
// conversation is independent, so the only coordination is the indexed
// result slice; input order is preserved in the output.
func (e *Engine) classifyAll(ctx context.Context, convs []types.RawConversation) ([]types.Conversation, int, error) {
	results := make([]*types.Conversation, len(convs))

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Heuristics.Workers)
	for i := range convs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rc := convs[i]
			if err := validate(rc); err != nil {
				e.log.WithComponent("engine").WithField("conversation_id", rc.ID).
					WithError(err).Warn("skipping malformed conversation")
				return nil
			}
			sig := e.extractor.Extract(rc)
			outcome, err := e.classifier.Classify(rc, sig)
			if err != nil {
				e.log.WithComponent("engine").WithField("conversation_id", rc.ID).
					WithError(err).Warn("skipping unclassifiable conversation")
				return nil
			}
			results[i] = buildConversation(rc, sig, outcome, e.classifier)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	classified := make([]types.Conversation, 0, len(results))
	skipped := 0
	for _, r := range results {
		if r == nil {
			skipped++
			continue
		}
		classified = append(classified, *r)
	}
	return classified, skipped, nil
}

func validate(rc types.RawConversation) error {
	if rc.ID == "" {
		return fmt.Errorf("missing conversation id")
	}
	if len(rc.Messages) == 0 {
		return fmt.Errorf("conversation has no messages")
	}
	for i, m := range rc.Messages {
		switch m.Role {
		case types.RoleUser, types.RoleAssistant, types.RoleSystem:
		default:
			return fmt.Errorf("message %d has unknown role %q", i, m.Role)
		}
	}
	return nil
}

func buildConversation(rc types.RawConversation, sig extractor.Signals, outcome types.ConversationOutcome, cl *classifier.Classifier) *types.Conversation {
	var lastAt *time.Time
	for i := len(rc.Messages) - 1; i >= 0; i-- {
		if rc.Messages[i].Timestamp != nil {
			lastAt = rc.Messages[i].Timestamp
			break
		}
	}
	return &types.Conversation{
		ID:              rc.ID,
		UserID:          rc.UserID,
		Messages:        rc.Messages,
		CreatedAt:       rc.CreatedAt,
		LastMessageAt:   lastAt,
		Language:        sig.Language,
		Topics:          sig.Topics,
		TopicDetails:    sig.TopicDetails,
		Success:         outcome,
		Sentiment:       sig.Sentiment,
		EngagementScore: cl.EngagementScore(rc, sig, outcome.Indicators),
	}
}

// priorContext emits a neutral trend insight when the caller supplies the
// previous period's snapshot. It is appended after the quality score is
// fixed so a rerun with and without a prior differs only in this entry.
func priorContext(ai types.AIMetrics, prior *types.Snapshot) types.Insight {
	delta := ai.TotalConversations - prior.ConversationsAnalyzed
	return types.Insight{
		Type:     types.InsightNeutral,
		Category: "trend",
		Finding:  fmt.Sprintf("analyzed %d conversations vs %d in the previous period (%+d)", ai.TotalConversations, prior.ConversationsAnalyzed, delta),
	}
}

func snapshotID(date string) string {
	if date == "" {
		return "snapshot-all-time"
	}
	return "snapshot-" + date
}
