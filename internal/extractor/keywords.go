package extractor

import (
	"sort"
	"strings"

	"chat-insights-go/internal/types"
)

// defaultTopicKeywords maps topic labels to the lowercase phrases that vote
// for them. Confidence for a message is matched phrases / table size for the
// topic, so bigger tables demand more evidence.
var defaultTopicKeywords = map[string][]string{
	"greeting": {"hello", "hi there", "good morning", "good evening", "hey", "how are you"},
	"coding": {"code", "function", "bug", "compile", "python", "javascript", "golang", "error message", "stack trace", "api"},
	"writing": {"essay", "write a", "rewrite", "summarize", "draft", "proofread", "grammar"},
	"math": {"calculate", "equation", "solve", "percentage", "algebra", "derivative"},
	"translation": {"translate", "in spanish", "in french", "in german", "meaning of", "how do you say"},
	"images": {"image", "picture", "draw", "generate an image", "photo", "illustration"},
	"voice": {"voice", "speak", "pronounce", "say it", "read aloud"},
	"support": {"not working", "doesn't work", "help me", "problem with", "can't", "how do i", "fix"},
	"smalltalk": {"joke", "weather", "your name", "who are you", "tell me about yourself"},
}

var positiveWords = []string{
	"thanks", "thank you", "great", "awesome", "perfect", "helpful", "love",
	"excellent", "amazing", "nice", "good job", "brilliant", "works now",
}

var negativeWords = []string{
	"bad", "wrong", "useless", "terrible", "hate", "frustrated", "annoying",
	"broken", "stupid", "worst", "not helpful", "doesn't help", "awful",
}

// gratitudePhrases feed the expressed-thanks indicator downstream.
var gratitudePhrases = []string{
	"thank", "thanks", "thx", "appreciate", "grateful", "you're the best",
	"lifesaver", "cheers",
}

// KeywordTopicMatcher is the default TopicMatcher: case-insensitive
// substring matching against fixed phrase tables, deterministic output
// ordered by topic name.
type KeywordTopicMatcher struct {
	keywords     map[string][]string
	maxExamples  int
	snippetChars int
}

func NewKeywordTopicMatcher(keywords map[string][]string, maxExamples, snippetChars int) *KeywordTopicMatcher {
	if maxExamples <= 0 {
		maxExamples = 5
	}
	if snippetChars <= 0 {
		snippetChars = 80
	}
	return &KeywordTopicMatcher{keywords: keywords, maxExamples: maxExamples, snippetChars: snippetChars}
}

func (m *KeywordTopicMatcher) Match(messages []types.RawMessage) []types.TopicDetail {
	found := map[string]*types.TopicDetail{}

	for _, msg := range messages {
		if msg.Role == types.RoleSystem {
			continue
		}
		lower := strings.ToLower(msg.Content)
		if lower == "" {
			continue
		}
		for topic, phrases := range m.keywords {
			hits := 0
			for _, p := range phrases {
				if strings.Contains(lower, p) {
					hits++
				}
			}
			if hits == 0 {
				continue
			}
			conf := float64(hits) / float64(len(phrases))
			if conf > 1 {
				conf = 1
			}
			d, ok := found[topic]
			if !ok {
				d = &types.TopicDetail{Topic: topic}
				found[topic] = d
			}
			// aggregate confidence is the max seen across messages
			if conf > d.Confidence {
				d.Confidence = conf
			}
			if len(d.Examples) < m.maxExamples {
				d.Examples = append(d.Examples, snippet(msg.Content, m.snippetChars))
			}
		}
	}

	out := make([]types.TopicDetail, 0, len(found))
	for _, d := range found {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// WordCountSentimentScorer counts positive and negative word hits across
// user messages and takes the majority side.
type WordCountSentimentScorer struct {
	positive []string
	negative []string
}

func NewWordCountSentimentScorer(positive, negative []string) *WordCountSentimentScorer {
	return &WordCountSentimentScorer{positive: positive, negative: negative}
}

func (s *WordCountSentimentScorer) Score(messages []types.RawMessage) types.Sentiment {
	pos, neg := 0, 0
	sawUserText := false
	for _, msg := range messages {
		if msg.Role != types.RoleUser {
			continue
		}
		lower := strings.ToLower(msg.Content)
		if strings.TrimSpace(lower) == "" {
			continue
		}
		sawUserText = true
		for _, w := range s.positive {
			if strings.Contains(lower, w) {
				pos++
			}
		}
		for _, w := range s.negative {
			if strings.Contains(lower, w) {
				neg++
			}
		}
	}
	switch {
	case !sawUserText:
		return types.SentimentUnknown
	case pos > neg:
		return types.SentimentPositive
	case neg > pos:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}

// GratitudeMatcher is the default PhraseMatcher for thank-you detection.
type GratitudeMatcher struct {
	phrases []string
}

func NewGratitudeMatcher() *GratitudeMatcher {
	return &GratitudeMatcher{phrases: gratitudePhrases}
}

func (g *GratitudeMatcher) MatchesText(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range g.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
