package extractor

import (
	"fmt"
	"reflect"
	"testing"

	"chat-insights-go/internal/config"
	"chat-insights-go/internal/types"
)

func userMsg(content string) types.RawMessage {
	return types.RawMessage{Role: types.RoleUser, Content: content}
}

func assistantMsg(content string) types.RawMessage {
	return types.RawMessage{Role: types.RoleAssistant, Content: content}
}

func testExtractor() *Extractor {
	return New(config.Default().Heuristics)
}

func TestExtract_Topics(t *testing.T) {
	e := testExtractor()

	sig := e.Extract(types.RawConversation{
		ID: "c1",
		Messages: []types.RawMessage{
			userMsg("hello, I have a bug in my python function"),
			assistantMsg("Can you paste the error message?"),
		},
	})

	want := []string{"coding", "greeting"}
	if !reflect.DeepEqual(sig.Topics, want) {
		t.Errorf("Topics = %v, want %v", sig.Topics, want)
	}

	for _, d := range sig.TopicDetails {
		if d.Confidence <= 0 || d.Confidence > 1 {
			t.Errorf("topic %s confidence = %v, want (0,1]", d.Topic, d.Confidence)
		}
		if len(d.Examples) == 0 {
			t.Errorf("topic %s has no examples", d.Topic)
		}
	}
}

func TestExtract_NoMatchesYieldsDefaults(t *testing.T) {
	e := testExtractor()

	sig := e.Extract(types.RawConversation{
		ID:       "c1",
		Messages: []types.RawMessage{userMsg("xyzzy qwerty")},
	})

	if len(sig.Topics) != 0 {
		t.Errorf("Topics = %v, want empty", sig.Topics)
	}
	if sig.Sentiment != types.SentimentNeutral {
		t.Errorf("Sentiment = %v, want neutral", sig.Sentiment)
	}
	if sig.Language != "unknown" {
		t.Errorf("Language = %v, want unknown", sig.Language)
	}
}

func TestExtract_Sentiment(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		name     string
		messages []types.RawMessage
		want     types.Sentiment
	}{
		{
			name:     "positive outweighs",
			messages: []types.RawMessage{userMsg("this is great, thanks, very helpful"), userMsg("bad day though")},
			want:     types.SentimentPositive,
		},
		{
			name:     "negative outweighs",
			messages: []types.RawMessage{userMsg("this is useless and wrong")},
			want:     types.SentimentNegative,
		},
		{
			name:     "balanced is neutral",
			messages: []types.RawMessage{userMsg("great but also wrong")},
			want:     types.SentimentNeutral,
		},
		{
			name:     "assistant words do not count",
			messages: []types.RawMessage{assistantMsg("great great great")},
			want:     types.SentimentUnknown,
		},
		{
			name:     "no user text is unknown",
			messages: []types.RawMessage{userMsg("   ")},
			want:     types.SentimentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(types.RawConversation{ID: "c", Messages: tt.messages}).Sentiment
			if got != tt.want {
				t.Errorf("Sentiment = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_LanguageFromLocale(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		locale string
		want   string
	}{
		{"en-US", "en"},
		{"pt_BR", "pt"},
		{"DE", "de"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		sig := e.Extract(types.RawConversation{ID: "c", Locale: tt.locale, Messages: []types.RawMessage{userMsg("hi")}})
		if sig.Language != tt.want {
			t.Errorf("locale %q: Language = %q, want %q", tt.locale, sig.Language, tt.want)
		}
	}
}

func TestExtract_ExampleCap(t *testing.T) {
	h := config.Default().Heuristics
	h.MaxTopicExamples = 2
	e := New(h)

	var msgs []types.RawMessage
	for i := 0; i < 6; i++ {
		msgs = append(msgs, userMsg(fmt.Sprintf("bug number %d in my code", i)))
	}
	sig := e.Extract(types.RawConversation{ID: "c", Messages: msgs})

	for _, d := range sig.TopicDetails {
		if len(d.Examples) > 2 {
			t.Errorf("topic %s has %d examples, want at most 2", d.Topic, len(d.Examples))
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := testExtractor()
	conv := types.RawConversation{
		ID:     "c1",
		Locale: "en-GB",
		Messages: []types.RawMessage{
			userMsg("hello, translate this essay and fix the code bug, thanks"),
			assistantMsg("Here is the translation and the corrected function."),
		},
	}

	first := e.Extract(conv)
	for i := 0; i < 20; i++ {
		if got := e.Extract(conv); !reflect.DeepEqual(got, first) {
			t.Fatalf("extraction not deterministic: run %d = %+v, first = %+v", i, got, first)
		}
	}
}
