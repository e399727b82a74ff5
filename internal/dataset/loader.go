package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"chat-insights-go/internal/types"
)

// timestamp layouts seen in transcript exports, tried in order.
var tsLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Load reads a transcript export (one message per row) and groups rows into
// RawConversation batches. Column positions are detected from the header by
// heuristics; rows missing a conversation id or content are skipped quietly.
func Load(path string) ([]types.RawConversation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	convIdx, userIdx, roleIdx, contentIdx, tsIdx, localeIdx := -1, -1, -1, -1, -1, -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case convIdx == -1 && (strings.Contains(l, "conversation") || strings.Contains(l, "chat id") || strings.Contains(l, "session")):
			convIdx = i
		case userIdx == -1 && strings.Contains(l, "user"):
			userIdx = i
		case roleIdx == -1 && (strings.Contains(l, "role") || strings.Contains(l, "sender")):
			roleIdx = i
		case contentIdx == -1 && (strings.Contains(l, "content") || strings.Contains(l, "message") || strings.Contains(l, "text")):
			contentIdx = i
		case tsIdx == -1 && (strings.Contains(l, "time") || strings.Contains(l, "date")):
			tsIdx = i
		case localeIdx == -1 && (strings.Contains(l, "locale") || strings.Contains(l, "lang")):
			localeIdx = i
		}
	}
	if convIdx == -1 || contentIdx == -1 {
		return nil, fmt.Errorf("could not detect conversation/content columns in header")
	}

	order := []string{}
	byID := map[string]*types.RawConversation{}

	for i, r := range rows {
		if i == 0 {
			continue
		}
		id := cell(r, convIdx)
		content := cell(r, contentIdx)
		if id == "" || content == "" {
			continue
		}

		conv, ok := byID[id]
		if !ok {
			conv = &types.RawConversation{
				ID:     id,
				UserID: cell(r, userIdx),
				Locale: cell(r, localeIdx),
			}
			byID[id] = conv
			order = append(order, id)
		}

		msg := types.RawMessage{
			Role:    parseRole(cell(r, roleIdx)),
			Content: content,
		}
		if ts := parseTimestamp(cell(r, tsIdx)); ts != nil {
			msg.Timestamp = ts
			if conv.CreatedAt == nil {
				conv.CreatedAt = ts
			}
		}
		conv.Messages = append(conv.Messages, msg)
	}

	out := make([]types.RawConversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseRole(s string) types.Role {
	switch strings.ToLower(s) {
	case "assistant", "ai", "bot", "agent":
		return types.RoleAssistant
	case "system":
		return types.RoleSystem
	default:
		// exports without a sender column label everything as the user side
		return types.RoleUser
	}
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range tsLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
