package reading

import (
	"strings"
	"time"
)

// Span pairs a bucket width with a lookback window for aggregation queries.
// The four spans are a fixed contract with the display services; changing a
// pair changes every chart that renders it.
type Span struct {
	Keyword  string
	Bucket   time.Duration
	Lookback time.Duration
}

// The supported aggregation spans.
var (
	SpanHour  = Span{Keyword: "hour", Bucket: time.Minute, Lookback: time.Hour}
	SpanDay   = Span{Keyword: "day", Bucket: 30 * time.Minute, Lookback: 24 * time.Hour}
	SpanWeek  = Span{Keyword: "week", Bucket: 3 * time.Hour, Lookback: 7 * 24 * time.Hour}
	SpanMonth = Span{Keyword: "month", Bucket: 6 * time.Hour, Lookback: 30 * 24 * time.Hour}
)

// ParseSpan maps a duration keyword to its Span.
// Unrecognised keywords (including the empty string) fall back to hour.
func ParseSpan(keyword string) Span {
	switch strings.ToLower(keyword) {
	case "day":
		return SpanDay
	case "week":
		return SpanWeek
	case "month":
		return SpanMonth
	default:
		return SpanHour
	}
}

// Title returns the human label used by display services.
func (s Span) Title() string {
	switch s.Keyword {
	case "day":
		return "Today"
	case "week":
		return "Last week"
	case "month":
		return "Last month"
	default:
		return "Last hour"
	}
}
