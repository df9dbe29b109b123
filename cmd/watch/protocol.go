package watch

import "time"

const (
	routeReport = "/"
	routeEvents = "/events"
)

const sseEventReport = "report"

// reportSnapshot is the payload published after every comparison.
type reportSnapshot struct {
	ID        int64          `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Findings  int            `json:"findings"`
	ByStatus  map[string]int `json:"byStatus"`
	Lines     []string       `json:"lines"`
	Error     string         `json:"error,omitempty"`
}
