package eventmodels

import "github.com/google/uuid"

const (
	ScanProgressTopic  = "scan.progress"
	ScanCompletedTopic = "scan.completed"
)

// ScanProgressEvent is published after each ticker of a scan finishes.
type ScanProgressEvent struct {
	ScanID        uuid.UUID   `json:"scan_id"`
	Ticker        StockSymbol `json:"ticker"`
	Opportunities int         `json:"opportunities"`
	Accepted      int         `json:"accepted"`
	Rejected      int         `json:"rejected"`
	Error         string      `json:"error,omitempty"`
	Completed     int         `json:"completed"`
	Total         int         `json:"total"`
}

type Publisher interface {
	Publish(topic string, event interface{})
}
