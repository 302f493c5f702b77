package report

import (
	"encoding/json"
	"time"
)

// Report is a stored compliance-scan result. The payload is opaque to this
// service: the scanner builds it, we only persist and return it.
type Report struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	Target    string          `json:"target"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type ReportInput struct {
	Title   string          `json:"title"`
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}
