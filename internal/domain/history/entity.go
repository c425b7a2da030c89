package history

import (
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
)

// Key is the fixed name of the durable slot holding the history log.
const Key = "safeweb_history"

// MaxInputRunes is how much of a Text submission is kept in history.
const MaxInputRunes = 100

// TruncationMarker is appended to inputs cut at MaxInputRunes.
const TruncationMarker = "..."

// ItemID identifier type
type ItemID string

// Type enum: the modality that produced an item
type Type string

const (
	TypeURL  Type = "URL"
	TypeFile Type = "File"
	TypeText Type = "Text"
)

// Valid reports whether t is one of the known modalities.
func (t Type) Valid() bool {
	switch t {
	case TypeURL, TypeFile, TypeText:
		return true
	}
	return false
}

// TypeOf maps a request modality to the history type recorded for it.
func TypeOf(m analysis.Modality) Type {
	return Type(m)
}

// Item is one completed analysis. Timestamp is an RFC 3339 instant with
// nanosecond precision in UTC, assigned once at creation.
type Item struct {
	ID        ItemID          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Type      Type            `json:"type"`
	Input     string          `json:"input"`
	Result    analysis.Result `json:"result"`
}

// Stats aggregates a history by risk level.
type Stats struct {
	Total  int `json:"total"`
	Low    int `json:"lowCount"`
	Medium int `json:"mediumCount"`
	High   int `json:"highCount"`
}

// ComputeStats derives aggregate counts. Low+Medium+High always equals Total
// for histories built through the store, since every stored result passed
// validation.
func ComputeStats(items []Item) Stats {
	s := Stats{Total: len(items)}
	for _, it := range items {
		switch it.Result.RiskLevel {
		case analysis.RiskLow:
			s.Low++
		case analysis.RiskMedium:
			s.Medium++
		case analysis.RiskHigh:
			s.High++
		}
	}
	return s
}
