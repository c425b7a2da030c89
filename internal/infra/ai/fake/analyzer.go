package fake

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
)

// Analyzer returns canned replies. With no Reply or Err set it answers a
// fixed LOW verdict, which makes it usable for offline runs.
// Analyzer is safe for concurrent use.
type Analyzer struct {
	Reply string
	Err   error

	mu       sync.Mutex
	requests []analysis.Request
}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Generate(ctx context.Context, req analysis.Request) (string, error) {
	a.mu.Lock()
	a.requests = append(a.requests, req)
	a.mu.Unlock()

	if a.Err != nil {
		return "", a.Err
	}
	if a.Reply != "" {
		return a.Reply, nil
	}
	b, err := json.Marshal(analysis.Result{
		RiskLevel:      analysis.RiskLow,
		Summary:        "offline analyzer: no external analysis was performed",
		Details:        []string{"provider is set to fake"},
		Recommendation: "configure a real provider for actual verdicts",
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Requests returns every request received so far.
func (a *Analyzer) Requests() []analysis.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]analysis.Request, len(a.requests))
	copy(out, a.requests)
	return out
}
