package analysis

import (
	"context"
	"strings"

	domain "github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

// excerptLen bounds how much of a rejected reply is logged.
const excerptLen = 256

// Gateway is the single choke point to the external analyzer. It validates
// every reply and folds all failures into the domain error taxonomy. It does
// not retry, cache or touch history.
type Gateway struct {
	analyzer domain.Analyzer
	log      *logger.Logger
}

func NewGateway(analyzer domain.Analyzer, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	return &Gateway{analyzer: analyzer, log: log.WithComponent("analysis-gateway")}
}

// Analyze sends req and returns the validated Result. Errors wrap either
// ErrAnalysisUnavailable or ErrInvalidResponseShape; the provider's own
// error is logged and never part of the returned error.
func (g *Gateway) Analyze(ctx context.Context, req domain.Request) (domain.Result, error) {
	raw, err := g.analyzer.Generate(ctx, req)
	if err != nil {
		g.log.Error().Err(err).
			Str("modality", string(req.Modality)).
			Bool("attachment", req.HasAttachment()).
			Msg("analyzer call failed")
		return domain.Result{}, domain.ErrAnalysisUnavailable
	}

	if strings.TrimSpace(raw) == "" {
		g.log.Error().Str("modality", string(req.Modality)).Msg("analyzer returned empty reply")
		return domain.Result{}, domain.ErrAnalysisUnavailable
	}

	res, err := domain.Validate([]byte(raw))
	if err != nil {
		g.log.Warn().Err(err).
			Str("modality", string(req.Modality)).
			Str("reply_excerpt", excerpt(raw)).
			Msg("analyzer reply does not match schema")
		return domain.Result{}, domain.ErrInvalidResponseShape
	}

	g.log.Debug().
		Str("modality", string(req.Modality)).
		Str("risk_level", string(res.RiskLevel)).
		Msg("analysis completed")
	return res, nil
}

func excerpt(s string) string {
	if len(s) <= excerptLen {
		return s
	}
	return s[:excerptLen] + "..."
}
