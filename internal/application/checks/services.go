package checks

import (
	"context"
	"fmt"
	"io"

	appanalysis "github.com/bryanwahyu/safeweb/internal/application/analysis"
	"github.com/bryanwahyu/safeweb/internal/application/intake"
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/domain/history"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

// Gateway is the analysis choke point used by the service.
type Gateway interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// HistoryRecorder receives successful analyses.
type HistoryRecorder interface {
	Append(ctx context.Context, typ history.Type, input string, result analysis.Result) (history.Item, error)
}

// Service runs one submission per call: intake checks, request building,
// the gateway call and, only on success, the history append.
// Service is safe for concurrent use; submissions share nothing except the
// history recorder.
type Service struct {
	Builder        appanalysis.Builder
	Gateway        Gateway
	History        HistoryRecorder
	MaxUploadBytes int64
	Log            *logger.Logger
}

// Outcome of a successful submission. Item is nil when the analysis
// succeeded but could not be recorded.
type Outcome struct {
	Result analysis.Result `json:"result"`
	Item   *history.Item   `json:"item,omitempty"`
}

// CheckURL normalises and validates raw, analyses the normalised URL and
// records the user's original input.
func (s *Service) CheckURL(ctx context.Context, raw string) (Outcome, error) {
	normalized, err := intake.NormalizeURL(raw)
	if err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, s.Builder.URLRequest(normalized), history.TypeURL, raw)
}

// CheckText analyses pasted text. History keeps a truncated excerpt.
func (s *Service) CheckText(ctx context.Context, text string) (Outcome, error) {
	if err := intake.ValidateText(text); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, s.Builder.TextRequest(text), history.TypeText, text)
}

// CheckFile reads the whole file before calling the gateway. Only accepted
// media types reach the request builder.
func (s *Service) CheckFile(ctx context.Context, name, mediaType string, r io.Reader) (Outcome, error) {
	mt, err := intake.ValidateMediaType(mediaType)
	if err != nil {
		return Outcome{}, err
	}

	max := s.MaxUploadBytes
	if max <= 0 {
		max = intake.DefaultMaxUploadBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		s.logger().Error().Err(err).Str("file", name).Msg("failed to read uploaded file")
		return Outcome{}, fmt.Errorf("%w: file could not be read", analysis.ErrInvalidInput)
	}
	if err := intake.ValidateFileSize(int64(len(data)), max); err != nil {
		return Outcome{}, err
	}

	req := s.Builder.FileRequest(data, mt, intake.IsImageMediaType(mt))
	return s.run(ctx, req, history.TypeFile, intake.SanitizeString(name))
}

func (s *Service) run(ctx context.Context, req analysis.Request, typ history.Type, input string) (Outcome, error) {
	res, err := s.Gateway.Analyze(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	item, err := s.History.Append(ctx, typ, input, res)
	if err != nil {
		// the analysis itself succeeded; surface it even if it could not be recorded
		s.logger().Error().Err(err).Str("type", string(typ)).Msg("failed to record analysis in history")
		return Outcome{Result: res}, nil
	}
	return Outcome{Result: res, Item: &item}, nil
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}
