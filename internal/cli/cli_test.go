package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/safeweb/internal/config"
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/domain/history"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/fake"
)

func run(t *testing.T, analyzer *fake.Analyzer, stdin string, args ...string) (string, error) {
	t.Helper()
	factory := func(ctx context.Context, cfg *config.Config) (analysis.Analyzer, error) {
		return analyzer, nil
	}
	cmd := NewRootCommand(factory)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_CheckHistoryStats(t *testing.T) {
	dir := t.TempDir()
	common := []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--provider", "fake",
		"--backend", "file",
		"--history-file", filepath.Join(dir, "history.json"),
	}
	analyzer := fake.NewAnalyzer()
	analyzer.Reply = `{"riskLevel":"MEDIUM","summary":"Suspicious","details":["new domain"],"recommendation":"Be careful"}`

	out, err := run(t, analyzer, "", append([]string{"check", "url", "example.com"}, common...)...)
	if err != nil {
		t.Fatalf("check url failed: %v", err)
	}
	if !strings.Contains(out, "Risk: MEDIUM") || !strings.Contains(out, "  - new domain") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	if _, err := run(t, analyzer, "ganhe dinheiro fácil", append([]string{"check", "text", "-"}, common...)...); err != nil {
		t.Fatalf("check text failed: %v", err)
	}
	if !strings.Contains(analyzer.Requests()[1].Prompt, "ganhe dinheiro fácil") {
		t.Error("Expected stdin text in prompt")
	}

	out, err = run(t, analyzer, "", append([]string{"history", "--json"}, common...)...)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	var items []history.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, out)
	}
	if len(items) != 2 || items[0].Type != history.TypeText || items[1].Input != "example.com" {
		t.Errorf("Unexpected history %+v", items)
	}

	out, err = run(t, analyzer, "", append([]string{"stats"}, common...)...)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "Total:  2") || !strings.Contains(out, "Medium: 2") {
		t.Errorf("Unexpected stats output:\n%s", out)
	}

	if _, err := run(t, analyzer, "", append([]string{"history", "clear"}, common...)...); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	out, _ = run(t, analyzer, "", append([]string{"history"}, common...)...)
	if !strings.Contains(out, "no history yet") {
		t.Errorf("Expected empty history, got:\n%s", out)
	}
}

func TestCLI_InvalidURL(t *testing.T) {
	dir := t.TempDir()
	analyzer := fake.NewAnalyzer()
	_, err := run(t, analyzer, "", "check", "url", "   ",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--provider", "fake", "--backend", "memory")
	if err == nil {
		t.Fatal("Expected error for blank URL")
	}
	if len(analyzer.Requests()) != 0 {
		t.Error("Invalid input must not reach the provider")
	}
}

func TestCLI_HistoryWithoutProviderKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	_, err := run(t, nil, "", "stats",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--provider", "gemini", "--backend", "memory")
	if err != nil {
		t.Errorf("stats must not need an analysis key: %v", err)
	}
}

func TestDetectMediaType(t *testing.T) {
	mt, _, err := detectMediaType("shot.PNG", strings.NewReader(""))
	if err != nil || mt != "image/png" {
		t.Errorf("Expected image/png, got %q, %v", mt, err)
	}

	mt, r, err := detectMediaType("noext", strings.NewReader("plain words"))
	if err != nil || !strings.HasPrefix(mt, "text/plain") {
		t.Errorf("Expected sniffed text/plain, got %q, %v", mt, err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)
	if buf.String() != "plain words" {
		t.Errorf("Sniffing consumed content: %q", buf.String())
	}
}

type deadlineRecorder struct {
	hadDeadline bool
}

func (a *deadlineRecorder) Generate(ctx context.Context, req analysis.Request) (string, error) {
	_, a.hadDeadline = ctx.Deadline()
	return `{"riskLevel":"LOW","summary":"ok","details":[],"recommendation":"none"}`, nil
}

func TestCLI_CheckIgnoresCallerDeadline(t *testing.T) {
	dir := t.TempDir()
	analyzer := &deadlineRecorder{}
	cmd := NewRootCommand(func(ctx context.Context, cfg *config.Config) (analysis.Analyzer, error) {
		return analyzer, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check", "text", "hello",
		"--config", filepath.Join(dir, "missing.yaml"),
		"--provider", "fake",
		"--backend", "memory",
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("check text failed: %v\n%s", err, out.String())
	}
	if analyzer.hadDeadline {
		t.Error("Analysis must not inherit a deadline")
	}
	if cmd.Flags().Lookup("timeout") != nil || cmd.PersistentFlags().Lookup("timeout") != nil {
		t.Error("Expected no --timeout flag")
	}
}
