package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryanwahyu/safeweb/internal/application"
	appanalysis "github.com/bryanwahyu/safeweb/internal/application/analysis"
	appchecks "github.com/bryanwahyu/safeweb/internal/application/checks"
	apphistory "github.com/bryanwahyu/safeweb/internal/application/history"
	"github.com/bryanwahyu/safeweb/internal/config"
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/infra/ai"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/prompt"
	"github.com/bryanwahyu/safeweb/internal/infra/storage"
	"github.com/bryanwahyu/safeweb/pkg/logger"
)

const version = "safeweb v0.3.0"

// AnalyzerFactory builds the analysis provider from the loaded config.
type AnalyzerFactory func(ctx context.Context, cfg *config.Config) (analysis.Analyzer, error)

type rootOptions struct {
	v           *viper.Viper
	cfgFile     string
	verbose     bool
	asJSON      bool
	newAnalyzer AnalyzerFactory
}

// NewRootCommand builds the safeweb command tree. A nil factory uses the
// provider selected in config.
func NewRootCommand(newAnalyzer AnalyzerFactory) *cobra.Command {
	if newAnalyzer == nil {
		newAnalyzer = ai.New
	}
	o := &rootOptions{v: viper.New(), newAnalyzer: newAnalyzer}

	rootCmd := &cobra.Command{
		Use:   "safeweb",
		Short: "SafeWeb - AI-assisted risk checks for links, messages and files",
		Long: `SafeWeb asks an AI model whether a URL, a pasted message or an uploaded
file looks like phishing, a scam or malware, and keeps a local history of
every verdict.

The verdict is advisory. SafeWeb does not fetch pages or scan files itself.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "config.yaml", "config file")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&o.asJSON, "json", false, "print JSON instead of text")
	flags.String("provider", "", "analysis provider (gemini, openai, fake)")
	flags.String("model", "", "model name")
	flags.String("lang", "", "prompt language (pt-BR, en)")
	flags.String("backend", "", "history backend (file, memory, redis, minio, mysql, postgres)")
	flags.String("history-file", "", "history file for the file backend")

	for key, flag := range map[string]string{
		"ai.provider":      "provider",
		"ai.model":         "model",
		"ai.language":      "lang",
		"history.backend":  "backend",
		"history.filepath": "history-file",
	} {
		_ = o.v.BindPFlag(key, flags.Lookup(flag))
	}
	o.v.SetEnvPrefix("SAFEWEB")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
		newCheckCommand(o),
		newHistoryCommand(o),
		newStatsCommand(o),
	)
	return rootCmd
}

// loadConfig reads the config file and applies flag and SAFEWEB_* overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Read(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if v := o.v.GetString("ai.provider"); v != "" {
		cfg.AI.Provider = v
	}
	if v := o.v.GetString("ai.model"); v != "" {
		cfg.AI.Model = v
	}
	if v := o.v.GetString("ai.language"); v != "" {
		cfg.AI.Language = v
	}
	if v := o.v.GetString("history.backend"); v != "" {
		cfg.History.Backend = v
	}
	if v := o.v.GetString("history.filepath"); v != "" {
		cfg.History.FilePath = v
	}
	cfg.ResolveAPIKey()

	cfg.Logger.Level = "warn"
	if o.verbose {
		cfg.Logger.Level = "debug"
	}
	return cfg, nil
}

// app holds what one command invocation needs.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	backend *storage.Backend
	store   *apphistory.Store
	checks  *appchecks.Service
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing history backend")
	}
}

// open loads config and history. The analyzer is only built when withAnalyzer is set.
func (o *rootOptions) open(ctx context.Context, stderr io.Writer, withAnalyzer bool) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if withAnalyzer {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateHistory()
	}
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(cfg.Logger, stderr)

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, backend: backend}
	a.store = apphistory.NewStore(backend, application.SystemClock{}, log)
	a.store.Load(ctx)

	if withAnalyzer {
		analyzer, err := o.newAnalyzer(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.checks = &appchecks.Service{
			Builder:        appanalysis.NewBuilder(prompt.ParseLang(cfg.AI.Language)),
			Gateway:        appanalysis.NewGateway(analyzer, log),
			History:        a.store,
			MaxUploadBytes: cfg.Limits.MaxUploadBytes,
			Log:            log.WithComponent("checks"),
		}
	}
	return a, nil
}
