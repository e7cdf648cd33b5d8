// Command guardian serves the Privacyx Guardian dashboard: wallet balance
// analysis with heuristic and AI privacy tips, plus a privacy chat assistant.
//
// Usage:
//
//	guardian --config guardian.yaml
//	guardian --setup --config guardian.yaml
//	guardian --rpc https://eth.llamarpc.com --listen :8080
//
// Environment variables (a .env file in the working directory is loaded first):
//
//	OPENAI_API_KEY  completion service key; AI tips and chat are disabled without it
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/privacyx/guardian/config"
	"github.com/privacyx/guardian/internal/clients"
	"github.com/privacyx/guardian/internal/domain"
	"github.com/privacyx/guardian/internal/metrics"
	"github.com/privacyx/guardian/internal/services/advisor"
	"github.com/privacyx/guardian/internal/services/balance"
	"github.com/privacyx/guardian/internal/services/chat"
	"github.com/privacyx/guardian/internal/services/orchestrator"
	"github.com/privacyx/guardian/internal/services/promptbuilder"
	"github.com/privacyx/guardian/internal/setup"
	"github.com/privacyx/guardian/internal/storage/reports"
	"github.com/privacyx/guardian/internal/web"
	"github.com/privacyx/guardian/pkg/retrier"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const (
	rpcConnectTimeout = 10 * time.Second
	rpcCallTimeout    = 15 * time.Second
	llmRetryDelay     = 2 * time.Second
)

func main() {
	// a missing .env is fine, the environment may already carry the key
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.RunSetup {
		if err := setup.RunTUI(cfg.Path); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("guardian stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	evm, err := clients.DialEVMClient(ctx, cfg.RPCURLs, rpcConnectTimeout, rpcCallTimeout)
	if err != nil {
		return err
	}
	defer evm.Close()

	if !cfg.Credential.Present() {
		logger.Warn("Completion API key is not set, AI tips and chat will show placeholders", zap.String("env", config.CredentialEnv))
	}

	llmClient := clients.NewOpenAICompatibleClient(
		cfg.LLM.APIURL,
		cfg.Credential.Value(),
		cfg.LLM.Model,
		clients.WithTemperature(cfg.LLM.Temperature),
		clients.WithRetrier(retrier.New(
			retrier.WithMaxRetries(cfg.LLM.MaxRetries),
			retrier.WithInitialInterval(llmRetryDelay),
			retrier.WithRetryIf(clients.IsRetryable),
		)),
	)

	m := metrics.New()

	analysis := orchestrator.NewOrchestrator(
		logger,
		balance.NewFetcher(evm, cfg.Native, cfg.Tokens),
		advisor.NewHeuristicAdvisor(cfg.Native.Symbol, cfg.PrivacyToken),
		advisor.NewAIAdvisor(logger, cfg.Credential, llmClient, promptbuilder.NewPromptBuilder(cfg.LLM.Bullets)),
		orchestrator.WithRecorder(m),
	)
	session := chat.NewSession(logger, llmClient, chat.WithRecorder(m))

	journalDir := cfg.JournalDir
	if journalDir == "" {
		journalDir, err = os.MkdirTemp("", "guardian-reports-")
		if err != nil {
			return errors.Wrap(err, "create report journal dir")
		}
		defer os.RemoveAll(journalDir)
	}
	store, err := reports.NewWALStore(journalDir)
	if err != nil {
		return err
	}
	defer store.Close()

	server := web.NewServer(cfg.ListenAddr, logger, analysis, session, store).WithMetrics(m.Handler())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return journalReports(ctx, logger, analysis, store, llmClient.Model())
	})
	g.Go(func() error {
		return server.Start(ctx)
	})

	logger.Info("Privacyx Guardian started",
		zap.String("listen", cfg.ListenAddr),
		zap.Strings("rpc", cfg.RPCURLs),
		zap.String("model", cfg.LLM.Model),
		zap.Int("tokens", len(cfg.Tokens)))

	return g.Wait()
}

// journalReports stores every completed analysis cycle for the dashboard stream.
func journalReports(ctx context.Context, logger *zap.Logger, analysis *orchestrator.Orchestrator, store *reports.WALStore, model string) error {
	updates := analysis.Subscribe()
	defer analysis.Unsubscribe(updates)

	for {
		select {
		case <-ctx.Done():
			return nil
		case state, open := <-updates:
			if !open {
				return nil
			}
			if state.Status != domain.StatusConnected || state.Phase != domain.PhaseReady {
				continue
			}
			if err := store.Save(domain.NewAnalysisReport(state, model)); err != nil {
				logger.Error("Failed to journal analysis report", zap.String("cycle", state.CycleID), zap.Error(err))
			}
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
