package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mamacheck/internal/config"
	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/llm"
	"github.com/abhisek/mamacheck/internal/metrics"
	"github.com/abhisek/mamacheck/internal/retrieval"
	"github.com/abhisek/mamacheck/internal/risk"
	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/session"
	"github.com/abhisek/mamacheck/internal/store"
)

// runtime is the wired application shared by the commands.
type runtime struct {
	cfg      config.Config
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	store    *store.Store
	provider llm.Provider
	service  *screening.Service
	sessions *session.Manager
}

// loadConfig reads configuration and builds the logger.
func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// openStore opens the LLM event store named by store.dsn, falling back to
// the default SQLite file.
func openStore(cfg config.Config) (*store.Store, error) {
	dsn := cfg.Store.DSN
	if dsn == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dsn = p
	} else if err := store.EnsureDir(dsn); err != nil {
		return nil, err
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// buildRuntime wires rules, retrieval, the optional LLM chain and sessions.
// With rulesOnly no provider is built and no store is opened. A provider
// that fails to initialize is logged and the rule engine serves alone.
func buildRuntime(ctx context.Context, rulesOnly bool) (*runtime, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	rules := risk.DefaultRuleSet()
	if cfg.Rules.Path != "" {
		rules, err = risk.LoadOverride(cfg.Rules.Path)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"path":    cfg.Rules.Path,
			"version": rules.Version(),
		}).Info("Loaded rule set override")
	}

	retriever := retrieval.New(knowledge.Default(),
		retrieval.WithTopK(cfg.Retrieval.TopK),
		retrieval.WithThreshold(cfg.Retrieval.Threshold),
	)

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	// Resolve auto discovery first so a run without keys never creates the
	// event database.
	llmCfg := cfg.LLM.Resolve()
	if cfg.LLM.Provider == llm.ProviderAuto && !llmCfg.Enabled() {
		logger.Info("No LLM API key found, using the rule engine only")
	}
	if !rulesOnly && llmCfg.Enabled() {
		rt.store, err = openStore(cfg)
		if err != nil {
			return nil, err
		}
		rt.provider, err = llm.NewProvider(ctx, llmCfg, rt.store.EventRepo(), logger)
		if err != nil {
			logger.WithError(err).Warn("LLM provider not configured, using the rule engine only")
		} else {
			logger.WithField("provider", rt.provider.Name()).Info("LLM provider ready")
		}
	}

	genCfg := screening.DefaultGeneratorConfig()
	genCfg.TopK = cfg.Retrieval.TopK

	rt.service = screening.NewService(risk.NewAssessor(rules), retriever,
		screening.WithLLM(rt.provider, genCfg),
		screening.WithMetrics(rt.metrics),
		screening.WithLogger(logger),
	)
	rt.sessions = session.NewManager(cfg.Session, rt.metrics, logger)
	return rt, nil
}

// providerName is the active provider, or "none".
func (rt *runtime) providerName() string {
	if rt.provider == nil {
		return llm.ProviderNone
	}
	return rt.provider.Name()
}

func (rt *runtime) Close() {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.WithError(err).Warn("closing store")
		}
	}
}
