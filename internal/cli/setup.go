package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"intentbot/internal/catalog"
	"intentbot/internal/config"
	"intentbot/internal/domain"
	"intentbot/internal/embedding/tfidf"
	"intentbot/internal/history"
	"intentbot/internal/history/memory"
	"intentbot/internal/history/redis"
	"intentbot/internal/logger"
	"intentbot/internal/preprocess"
	"intentbot/internal/resolver"
	"intentbot/internal/service"
	"intentbot/internal/similarity"
	"intentbot/internal/synonyms"
)

const connectTimeout = 5 * time.Second

// historyBackend is the configured history.type once setupAssistant has run.
var historyBackend string

// setupAssistant loads configuration and assembles the engine unless a
// command does not need it or one was injected already.
func setupAssistant(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd || assistantService != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// Console logging would draw over the chat window.
	if isInteractive(cmd) && (cfg.Log.Output == "" || cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout") {
		cfg.Log.Output = "file"
	}
	log, err := logger.Init(cfg.Log, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	assistant, closers, err := buildAssistant(ctx, cfg, log)
	if err != nil {
		cancel()
		for _, c := range closers {
			_ = c()
		}
		return err
	}
	assistantService = assistant
	historyBackend = strings.ToLower(cfg.History.Type)
	if historyBackend == "" {
		historyBackend = "memory"
	}
	shutdown = func() {
		cancel()
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("shutdown")
			}
		}
	}
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == chatCmd
}

func loadConfig() (*config.AppConfig, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// buildAssistant assembles the engine described by cfg and loads its catalog.
// The returned closers must run on shutdown.
func buildAssistant(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*service.Assistant, []func() error, error) {
	var lookup domain.SynonymLookup
	if cfg.Synonyms.Path != "" {
		th, err := synonyms.Load(cfg.Synonyms.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load synonyms: %w", err)
		}
		lookup = th.Func()
	}
	tokenizer := preprocess.NewTokenizer(lookup, cfg.Synonyms.Limit)
	embedder := tfidf.NewEmbedder(tokenizer, log.With().Str("component", "tfidf").Logger())

	scorer := similarity.NewScorer(similarity.Options{
		TieBreak:      similarity.TieBreak(strings.ToLower(cfg.Matcher.TieBreak)),
		MinConfidence: cfg.Matcher.MinConfidence,
	}, log.With().Str("component", "scorer").Logger())

	ropts := resolver.Options{
		DefaultWord:     cfg.Responder.DefaultWord,
		FallbackMessage: cfg.Responder.FallbackMessage,
	}
	if cfg.Responder.Seed != 0 {
		ropts.Rand = resolver.NewSeeded(cfg.Responder.Seed)
	}
	res := resolver.New(ropts, log.With().Str("component", "resolver").Logger())

	var closers []func() error
	store, err := openStore(ctx, cfg.History)
	if err != nil {
		return nil, nil, err
	}
	if c, ok := store.(interface{ Close() error }); ok {
		closers = append(closers, c.Close)
	}

	assistant := service.NewAssistant(embedder, scorer, res, store, log.With().Str("component", "assistant").Logger())

	registry := catalog.NewRegistry()
	load := func() (*catalog.Catalog, error) {
		if cfg.Catalog.Path == "" {
			return catalog.Default(registry)
		}
		return catalog.Load(cfg.Catalog.Path, registry)
	}
	c, err := load()
	if err != nil {
		return nil, closers, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := assistant.LoadCatalog(c); err != nil {
		return nil, closers, err
	}

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		w, err := catalog.NewWatcher(cfg.Catalog.Path, log.With().Str("component", "watcher").Logger())
		if err != nil {
			return nil, closers, fmt.Errorf("failed to watch catalog: %w", err)
		}
		events, err := w.Watch(ctx)
		if err != nil {
			_ = w.Stop()
			return nil, closers, fmt.Errorf("failed to watch catalog: %w", err)
		}
		closers = append(closers, w.Stop)
		go assistant.WatchCatalog(ctx, events, load)
	}
	return assistant, closers, nil
}

func openStore(ctx context.Context, cfg config.HistoryConfig) (history.Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory", "":
		return memory.NewStorage(), nil
	case "redis":
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis history config missing")
		}
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return redis.Open(cctx, redis.Config{
			URL:       cfg.Redis.URL,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       time.Duration(cfg.Redis.TTLSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown history store: %s", cfg.Type)
	}
}
