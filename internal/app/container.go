package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/doeshing/aura-go/assets"
	appconfig "github.com/doeshing/aura-go/internal/application/config"
	"github.com/doeshing/aura-go/internal/application/dispatch"
	"github.com/doeshing/aura-go/internal/application/doctor"
	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/application/skills"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/infrastructure/appindex"
	"github.com/doeshing/aura-go/internal/infrastructure/cache"
	"github.com/doeshing/aura-go/internal/infrastructure/config"
	"github.com/doeshing/aura-go/internal/infrastructure/contacts"
	"github.com/doeshing/aura-go/internal/infrastructure/executor"
	"github.com/doeshing/aura-go/internal/infrastructure/fuzzy"
	"github.com/doeshing/aura-go/internal/infrastructure/history"
	"github.com/doeshing/aura-go/internal/infrastructure/intent"
	"github.com/doeshing/aura-go/internal/infrastructure/knowledge"
	"github.com/doeshing/aura-go/internal/infrastructure/mail"
	"github.com/doeshing/aura-go/internal/infrastructure/server"
	"github.com/doeshing/aura-go/internal/infrastructure/speech"
	"github.com/doeshing/aura-go/internal/pkg/clock"
	"github.com/doeshing/aura-go/internal/pkg/logger"
	"github.com/doeshing/aura-go/internal/ports"
)

// Options tune container construction. Zero values select the real adapters.
type Options struct {
	ConfigPath string
	Verbose    bool
	// Out receives notifications when no TTS program is available.
	Out       io.Writer
	Logger    *logger.ZapLogger
	Executor  ports.ActionExecutor
	Scheduler ports.Scheduler
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config        domain.Config
	ConfigLoader  *config.FileLoader
	Logger        *logger.ZapLogger
	Engine        *dispatch.Engine
	Skills        *skills.Skills
	HistoryStore  history.Store
	Contacts      *contacts.Store
	Apps          *appindex.Index
	AnswerCache   *cache.FileCache
	HandlerSource string
	Announcer     *speech.Announcer
	Mailer        *mail.SMTPMailer
	DoctorService *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgLoader.Path(), err)
	}

	log := opts.Logger
	if log == nil {
		if log, err = logger.NewZap(opts.Verbose); err != nil {
			log = logger.NewNop()
		}
	}

	c := &Container{Config: cfg, ConfigLoader: cfgLoader, Logger: log}
	c.HistoryStore = openHistory(ctx, cfg, log)

	c.Contacts, err = contacts.NewStore(cfg.Contacts.File, assets.DefaultContactsYAML, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	dirs := cfg.Apps.IndexDirs
	if len(dirs) == 0 {
		dirs = appindex.DefaultDirs(runtime.GOOS)
	}
	c.Apps = appindex.NewIndex(cfg.Apps.IndexCache, dirs, log)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	c.Announcer = speech.New(cfg.Speech, out, log)
	c.Mailer = mail.NewSMTPMailer(cfg)

	actions := opts.Executor
	if actions == nil {
		actions = executor.NewLocalExecutor(log)
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = clock.NewReal()
	}

	var answers ports.KnowledgeSource = knowledge.NewWikipediaClient(cfg.Search.KnowledgeEndpoint, &http.Client{Timeout: cfg.GetSearchTimeout()})
	if cfg.Cache.Enabled {
		c.AnswerCache = cache.NewFileCache(cfg.Cache.Dir, cfg.GetCacheTTL(), cfg.GetCacheMaxEntries())
		answers = knowledge.NewCachedSource(answers, c.AnswerCache, log)
	}

	c.Skills = skills.New(skills.Deps{
		Config:    cfg,
		Executor:  actions,
		Scheduler: scheduler,
		Announcer: c.Announcer,
		Mailer:    c.Mailer,
		Knowledge: answers,
		Apps:      c.Apps,
		Contacts:  c.Contacts,
		Logger:    log,
	})

	table, err := registry.LoadTable(cfg.Handlers.File, assets.DefaultHandlersYAML)
	if err != nil {
		c.Close()
		return nil, err
	}
	reg, err := registry.Build(table, c.Skills.Catalog())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("handler table: %w", err)
	}
	c.HandlerSource = table.Source

	deps := dispatch.Dependencies{
		Registry: reg,
		Intents:  intent.NewExtractor(),
		Logger:   log,
		Now:      scheduler.Now,
	}
	if cfg.Correction.Enabled {
		deps.Corrector = fuzzy.NewCorrector(cfg.Correction.Phrases, cfg.GetCorrectionThreshold(), log)
	}
	if c.HistoryStore != nil {
		deps.History = c.HistoryStore
	}
	c.Engine, err = dispatch.New(deps, dispatch.Settings{
		MinConfidence: cfg.GetMinConfidence(),
		HistorySize:   cfg.GetHistorySize(),
		Timeout:       cfg.GetCommandTimeout(),
	})
	if err != nil {
		c.Close()
		return nil, err
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		Handlers:       c.Engine,
		Contacts:       c.Contacts,
		Apps:           c.Apps,
		Mailer:         c.Mailer,
		Announcer:      c.Announcer,
	}
	if c.HistoryStore != nil {
		c.DoctorService.History = c.HistoryStore
	}
	return c, nil
}

// openHistory opens the durable log and applies retention. A broken store
// only disables persistence.
func openHistory(ctx context.Context, cfg domain.Config, log ports.Logger) history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		log.Warn("sqlite history unavailable, using jsonl log", map[string]interface{}{
			"error": err.Error(),
			"path":  store.Path(),
		})
	}
	if removed, err := store.Prune(ctx, cfg.GetHistoryRetentionDays()); err != nil {
		log.Warn("history prune failed", map[string]interface{}{"error": err.Error()})
	} else if removed > 0 {
		log.Debug("history pruned", map[string]interface{}{"removed": removed})
	}
	return store
}

// Watch starts the background reloaders used by long-running commands.
func (c *Container) Watch(ctx context.Context) {
	if !c.Config.Contacts.Watch {
		return
	}
	if err := c.Contacts.Watch(ctx); err != nil {
		c.Logger.Warn("contacts watch disabled", map[string]interface{}{"error": err.Error()})
	}
}

// NewServer builds the websocket boundary around the engine.
func (c *Container) NewServer(addr string) *server.Server {
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	return server.New(c.Engine, server.Options{
		Addr:      addr,
		QueueSize: c.Config.GetQueueSize(),
		Logger:    c.Logger,
	})
}

// Close cancels pending timers and releases stores and watchers.
func (c *Container) Close() {
	if c.Skills != nil {
		c.Skills.Timers().StopAll()
	}
	if c.Contacts != nil {
		c.Contacts.Stop()
	}
	if c.HistoryStore != nil {
		if err := c.HistoryStore.Close(); err != nil {
			c.Logger.Warn("close history", map[string]interface{}{"error": err.Error()})
		}
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
