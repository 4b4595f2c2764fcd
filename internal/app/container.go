package app

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/doeshing/voicectl/internal/application/command"
	configapp "github.com/doeshing/voicectl/internal/application/config"
	"github.com/doeshing/voicectl/internal/application/doctor"
	"github.com/doeshing/voicectl/internal/application/intent"
	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/infrastructure/config"
	"github.com/doeshing/voicectl/internal/infrastructure/executor"
	"github.com/doeshing/voicectl/internal/infrastructure/history"
	"github.com/doeshing/voicectl/internal/infrastructure/httpapi"
	"github.com/doeshing/voicectl/internal/infrastructure/platform"
	"github.com/doeshing/voicectl/internal/infrastructure/security"
	"github.com/doeshing/voicectl/internal/pkg/logger"
	"github.com/doeshing/voicectl/internal/ports"
)

// Options tunes container construction.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.Zap
	Platform       domain.Platform
	Resolver       *platform.Resolver
	Guardrail      *security.Guardrail
	Processor      *command.Processor
	Commands       *command.Service
	Store          ports.PersistentStore
	History        *history.Failover
	DoctorService  *doctor.Service
	API            *httpapi.Server
}

// BuildContainer constructs the dependency graph. Nothing touches the
// network until Start is called.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := configapp.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", cfgLoader.Path(), err)
	}

	level := cfg.Logging.Level
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	host := selectPlatform(cfg.Execution.Platform)
	resolver := platform.NewResolver(platform.WithInfoTimeout(seconds(cfg.Execution.InfoTimeoutSeconds)))

	var (
		guardrail *security.Guardrail
		secPort   ports.SecurityService
		rules     doctor.RuleSet
	)
	if cfg.Security.Enabled {
		guardrail, err = security.NewGuardrail(cfg.Security.RulesFile)
		if err != nil {
			log.Warn("guardrail rules invalid, using defaults", map[string]interface{}{"error": err.Error()})
			guardrail, err = security.NewGuardrailFromPatterns(security.DefaultPatterns())
			if err != nil {
				return nil, err
			}
		}
		secPort, rules = guardrail, guardrail
	}

	processor := &command.Processor{
		Classifier:   intent.NewClassifier(),
		Resolver:     resolver,
		Executor:     executor.NewLocalExecutor(log.Named("executor")),
		Security:     secPort,
		Logger:       log.Named("command"),
		HostPlatform: host,
	}

	store := newStore(cfg.Storage, log)
	failover := history.NewFailover(store,
		history.WithLogger(log.Named("history")),
		history.WithConnectTimeout(seconds(cfg.Storage.ConnectTimeoutSeconds)),
		history.WithProbeInterval(seconds(cfg.Storage.ProbeIntervalSeconds)),
		history.WithCapacity(cfg.Storage.BufferCapacity),
	)

	commands := &command.Service{
		Processor: processor,
		History:   failover,
		Logger:    log.Named("service"),
	}

	api := httpapi.NewServer(commands, processor,
		httpapi.WithStorageStatus(failover),
		httpapi.WithLogger(log.Named("http")),
		httpapi.WithHistoryLimit(cfg.Server.HistoryLimit),
	)

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Catalog:        resolver,
		Guardrail:      rules,
		Platform:       host,
		ConnectTimeout: seconds(cfg.Storage.ConnectTimeoutSeconds),
	}
	if store != nil {
		// Doctor connects and closes a separate handle.
		doctorService.Store = newStore(cfg.Storage, log)
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Platform:       host,
		Resolver:       resolver,
		Guardrail:      guardrail,
		Processor:      processor,
		Commands:       commands,
		Store:          store,
		History:        failover,
		DoctorService:  doctorService,
		API:            api,
	}, nil
}

// Start begins the background connection to the history store.
func (c *Container) Start(ctx context.Context) {
	c.History.Start(ctx)
}

// Close releases the history store and flushes logs.
func (c *Container) Close(ctx context.Context) error {
	err := c.History.Close(ctx)
	_ = c.Logger.Sync()
	return err
}

// ListenAddr is the HTTP bind address for the configured port.
func (c *Container) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Config.Server.Port)
}

// HTTPServer builds the configured *http.Server.
func (c *Container) HTTPServer() *http.Server {
	return c.API.HTTPServer(c.ListenAddr(),
		seconds(c.Config.Server.ReadTimeoutSeconds),
		seconds(c.Config.Server.WriteTimeoutSeconds))
}

func newStore(s domain.StorageSettings, log *logger.Zap) ports.PersistentStore {
	switch s.Driver {
	case domain.StorageDriverMongo:
		return history.NewMongoStore(s.URI, s.Database, s.Collection, log.Named("mongo"))
	case domain.StorageDriverSQLite:
		return history.NewSQLiteStore(s.SQLitePath)
	default:
		return nil
	}
}

func selectPlatform(configured string) domain.Platform {
	switch p := strings.ToLower(strings.TrimSpace(configured)); p {
	case "", "auto":
		return domain.PlatformFromGOOS(runtime.GOOS)
	default:
		return domain.Platform(p)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
