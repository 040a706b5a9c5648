package sessionkit

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"

	"github.com/verimark/sessionkit/credential"
	"github.com/verimark/sessionkit/handle"
	"github.com/verimark/sessionkit/inactivity"
	internalevents "github.com/verimark/sessionkit/internal/events"
	internalmetrics "github.com/verimark/sessionkit/internal/metrics"
	"github.com/verimark/sessionkit/refresh"
	"github.com/verimark/sessionkit/transport"
)

// Builder assembles a [Controller]. Configure it during initialization and
// call Build exactly once.
type Builder struct {
	config    Config
	base      http.RoundTripper
	handles   handle.Store
	redis     *redis.Client
	logger    watermill.LoggerAdapter
	navigator Navigator

	built bool
}

// New creates a builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRefreshEndpoint sets the credential-refresh endpoint. Required unless
// set through WithConfig.
func (b *Builder) WithRefreshEndpoint(url string) *Builder {
	b.config.Refresh.Endpoint = url
	return b
}

// WithTransport sets the base round tripper wrapped by the request pipeline
// and used for refresh calls. Defaults to http.DefaultTransport.
func (b *Builder) WithTransport(rt http.RoundTripper) *Builder {
	b.base = rt
	return b
}

// WithHTTPClient is a convenience for WithTransport(client.Transport).
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	if client != nil {
		b.base = client.Transport
	}
	return b
}

// WithHandleStore sets the durable refresh-handle store. Defaults to an
// in-memory store; use WithRedis for Redis-backed durability.
func (b *Builder) WithHandleStore(store handle.Store) *Builder {
	b.handles = store
	return b
}

// WithRedis backs the refresh-handle store with Redis, under
// Config.Refresh.HandleKey. Ignored when WithHandleStore was called.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithLogger sets the structured logger. Defaults to a slog-backed adapter.
func (b *Builder) WithLogger(logger watermill.LoggerAdapter) *Builder {
	b.logger = logger
	return b
}

// WithNavigator sets the host's "go to login surface" hook, invoked on every
// session teardown.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build wires the credential store, refresher, request pipeline, inactivity
// monitor and event bus into a ready Controller.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Refresh.Endpoint == "" {
		return nil, errors.New("refresh endpoint required")
	}

	handles := b.handles
	if handles == nil {
		if b.redis != nil {
			handles = handle.NewRedisStore(b.redis, cfg.Refresh.HandleKey, cfg.Refresh.HandleTTL)
		} else {
			handles = handle.NewMemoryStore()
		}
	}

	logger := b.logger
	if logger == nil {
		logger = watermill.NewSlogLogger(slog.Default())
	}

	c := &Controller{
		config:   cfg,
		logger:   logger,
		handles:  handles,
		navigate: b.navigator,
		metrics:  internalmetrics.New(internalmetrics.Config{Enabled: cfg.Metrics.Enabled}),
	}

	if cfg.Events.Enabled {
		c.bus = internalevents.NewBus(cfg.Events.Buffer, logger)
	}

	c.creds = credential.NewStore(credential.Config{
		DefaultTTL:         cfg.Token.DefaultTTL,
		NearExpiryWindow:   cfg.Token.NearExpiryWindow,
		NearExpiryFraction: cfg.Token.NearExpiryFraction,
		MaxCheckDelay:      cfg.Token.MaxCheckDelay,
		OnNearExpiry:       c.onNearExpiry,
		OnLazyExpiry: func() {
			c.metrics.Inc(MetricTokenExpiredLazily)
		},
	})

	refreshClient := &http.Client{Timeout: cfg.Refresh.Timeout}
	if b.base != nil {
		// The refresher must bypass the pipeline: a failing refresh would
		// otherwise recurse into itself.
		refreshClient.Transport = b.base
	}
	refresher, err := refresh.New(refresh.Config{
		Endpoint: cfg.Refresh.Endpoint,
		Timeout:  cfg.Refresh.Timeout,
		Client:   refreshClient,
	}, handles)
	if err != nil {
		return nil, err
	}
	c.refresher = refresher

	c.pipeline = transport.NewPipeline(b.base, c.creds, refresher, transport.Options{
		DefaultTTL: cfg.Token.DefaultTTL,
		OnForcedLogout: func() {
			c.forceLogout(ReasonSessionExpired)
		},
		Metrics: c.metrics,
		Logger:  logger,
	})
	c.client = &http.Client{Transport: c.pipeline}

	timeouts := make(map[string]time.Duration, len(cfg.Inactivity.Timeouts))
	for role, timeout := range cfg.Inactivity.Timeouts {
		timeouts[string(role)] = timeout
	}
	c.monitor = inactivity.NewMonitor(inactivity.Config{
		Timeouts:       timeouts,
		DefaultTimeout: cfg.Inactivity.DefaultTimeout,
		WarningLead:    cfg.Inactivity.WarningLead,
		Signals:        cfg.Inactivity.Signals,
		OnWarning:      c.onInactivityWarning,
		OnExpire: func() {
			c.metrics.Inc(MetricInactivityExpiry)
			c.forceLogout(ReasonInactivity)
		},
	})

	b.built = true
	return c, nil
}
