package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"findash/internal/logging"
	"findash/internal/models"
	"findash/internal/services/aggregator"
	"findash/internal/services/cache"
	"findash/internal/services/classifier"
	"findash/internal/services/daterange"
	"findash/internal/services/telemetry"
)

// Source supplies the per-user inputs of a computation
type Source interface {
	Transactions(ctx context.Context, userID string) ([]models.TransactionRecord, error)
	Accounts(ctx context.Context, userID string) ([]models.Account, error)
	Holdings(ctx context.Context, userID string) ([]models.Holding, error)
	PriceHistory(ctx context.Context, symbols []string) ([]models.PriceSeries, error)
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

// Config wires a Service. Only Source is required.
type Config struct {
	Source     Source
	Cache      *cache.ResultCache
	Resolver   *daterange.Resolver
	Classifier *classifier.Classifier
	Metrics    telemetry.Collector
	Logger     *logging.Logger
	Now        func() time.Time
}

// Service computes dashboards for users, serving repeated requests from the cache
type Service struct {
	source   Source
	cache    *cache.ResultCache
	resolver *daterange.Resolver
	engine   *Engine
	taxAgg   *aggregator.Aggregator
	metrics  telemetry.Collector
	logger   *logging.Logger
	now      func() time.Time
}

// NewService creates a service, applying defaults for unset fields
func NewService(cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NoOpCollector{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = daterange.New(time.UTC, cfg.Now)
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New(cache.Config{Now: cfg.Now, Metrics: cfg.Metrics})
	}
	return &Service{
		source:   cfg.Source,
		cache:    cfg.Cache,
		resolver: cfg.Resolver,
		engine:   NewEngine(cfg.Classifier),
		taxAgg:   aggregator.New(cfg.Classifier),
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.Named("dashboard"),
		now:      cfg.Now,
	}
}

// ComputeDashboard returns the payload for a user, range and delta mode. An
// empty mode falls back to the user's stored preference.
func (s *Service) ComputeDashboard(ctx context.Context, userID string, req daterange.Request, mode string) (payload *models.Payload, err error) {
	start := s.now()
	path := "miss"
	defer func() {
		s.metrics.RecordCompute(path, s.now().Sub(start), err)
	}()

	id, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	r, err := s.resolver.Resolve(req)
	if err != nil {
		return nil, err
	}

	// the stored preference is only needed when no mode was requested
	var profile *models.Profile
	var preferred models.DeltaMode
	if strings.TrimSpace(mode) == "" {
		if profile, err = s.profile(ctx, id); err != nil {
			return nil, err
		}
		preferred = profile.Preferences.DeltaMode
	}
	deltaMode, err := models.ParseDeltaMode(mode, preferred)
	if err != nil {
		return nil, err
	}

	key := cache.NewKey(id, r, deltaMode)
	if cached, ok := s.cache.Get(key); ok {
		path = "hit"
		s.logger.Debug("served from cache", zap.String("user", id), zap.String("range", r.Label))
		return cached, nil
	}

	if profile == nil {
		if profile, err = s.profile(ctx, id); err != nil {
			return nil, err
		}
	}
	in, err := s.load(ctx, id, *profile)
	if err != nil {
		return nil, err
	}
	in.Range = r
	in.Mode = deltaMode

	payload, err = s.engine.Compute(in)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, payload)

	for _, a := range payload.Accounting.Alerts {
		s.metrics.RecordAlerts(string(a.Severity), 1)
	}
	s.logger.Info("dashboard computed",
		zap.String("user", id),
		zap.String("range", r.Label),
		zap.String("mode", string(deltaMode)),
		zap.Int("transactions", payload.Accounting.Metrics.TransactionCount),
		zap.Int("alerts", len(payload.Accounting.Alerts)),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return payload, nil
}

// EstimateTax returns the tax block for a range, where last-year means the
// previous complete UK tax year
func (s *Service) EstimateTax(ctx context.Context, userID string, req daterange.Request) (*models.TaxReport, error) {
	id, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	r, err := s.resolver.ResolveTax(req)
	if err != nil {
		return nil, err
	}

	records, err := s.source.Transactions(ctx, id)
	if err != nil {
		return nil, models.WrapError(models.SourceUnavailable, err, "failed to load transactions")
	}
	txs, dropped := s.parse(records)

	res := estimate(s.taxAgg.Aggregate(txs, r, 0), r.Days, s.now())
	s.logger.Debug("tax estimated",
		zap.String("user", id),
		zap.String("range", r.Label),
		zap.Float64("totalTax", res.Summary.TotalTax),
		zap.Int("dropped", dropped),
	)
	return &models.TaxReport{
		Range:       r.View(),
		Tax:         res.Summary,
		HMRCBalance: res.HMRC,
		Obligations: res.Obligations,
		Allowances:  res.Allowances,
	}, nil
}

// load fetches the collector inputs concurrently. The profile is already loaded
// because the delta mode depends on it.
func (s *Service) load(ctx context.Context, userID string, profile models.Profile) (Inputs, error) {
	in := Inputs{Profile: profile, Now: s.now()}
	var records []models.TransactionRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.source.Transactions(gctx, userID)
		return wrapSource(err, "failed to load transactions")
	})
	g.Go(func() error {
		var err error
		in.Accounts, err = s.source.Accounts(gctx, userID)
		return wrapSource(err, "failed to load accounts")
	})
	g.Go(func() error {
		var err error
		in.Holdings, err = s.source.Holdings(gctx, userID)
		if err != nil {
			return wrapSource(err, "failed to load holdings")
		}
		if syms := symbols(in.Holdings); len(syms) > 0 {
			in.Prices, err = s.source.PriceHistory(gctx, syms)
		}
		return wrapSource(err, "failed to load price history")
	})
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}

	in.Transactions, in.DroppedRecords = s.parse(records)
	return in, nil
}

func (s *Service) parse(records []models.TransactionRecord) ([]models.Transaction, int) {
	txs, dropped := models.ParseTransactions(records)
	if dropped > 0 {
		s.metrics.RecordDroppedRecords(dropped)
		s.logger.Debug("dropped transactions with unparsable dates", zap.Int("count", dropped))
	}
	return txs, dropped
}

func (s *Service) profile(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.source.Profile(ctx, id)
	if err != nil {
		return nil, models.WrapError(models.SourceUnavailable, err, "failed to load profile")
	}
	return &p, nil
}

// ParseUserID validates a user ID and returns it in canonical form
func ParseUserID(userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", models.WrapError(models.InvalidUser, err, "user id must be a UUID")
	}
	return id.String(), nil
}

func wrapSource(err error, msg string) error {
	if err == nil {
		return nil
	}
	return models.WrapError(models.SourceUnavailable, err, msg)
}
