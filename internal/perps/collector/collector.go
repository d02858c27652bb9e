package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"perpstracker/config"
	"perpstracker/internal/perps/history"
	"perpstracker/internal/perps/listings"
	"perpstracker/pkg/coingecko"
	"perpstracker/pkg/jsonstore"
	"perpstracker/pkg/storage/postgres"

	"go.uber.org/zap"
)

// TrackedExchange is one entry of the tracked-exchange list document.
type TrackedExchange struct {
	Name string `json:"name"`
}

// Tracker runs one polling pass: fetch derivative tickers, persist per-exchange
// history, and reconcile the listings event log. Construct with New.
type Tracker struct {
	cfg    *config.Config
	client *coingecko.Client
	writer *history.Writer
	db     *postgres.Client // nil when the Postgres mirror is disabled
	logger *zap.Logger

	// Now supplies the run timestamp; overridable in tests.
	Now func() int64
}

func New(cfg *config.Config, client *coingecko.Client, writer *history.Writer,
	db *postgres.Client, logger *zap.Logger) *Tracker {
	return &Tracker{
		cfg:    cfg,
		client: client,
		writer: writer,
		db:     db,
		logger: logger,
		Now:    func() int64 { return time.Now().UTC().Unix() },
	}
}

// Run executes one full collection pass. Any returned error aborted the run;
// state written before the failure point stays on disk.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.Info("starting perps data run")

	exchanges, err := t.loadTrackedExchanges()
	if err != nil {
		return err
	}

	tickers, err := t.client.DerivativeTickers(ctx)
	if err != nil {
		return err
	}
	t.logger.Info("fetched derivative tickers", zap.Int("count", len(tickers)))

	now := t.Now()

	for _, ex := range exchanges {
		if err := t.collectExchange(ctx, ex.Name, tickers, now); err != nil {
			return err
		}
	}

	if err := t.reconcileListings(ctx, exchanges, tickers, now); err != nil {
		return err
	}

	t.logger.Info("perps data run completed")
	return nil
}

func (t *Tracker) loadTrackedExchanges() ([]TrackedExchange, error) {
	var exchanges []TrackedExchange
	found, err := jsonstore.Load(t.cfg.Data.ExchangesFile, &exchanges)
	if err != nil {
		return nil, fmt.Errorf("load tracked exchanges: %w", err)
	}
	if !found || len(exchanges) == 0 {
		return nil, fmt.Errorf("no tracked exchanges in %s", t.cfg.Data.ExchangesFile)
	}
	return exchanges, nil
}

func (t *Tracker) collectExchange(ctx context.Context, name string,
	tickers []coingecko.DerivativeTicker, now int64) error {

	matched := filterByMarket(tickers, name)
	if len(matched) == 0 {
		t.logger.Warn("no tickers found for exchange", zap.String("exchange", name))
		return nil
	}

	rows := history.RowsFromTickers(matched, now)
	path, err := t.writer.Append(name, rows)
	if err != nil {
		return fmt.Errorf("append history for %s: %w", name, err)
	}
	t.logger.Info("appended ticker rows",
		zap.String("exchange", name),
		zap.Int("rows", len(rows)),
		zap.String("file", path))

	if err := t.writer.UpsertDailyVolume(name, history.SumVolume(matched), now); err != nil {
		return fmt.Errorf("update daily volume for %s: %w", name, err)
	}

	if t.db != nil {
		if err := t.db.InsertTickerRows(ctx, name, rows); err != nil {
			// mirror failures don't abort the run; files are the source of truth
			t.logger.Warn("postgres mirror insert failed",
				zap.String("exchange", name), zap.Error(err))
		}
	}

	return nil
}

func (t *Tracker) reconcileListings(ctx context.Context, exchanges []TrackedExchange,
	tickers []coingecko.DerivativeTicker, now int64) error {

	tracked := make([]string, 0, len(exchanges))
	for _, ex := range exchanges {
		tracked = append(tracked, ex.Name)
	}

	current := listings.BuildSnapshot(tickers, listings.BuildOptions{
		Tracked:   tracked,
		Normalize: t.cfg.Data.NormalizeListings,
	})

	var baseline listings.Snapshot
	found, err := jsonstore.Load(t.cfg.Data.BaselineFile, &baseline)
	if err != nil {
		return fmt.Errorf("load baseline: %w", err)
	}
	if !found {
		// First run: seed the baseline from the current snapshot instead of
		// flooding the log with a "listed" event for every existing pair.
		if err := jsonstore.Save(t.cfg.Data.BaselineFile, current); err != nil {
			return fmt.Errorf("seed baseline: %w", err)
		}
		t.logger.Info("baseline snapshot created", zap.String("file", t.cfg.Data.BaselineFile))
		baseline = current
	}

	log, err := listings.LoadLog(t.cfg.Data.EventLogFile)
	if err != nil {
		return err
	}

	res := listings.Reconcile(baseline, current, log, now)
	if err := log.Save(t.cfg.Data.EventLogFile); err != nil {
		return err
	}
	t.logger.Info("listings reconciled",
		zap.Int("listed", len(res.Listed)),
		zap.Int("delisted", len(res.Delisted)))

	if t.db != nil {
		if err := t.db.InsertListingEvents(ctx, res.Events(now)); err != nil {
			t.logger.Warn("postgres mirror insert failed", zap.Error(err))
		}
	}

	return nil
}

// filterByMarket selects tickers whose market matches name, ignoring case.
func filterByMarket(tickers []coingecko.DerivativeTicker, name string) []coingecko.DerivativeTicker {
	var out []coingecko.DerivativeTicker
	for _, t := range tickers {
		if strings.EqualFold(t.Market, name) {
			out = append(out, t)
		}
	}
	return out
}
