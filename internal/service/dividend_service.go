package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/fx"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
)

// DefaultUpcomingDays is the window used by Upcoming when none is given.
const DefaultUpcomingDays = 30

// DividendOptions tunes a DividendService.
type DividendOptions struct {
	// BaseCurrency is the currency payouts are reported in. Defaults to GBP.
	BaseCurrency string
	// MaxConcurrency bounds how many holdings are processed at once. Defaults to 1.
	MaxConcurrency int
	// PastLookbackDays adds realized dividends with an ex-date in
	// (today - PastLookbackDays, today]. Zero disables them.
	PastLookbackDays int
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// DividendService calculates expected dividend payouts for a set of holdings.
// It holds no per-run state; FX rates and historical snapshots are cached for
// the duration of a single CalculateDividends call only.
type DividendService struct {
	market    MarketDataSource
	snapshots SnapshotSource
	fxSource  fx.Source

	baseCurrency     currency.Code
	maxConcurrency   int
	pastLookbackDays int
	now              func() time.Time
	log              zerolog.Logger
}

// NewDividendService creates a new DividendService with the provided collaborators.
func NewDividendService(
	market MarketDataSource,
	snapshots SnapshotSource,
	fxSource fx.Source,
	opts DividendOptions,
	log zerolog.Logger,
) *DividendService {
	s := &DividendService{
		market:           market,
		snapshots:        snapshots,
		fxSource:         fxSource,
		baseCurrency:     currency.Normalize(opts.BaseCurrency),
		maxConcurrency:   opts.MaxConcurrency,
		pastLookbackDays: opts.PastLookbackDays,
		now:              opts.Clock,
		log:              log.With().Str("component", "dividend_service").Logger(),
	}
	if s.maxConcurrency < 1 {
		s.maxConcurrency = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// BaseCurrency returns the currency payouts are expressed in.
func (s *DividendService) BaseCurrency() string {
	return string(s.baseCurrency)
}

// Today returns the current calendar day at UTC midnight, as seen by the service clock.
func (s *DividendService) Today() time.Time {
	return truncateToDay(s.now())
}

// calculationRun carries the state of one CalculateDividends call.
type calculationRun struct {
	svc    *DividendService
	today  time.Time
	rates  *fx.Resolver
	shares *ShareResolver
	log    zerolog.Logger
}

// CalculateDividends computes one dividend record per holding with a
// determinable next dividend, plus realized dividends when a lookback is
// configured.
//
// Holdings are processed concurrently. A holding whose market data cannot be
// fetched or used is logged and skipped. A failing snapshot lookup aborts the
// whole run, since share counts would be unreliable for every past dividend.
//
// Returns records sorted by ex-dividend date ascending, records without a date last.
func (s *DividendService) CalculateDividends(ctx context.Context, holdings []model.Holding) ([]model.DividendRecord, error) {
	runLog := s.log.With().Str("run_id", uuid.NewString()).Logger()
	run := &calculationRun{
		svc:    s,
		today:  s.Today(),
		rates:  fx.NewResolver(s.fxSource, runLog),
		shares: NewShareResolver(s.snapshots),
		log:    runLog,
	}

	runLog.Info().Int("holdings", len(holdings)).Time("today", run.today).Msg("Calculating dividends")

	slots := make([][]model.DividendRecord, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, h := range holdings {
		g.Go(func() error {
			records, err := run.processHolding(gctx, h)
			if err != nil {
				return err
			}
			slots[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		runLog.Error().Err(err).Msg("Dividend calculation aborted")
		return nil, err
	}

	results := make([]model.DividendRecord, 0, len(holdings))
	for _, records := range slots {
		results = append(results, records...)
	}
	SortRecords(results)

	runLog.Info().Int("dividends", len(results)).Msg("Dividend calculation complete")
	return results, nil
}

// processHolding returns the records of a single holding. A nil slice with a
// nil error means the holding was skipped.
func (r *calculationRun) processHolding(ctx context.Context, h model.Holding) ([]model.DividendRecord, error) {
	log := r.log.With().Str("symbol", h.Symbol).Logger()

	data, err := r.svc.market.GetMarketData(ctx, h.Symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Warn().Err(err).Msg("Skipping holding, market data unavailable")
		return nil, nil
	}
	if len(data.History) == 0 {
		log.Debug().Msg("No dividend history found")
		return nil, nil
	}

	divCurrency := currency.Normalize(data.DividendCurrency)

	var records []model.DividendRecord

	if est, ok := EstimateDividend(data.History, data.AnnouncedExDate, r.today); ok {
		rec, keep, err := r.buildRecord(ctx, h, divCurrency, est.ExDate, est.Amount, est.IsEstimated)
		if err != nil {
			return nil, err
		}
		if keep {
			records = append(records, rec)
		}
	} else {
		log.Debug().Int("dividends", len(data.History)).Msg("Could not determine next dividend")
	}

	if r.svc.pastLookbackDays > 0 {
		from := r.today.AddDate(0, 0, -r.svc.pastLookbackDays)
		for _, e := range data.History {
			if !e.Date.After(from) || e.Date.After(r.today) {
				continue
			}
			rec, keep, err := r.buildRecord(ctx, h, divCurrency, e.Date, e.Amount, false)
			if err != nil {
				return nil, err
			}
			if keep {
				records = append(records, rec)
			}
		}
	}

	return records, nil
}

// buildRecord prices one dividend for holding h.
//
// The per-share amount is converted from minor units and rounded first; the
// local payout is shares x per-share rounded; a non-base local currency is
// then converted with the run's FX rate and rounded again.
//
// Returns false when the dividend carries no value: a non-positive amount,
// or a past ex-date on which the symbol was not held. A positive amount below
// half a cent still yields a record, priced at 0.00.
func (r *calculationRun) buildRecord(
	ctx context.Context,
	h model.Holding,
	divCurrency currency.Code,
	exDate time.Time,
	amount float64,
	isEstimated bool,
) (model.DividendRecord, bool, error) {
	log := r.log.With().Str("symbol", h.Symbol).Str("ex_date", exDate.Format(time.DateOnly)).Logger()

	if amount <= 0 {
		log.Debug().Float64("amount", amount).Msg("Dividend amount is not positive, skipping")
		return model.DividendRecord{}, false, nil
	}
	perShare := round(currency.ToMajorUnits(divCurrency, amount))
	local := currency.Major(divCurrency)

	shares, err := r.shares.Shares(ctx, h, exDate, r.today)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
		}
		return model.DividendRecord{}, false, err
	}
	shares = round(shares)

	if !exDate.After(r.today) && shares == 0 {
		log.Debug().Msg("Symbol not held on past ex-date, skipping")
		return model.DividendRecord{}, false, nil
	}

	payout := mulRound(shares, perShare)
	if local != r.svc.baseCurrency {
		rate := r.rates.Rate(ctx, string(local), string(r.svc.baseCurrency))
		payout = mulRound(payout, rate)
		perShare = mulRound(perShare, rate)
	}

	log.Debug().
		Float64("shares", shares).
		Float64("per_share", perShare).
		Float64("payout", payout).
		Str("dividend_currency", string(divCurrency)).
		Bool("estimated", isEstimated).
		Msg("Priced dividend")

	exDate = truncateToDay(exDate)
	return model.DividendRecord{
		Symbol:           h.Symbol,
		ExDividendDate:   &exDate,
		DividendPerShare: ptr(perShare),
		Shares:           ptr(shares),
		Payout:           ptr(payout),
		IsEstimated:      isEstimated,
	}, true, nil
}

// SortRecords sorts records by ex-dividend date ascending; records without a
// date go last. The sort is stable so equal dates keep their input order.
func SortRecords(records []model.DividendRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].ExDividendDate, records[j].ExDividendDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// Summarize splits records into past and future, partitions the future into
// confirmed and estimated, totals the future payouts and picks the earliest
// future record as the next dividend.
//
// Records without an ex-dividend date are in neither list.
func (s *DividendService) Summarize(records []model.DividendRecord) model.PortfolioSummary {
	today := s.Today()
	summary := model.PortfolioSummary{
		Currency:    string(s.baseCurrency),
		Past:        []model.DividendRecord{},
		Future:      []model.DividendRecord{},
		Confirmed:   []model.DividendRecord{},
		Estimated:   []model.DividendRecord{},
		GeneratedAt: s.now().UTC(),
	}

	total := decimal.Zero
	for _, rec := range records {
		switch {
		case rec.IsFuture(today):
			summary.Future = append(summary.Future, rec)
			if rec.IsEstimated {
				summary.Estimated = append(summary.Estimated, rec)
			} else {
				summary.Confirmed = append(summary.Confirmed, rec)
			}
			total = total.Add(decimal.NewFromFloat(rec.PayoutValue()))
		case rec.IsPast(today):
			summary.Past = append(summary.Past, rec)
		}
	}

	for i := range summary.Future {
		rec := summary.Future[i]
		if summary.NextDividend == nil || rec.ExDividendDate.Before(*summary.NextDividend.ExDividendDate) {
			summary.NextDividend = &rec
		}
	}

	summary.TotalExpected = total.Round(RoundingPrecision).InexactFloat64()
	summary.Display = formatMoney(summary.TotalExpected, summary.Currency)
	return summary
}

// Upcoming returns the future dividends with an ex-date within days of today.
// A non-positive days uses DefaultUpcomingDays.
func (s *DividendService) Upcoming(ctx context.Context, holdings []model.Holding, days int) ([]model.DividendRecord, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}

	records, err := s.CalculateDividends(ctx, holdings)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	until := today.AddDate(0, 0, days)
	upcoming := make([]model.DividendRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsFuture(today) && !rec.ExDividendDate.After(until) {
			upcoming = append(upcoming, rec)
		}
	}
	return upcoming, nil
}

// Forecast calculates and summarizes the dividends of holdings and logs the result.
func (s *DividendService) Forecast(ctx context.Context, holdings []model.Holding) (model.PortfolioSummary, error) {
	records, err := s.CalculateDividends(ctx, holdings)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary := s.Summarize(records)

	event := s.log.Info().
		Str("total_expected", summary.Display).
		Int("past", len(summary.Past)).
		Int("future", len(summary.Future)).
		Int("confirmed", len(summary.Confirmed)).
		Int("estimated", len(summary.Estimated))
	if next := summary.NextDividend; next != nil {
		event = event.
			Str("next_symbol", next.Symbol).
			Str("next_ex_date", next.ExDividendDate.Format(time.DateOnly)).
			Str("next_payout", formatMoney(next.PayoutValue(), summary.Currency))
	}
	event.Msg("Dividend forecast")

	return summary, nil
}

// formatMoney renders amount with the symbol and grouping of code, e.g. "£1,234.56".
// Codes unknown to the money package fall back to "1234.56 XYZ".
func formatMoney(amount float64, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// IsUpstreamError reports whether err means a collaborator failed and the
// result set as a whole is unreliable.
func IsUpstreamError(err error) bool {
	return errors.Is(err, apperrors.ErrUpstreamUnavailable)
}
