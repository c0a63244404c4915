package satellites

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/planning/planner"
)

// BucketRequest is one bucket's planning input: its state, its isolated
// portfolio snapshot and its configuration.
type BucketRequest struct {
	Bucket   Bucket
	Snapshot *domain.OpportunityContext
	Config   *domain.PlannerConfiguration
}

// CurrencyConverter converts a monetary amount into EUR.
type CurrencyConverter interface {
	ToEUR(value float64, currency string) float64
}

// NewBucketRequest scopes the shared portfolio snapshot down to one bucket
// and pairs it with the bucket's configuration.
func NewBucketRequest(
	bucket Bucket,
	shared *domain.OpportunityContext,
	converter CurrencyConverter,
	config *domain.PlannerConfiguration,
) BucketRequest {
	return BucketRequest{
		Bucket:   bucket,
		Snapshot: ScopeSnapshot(bucket, shared, converter),
		Config:   config,
	}
}

// ScopeSnapshot slices a shared portfolio snapshot to a bucket: securities,
// positions and market data restricted to the bucket's universe, cash
// summed from the bucket's balances in EUR.
func ScopeSnapshot(
	bucket Bucket,
	shared *domain.OpportunityContext,
	converter CurrencyConverter,
) *domain.OpportunityContext {
	var securities []domain.Security
	for _, sec := range shared.Securities {
		if bucket.InUniverse(sec.Symbol) {
			securities = append(securities, sec)
		}
	}
	var positions []domain.Position
	for _, pos := range shared.Positions {
		if bucket.InUniverse(pos.Symbol) {
			positions = append(positions, pos)
		}
	}

	cash := 0.0
	currencies := make([]string, 0, len(bucket.Balances))
	for currency := range bucket.Balances {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	for _, currency := range currencies {
		amount := bucket.Balances[currency]
		if converter != nil {
			cash += converter.ToEUR(amount, currency)
		} else {
			cash += amount
		}
	}

	total := bucket.CurrentValue
	if total <= 0 {
		total = cash
		for _, pos := range positions {
			total += pos.ValueEUR
		}
	}

	scoped := domain.NewOpportunityContext(positions, securities, cash, total,
		filterByUniverse(shared.CurrentPrices, bucket))
	scoped.SecurityScores = filterByUniverse(shared.SecurityScores, bucket)
	scoped.TargetWeights = filterByUniverse(shared.TargetWeights, bucket)
	// Group data is keyed by group name, not symbol; shared as-is.
	scoped.GroupAllocations = shared.GroupAllocations
	scoped.GroupWeights = shared.GroupWeights
	scoped.GroupWeightAdjustments = shared.GroupWeightAdjustments
	if shared.IneligibleSymbols != nil {
		scoped.IneligibleSymbols = shared.IneligibleSymbols
	}
	if shared.RecentlySoldSymbols != nil {
		scoped.RecentlySoldSymbols = shared.RecentlySoldSymbols
	}
	if shared.RecentlyBoughtSymbols != nil {
		scoped.RecentlyBoughtSymbols = shared.RecentlyBoughtSymbols
	}
	scoped.Costs = shared.Costs
	scoped.AllowSell = shared.AllowSell
	scoped.AllowBuy = shared.AllowBuy
	return scoped
}

func filterByUniverse(values map[string]float64, bucket Bucket) map[string]float64 {
	if values == nil {
		return nil
	}
	filtered := make(map[string]float64, len(values))
	for symbol, value := range values {
		if bucket.InUniverse(symbol) {
			filtered[symbol] = value
		}
	}
	return filtered
}

// Coordinator plans all buckets concurrently and scales each plan by the
// bucket's aggression. A failing bucket is logged and skipped; the others
// still get their plans.
type Coordinator struct {
	planner    *planner.Planner
	aggression AggressionConfig
	log        zerolog.Logger
}

// NewCoordinator creates a bucket coordinator.
func NewCoordinator(p *planner.Planner, aggression AggressionConfig, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		planner:    p,
		aggression: aggression,
		log:        log.With().Str("component", "satellites").Logger(),
	}
}

// PlanAll produces a plan per bucket, keyed by bucket ID. Hibernating and
// trading-disabled buckets get an empty plan rather than being omitted, so
// callers can tell "no trades" apart from "failed".
func (c *Coordinator) PlanAll(
	ctx context.Context,
	requests []BucketRequest,
	totalPortfolioValueEUR float64,
) map[string]domain.Plan {
	plans := make(map[string]domain.Plan, len(requests))

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)

	for _, request := range requests {
		request := request
		group.Go(func() error {
			plan, ok := c.planBucket(ctx, request, totalPortfolioValueEUR)
			if !ok {
				return nil
			}
			mu.Lock()
			plans[request.Bucket.ID] = plan
			mu.Unlock()
			return nil
		})
	}

	// Workers only ever return nil; failures are isolated per bucket.
	_ = group.Wait()

	c.log.Info().
		Int("buckets", len(requests)).
		Int("planned", len(plans)).
		Msg("Bucket planning complete")

	return plans
}

// planBucket plans one bucket. Returns ok=false only on hard failure;
// hibernation and disabled trading yield an empty plan.
func (c *Coordinator) planBucket(
	ctx context.Context,
	request BucketRequest,
	totalPortfolioValueEUR float64,
) (domain.Plan, bool) {
	bucket := request.Bucket
	log := c.log.With().Str("bucket_id", bucket.ID).Logger()

	if err := bucket.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid bucket")
		return domain.Plan{}, false
	}

	if !bucket.TradingAllowed {
		log.Info().Msg("Trading disabled, empty plan")
		return domain.Plan{RunID: uuid.New().String()}, true
	}

	funded := bucket.FundedFraction(totalPortfolioValueEUR)
	aggression := c.aggression.Compute(funded, bucket.Drawdown())
	if c.aggression.ShouldHibernate(aggression.Factor) {
		log.Info().
			Float64("funded_fraction", funded).
			Float64("aggression", aggression.Factor).
			Msg("Bucket hibernating, empty plan")
		return domain.Plan{RunID: uuid.New().String()}, true
	}

	plan, err := c.planner.Plan(ctx, request.Snapshot, request.Config)
	if err != nil {
		log.Error().Err(err).Msg("Bucket planning failed")
		return domain.Plan{}, false
	}

	log.Info().
		Float64("aggression", aggression.Factor).
		Str("limiting_factor", aggression.LimitingFactor).
		Msg(aggression.Description)

	return c.scalePlan(plan, aggression.Factor, request.Snapshot), true
}

// scalePlan shrinks buy quantities by the aggression factor, keeping lot
// alignment. Sells are never scaled: reducing exposure stays allowed even
// when the bucket is throttled. Buys that scale to zero are dropped.
func (c *Coordinator) scalePlan(
	plan domain.Plan,
	factor float64,
	snapshot *domain.OpportunityContext,
) domain.Plan {
	if factor >= 1.0 {
		return plan
	}

	scaled := domain.Plan{RunID: plan.RunID, Dropped: plan.Dropped}
	for _, action := range plan.Actions {
		if action.Side != "BUY" {
			scaled.Actions = append(scaled.Actions, action)
			continue
		}

		quantity := int(float64(action.Quantity) * factor)
		if security, found := snapshot.GetSecurity(action.Symbol); found && security.MinLot > 1 {
			quantity = (quantity / security.MinLot) * security.MinLot
		}
		if quantity <= 0 {
			scaled.Dropped++
			continue
		}

		if action.Quantity > 0 {
			action.ValueEUR = action.ValueEUR * float64(quantity) / float64(action.Quantity)
		}
		action.Quantity = quantity
		scaled.Actions = append(scaled.Actions, action)
	}

	return scaled
}

// Aggregate merges bucket plans into one portfolio-wide view. Actions are
// annotated with their source bucket and re-sorted by priority; equal
// priorities keep bucket-ID order.
func Aggregate(plans map[string]domain.Plan) domain.Plan {
	merged := domain.Plan{RunID: uuid.New().String()}

	ids := make([]string, 0, len(plans))
	for id := range plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		plan := plans[id]
		merged.Dropped += plan.Dropped
		for _, action := range plan.Actions {
			if action.Reason != "" {
				action.Reason = "[" + id + "] " + action.Reason
			} else {
				action.Reason = "[" + id + "]"
			}
			action.Tags = append(append([]string{}, action.Tags...), "bucket:"+id)
			merged.Actions = append(merged.Actions, action)
		}
	}

	sort.SliceStable(merged.Actions, func(i, j int) bool {
		return merged.Actions[i].Priority > merged.Actions[j].Priority
	})

	return merged
}

// HighestPriority returns the single strongest action across all bucket
// plans, with its bucket ID. Ties resolve to the lexically smallest bucket
// ID. ok is false when every plan is empty.
func HighestPriority(plans map[string]domain.Plan) (string, domain.ActionCandidate, bool) {
	ids := make([]string, 0, len(plans))
	for id := range plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ""
	var bestAction domain.ActionCandidate
	for _, id := range ids {
		for _, action := range plans[id].Actions {
			if best == "" || action.Priority > bestAction.Priority {
				best = id
				bestAction = action
			}
		}
	}

	if best == "" {
		return "", domain.ActionCandidate{}, false
	}
	return best, bestAction, true
}
