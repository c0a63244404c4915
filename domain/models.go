// Package domain contains the core planning types shared by every pipeline
// stage: candidates, sequences, plans and the opportunity context.
package domain

// ActionCandidate represents a potential trade action with associated metadata
// for priority-based selection and sequencing.
//
// CURRENCY INVARIANT: ValueEUR is always expressed in EUR regardless of the
// trading currency. Conversion happens when the candidate is built.
type ActionCandidate struct {
	Side     string   `json:"side"`      // Trade direction ("BUY" or "SELL")
	Symbol   string   `json:"symbol"`    // Security symbol
	Name     string   `json:"name"`      // Security name for display
	Quantity int      `json:"quantity"`  // Number of units to trade (lot-aligned)
	Price    float64  `json:"price"`     // Price per unit in the trading currency
	ValueEUR float64  `json:"value_eur"` // Total value in EUR
	Currency string   `json:"currency"`  // Trading currency
	Priority float64  `json:"priority"`  // Higher values indicate higher priority
	Reason   string   `json:"reason"`    // Human-readable explanation for this action
	Tags     []string `json:"tags"`      // Classification tags (e.g., ["windfall", "rebalance"])
}

// HasTag reports whether the candidate carries the given tag.
func (a ActionCandidate) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ActionSequence represents an ordered, not-yet-validated list of candidates
// forming one hypothetical multi-step plan. Order matters: later steps may
// depend on cash freed by earlier sells.
type ActionSequence struct {
	Actions      []ActionCandidate `json:"actions"`       // Sequence of actions
	Priority     float64           `json:"priority"`      // Aggregate priority (mean of actions)
	Depth        int               `json:"depth"`         // Number of actions in sequence
	PatternType  string            `json:"pattern_type"`  // Stage that generated this sequence
	SequenceHash string            `json:"sequence_hash"` // MD5 hash for deduplication
}

// Plan is the final output of a planning invocation: an ordered list of
// candidates sorted by priority descending. Plans are created fresh on every
// invocation and never mutated after construction.
type Plan struct {
	RunID   string            `json:"run_id"` // Log-correlation identifier, not persistent
	Actions []ActionCandidate `json:"actions"`
	Dropped int               `json:"dropped"` // Candidates excluded as infeasible
}

// IsEmpty reports whether the plan recommends no actions.
func (p Plan) IsEmpty() bool {
	return len(p.Actions) == 0
}

// OpportunityCategory represents different types of trading opportunities.
type OpportunityCategory string

const (
	OpportunityCategoryProfitTaking   OpportunityCategory = "profit_taking"
	OpportunityCategoryAveragingDown  OpportunityCategory = "averaging_down"
	OpportunityCategoryRebalanceSells OpportunityCategory = "rebalance_sells"
	OpportunityCategoryRebalanceBuys  OpportunityCategory = "rebalance_buys"
	OpportunityCategoryWeightBased    OpportunityCategory = "weight_based"
)

// OpportunitiesByStrategy organizes action candidates by the name of the
// calculator that produced them. Candidates are unioned, not deduplicated,
// across strategies.
type OpportunitiesByStrategy map[string][]ActionCandidate

// Flatten returns all candidates across strategies in a single slice.
// Iteration order is not deterministic; callers that need determinism must
// sort the result.
func (o OpportunitiesByStrategy) Flatten() []ActionCandidate {
	var all []ActionCandidate
	for _, candidates := range o {
		all = append(all, candidates...)
	}
	return all
}
