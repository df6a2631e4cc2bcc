package blackboard

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jensroland/git-solentry/internal/record"
)

// MaxPasses caps the number of controller passes. A run that still makes
// progress in the last pass is considered stuck.
const MaxPasses = 200

// ErrStuck is returned when the rules keep changing the blackboard after
// MaxPasses passes.
var ErrStuck = errors.New("rule engine did not reach a fixed point")

// Rule is one step of the reconciliation. CanFire must not modify the
// blackboard. Fire reports whether it changed anything.
type Rule interface {
	Name() string
	CanFire(bb *Blackboard) bool
	Fire(bb *Blackboard) bool
}

// DefaultRules returns the reconciliation rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		dropRemovedDiffEntries{},
		groupByFileAndTestCase{},
		extractCoveredLines{},
		extractChangedLines{},
		findCommonLines{},
		createCommonChangeBlocks{},
		insertFileContents{},
		addUncoveredCandidates{},
		combineChangeBlocks{},
		createSolutionEntries{},
	}
}

// Controller evaluates rules against a blackboard until a fixed point.
type Controller struct {
	rules []Rule
	log   zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRules replaces the default rule set.
func WithRules(rules ...Rule) Option {
	return func(c *Controller) {
		c.rules = rules
	}
}

// WithLogger sets the logger used for per-rule tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// NewController creates a controller with the default rules.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		rules: DefaultRules(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run evaluates every rule in order, pass after pass, until a full pass
// changes nothing. It returns the solution entries in canonical order. On
// ErrStuck no entries are returned.
func (c *Controller) Run(bb *Blackboard) ([]record.SolutionEntry, error) {
	for pass := 1; pass <= MaxPasses; pass++ {
		changed := false
		for _, r := range c.rules {
			if !r.CanFire(bb) {
				continue
			}
			fired := r.Fire(bb)
			c.log.Debug().
				Int("pass", pass).
				Str("rule", r.Name()).
				Bool("changed", fired).
				Msg("rule fired")
			changed = changed || fired
		}
		if !changed {
			bb.Passes = pass
			record.Sort(bb.SolutionEntries)
			c.log.Info().
				Int("passes", pass).
				Int("groups", len(bb.GroupedFiles)).
				Int("entries", len(bb.SolutionEntries)).
				Msg("fixed point reached")
			return append([]record.SolutionEntry(nil), bb.SolutionEntries...), nil
		}
	}
	bb.Passes = MaxPasses
	return nil, fmt.Errorf("%w after %d passes", ErrStuck, MaxPasses)
}
