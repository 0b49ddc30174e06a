package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/salin/internal/config"
	"github.com/roach88/salin/internal/engine"
	"github.com/roach88/salin/internal/grammar"
	"github.com/roach88/salin/internal/ir"
	"github.com/roach88/salin/internal/lexicon"
	"github.com/roach88/salin/internal/store"
	"github.com/roach88/salin/internal/tag"
)

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger handed to the stores and the matcher.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Harness holds the tables and history log of one scenario run.
type Harness struct {
	dictionary *lexicon.Store
	grammar    *grammar.Store
	history    *store.Store
	logger     *zap.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the dictionary and grammar resources
//  2. Open a fresh in-memory history log
//  3. Apply setup mutations
//  4. Match the words and record the run
//  5. Check expectations and assertions
//
// Load and setup failures are returned as errors. Failed expectations and
// assertions are reported through Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(zap.String("scenario", scenario.Name))

	var err error
	lexOpts := []lexicon.Option{lexicon.WithLogger(h.logger)}
	if scenario.normalize() {
		lexOpts = append(lexOpts, lexicon.WithNormalization())
	}
	h.dictionary, err = lexicon.Open(lexicon.Dictionary, scenario.Dictionary, lexOpts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	h.grammar, err = grammar.Open(scenario.Grammar, grammar.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	h.history, err = store.Open(":memory:", store.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: open history: %w", scenario.Name, err)
	}
	defer h.history.Close()

	if err := h.executeSetup(scenario.Setup); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	minMatch := engine.DefaultMinMatch
	if scenario.MinMatch != nil {
		minMatch = *scenario.MinMatch
	}

	matcher := engine.New(h.dictionary, h.grammar,
		engine.WithLogger(h.logger),
		engine.WithRunIDs(engine.NewFixedGenerator("scenario-"+scenario.Name)))
	run, err := matcher.MatchAndRecord(ctx, h.history, scenario.Words, minMatch)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.RunID = run.ID
	result.Seq = run.Seq
	result.Words = run.Words
	result.MinMatch = run.MinMatch
	result.Matches = run.Matches

	checkExpectations(scenario, result)
	for _, a := range scenario.Assertions {
		if err := evaluateAssertion(result.Matches, a); err != nil {
			result.AddError(err.Error())
		}
	}

	h.logger.Debug("scenario finished",
		zap.Bool("pass", result.Pass),
		zap.Int("results", len(result.Matches)))
	return result, nil
}

// executeSetup applies setup mutations in order.
func (h *Harness) executeSetup(setup []SetupStep) error {
	for i, step := range setup {
		switch step.Op {
		case OpSetEntry:
			h.dictionary.SetEntry(ir.Key(step.Index), step.Word, step.Associated...)
		case OpRemoveEntry:
			if !h.dictionary.RemoveEntry(ir.Key(step.Index)) {
				return fmt.Errorf("setup[%d]: no dictionary entry at index %s", i, step.Index)
			}
		case OpAddRule:
			tags := make([]tag.Tag, 0, len(step.Tags))
			for _, s := range step.Tags {
				t, err := tag.Parse(s)
				if err != nil {
					return fmt.Errorf("setup[%d]: %w", i, err)
				}
				tags = append(tags, t)
			}
			h.grammar.AddRule(step.Rule, ir.Key(step.Index), tags...)
		case OpRemoveRule:
			if !h.grammar.RemoveRule(step.Rule) {
				return fmt.Errorf("setup[%d]: no rule %s", i, step.Rule)
			}
		default:
			return fmt.Errorf("setup[%d]: unknown op %q", i, step.Op)
		}
	}
	return nil
}

// checkExpectations compares the ranked results against expect and
// expect_empty.
// normalize reports whether lookups compare NFC forms. Unset follows
// config.DefaultConfig.
func (s *Scenario) normalize() bool {
	if s.Normalize != nil {
		return *s.Normalize
	}
	return config.DefaultConfig().Normalize
}

func checkExpectations(scenario *Scenario, result *Result) {
	if scenario.ExpectEmpty && len(result.Matches) > 0 {
		result.AddError(fmt.Sprintf("expected no results, got %d: %v",
			len(result.Matches), resultKeys(result.Matches)))
		return
	}
	if scenario.Expect == nil {
		return
	}

	if len(scenario.Expect) != len(result.Matches) {
		result.AddError(fmt.Sprintf("expected %d results, got %d: %v",
			len(scenario.Expect), len(result.Matches), resultKeys(result.Matches)))
		return
	}
	for i, want := range scenario.Expect {
		got := result.Matches[i]
		if got.RuleName != want.Rule || string(got.Index) != want.Index || got.MatchCount != want.MatchCount {
			result.AddError(fmt.Sprintf("result #%d: expected %s/%s count=%d, got %s/%s count=%d",
				i+1, want.Rule, want.Index, want.MatchCount,
				got.RuleName, got.Index, got.MatchCount))
		}
	}
}

func resultKey(m ir.Match) string {
	return m.RuleName + "/" + string(m.Index)
}

func resultKeys(matches []ir.Match) []string {
	keys := make([]string, len(matches))
	for i, m := range matches {
		keys[i] = resultKey(m)
	}
	return keys
}
