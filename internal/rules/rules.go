package rules

import (
	"fmt"
	"regexp"

	"github.com/tilewm/tilewm/internal/config"
	"github.com/tilewm/tilewm/internal/layout"
)

// Strategy selects how multiple matching rules combine.
type Strategy int

const (
	// Cumulative applies every matching rule in order: tag masks are OR'd and
	// later matches override scalar fields.
	Cumulative Strategy = iota
	// FirstMatch stops at the first matching rule.
	FirstMatch
)

func (s Strategy) String() string {
	if s == FirstMatch {
		return config.ClassifyFirst
	}
	return config.ClassifyCumulative
}

// Rule represents a compiled rule ready for evaluation.
type Rule struct {
	Index     int
	Name      string
	Class     string
	Instance  string
	Title     *regexp.Regexp
	Tags      uint32
	Floating  bool
	ForceTile bool
	Monitor   int
	HasFactor bool
	Factor    layout.Factor
	BorderPx  int
	Position  layout.Position
	Warp      bool
}

// Matches reports whether the rule's patterns accept the window strings.
func (r *Rule) Matches(class, instance, title string) bool {
	ok, _ := r.match(class, instance, title, false)
	return ok
}

// Table is an immutable, ordered rule list.
type Table struct {
	rules    []Rule
	strategy Strategy
	ntags    int
}

// Build compiles the rules of a configuration.
func Build(cfg *config.Config) (*Table, error) {
	t := &Table{ntags: len(cfg.Tags)}
	if cfg.Classify == config.ClassifyFirst {
		t.strategy = FirstMatch
	}
	for i, rc := range cfg.Rules {
		r, err := compileRule(i, rc, t.ntags)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rc.Label(i), err)
		}
		t.rules = append(t.rules, r)
	}
	return t, nil
}

func compileRule(index int, rc config.RuleConfig, ntags int) (Rule, error) {
	r := Rule{
		Index:     index,
		Name:      rc.Label(index),
		Class:     rc.Class,
		Instance:  rc.Instance,
		Tags:      rc.Tags.Mask(ntags),
		Floating:  rc.Floating,
		ForceTile: rc.ForceTile,
		Monitor:   rc.Monitor,
		BorderPx:  rc.BorderPx,
		Warp:      rc.Warp,
	}
	if rc.Title != "" {
		re, err := regexp.Compile(rc.Title)
		if err != nil {
			return Rule{}, fmt.Errorf("title: %w", err)
		}
		r.Title = re
	}
	if len(rc.Factor) == 4 {
		r.HasFactor = true
		r.Factor = layout.Factor{X: rc.Factor[0], Y: rc.Factor[1], W: rc.Factor[2], H: rc.Factor[3]}
	}
	pos, err := layout.ParsePosition(rc.Position)
	if err != nil {
		return Rule{}, err
	}
	r.Position = pos
	return r, nil
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Rule returns the i-th rule in declaration order.
func (t *Table) Rule(i int) *Rule {
	return &t.rules[i]
}

// Rules returns a copy of the compiled rules.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Strategy returns the combination strategy.
func (t *Table) Strategy() Strategy {
	if t == nil {
		return Cumulative
	}
	return t.strategy
}
