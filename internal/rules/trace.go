package rules

// FieldTrace records how one pattern of a rule fared.
type FieldTrace struct {
	Field   string `json:"field"`
	Pattern string `json:"pattern"`
	Value   string `json:"value"`
	Matched bool   `json:"matched"`
}

// MatchTrace captures the evaluation of a single rule.
type MatchTrace struct {
	Index   int          `json:"index"`
	Rule    string       `json:"rule"`
	Matched bool         `json:"matched"`
	Applied bool         `json:"applied"`
	Fields  []FieldTrace `json:"fields,omitempty"`
}

// Explanation is the full trace of a classification.
type Explanation struct {
	Class    string       `json:"class"`
	Instance string       `json:"instance"`
	Title    string       `json:"title"`
	Strategy string       `json:"strategy"`
	Rules    []MatchTrace `json:"rules"`
	Result   Result       `json:"result"`
}

// Explain classifies the window while recording every pattern decision.
// Applied is false for matching rules skipped by first-match classification.
func (t *Table) Explain(class, instance, title string) Explanation {
	exp := Explanation{
		Class:    orBroken(class),
		Instance: orBroken(instance),
		Title:    title,
		Strategy: t.Strategy().String(),
		Result:   t.Classify(class, instance, title),
	}
	if t == nil {
		return exp
	}
	applied := map[int]bool{}
	for _, idx := range exp.Result.Matched {
		applied[idx] = true
	}
	for i := range t.rules {
		r := &t.rules[i]
		ok, fields := r.match(exp.Class, exp.Instance, title, true)
		exp.Rules = append(exp.Rules, MatchTrace{
			Index:   i,
			Rule:    r.Name,
			Matched: ok,
			Applied: applied[i],
			Fields:  fields,
		})
	}
	return exp
}
