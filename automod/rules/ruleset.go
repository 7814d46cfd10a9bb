package rules

// An ordered, validated set of rules for one community. Rules are sorted by ascending priority.
type RuleSet struct {
	Rules []Rule
}

func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rules)
}

// Distinct recognizer language pairs needed by the rules, in priority order. Pairs with both backends disabled are skipped.
func (rs *RuleSet) LanguagePairs() []LanguagePair {
	if rs == nil {
		return nil
	}
	var out []LanguagePair
	seen := make(map[LanguagePair]bool)
	for _, r := range rs.Rules {
		if seen[r.Recognizers] || !r.Recognizers.Usable() {
			continue
		}
		seen[r.Recognizers] = true
		out = append(out, r.Recognizers)
	}
	return out
}

// Whether any rule applies to media of the given class.
func (rs *RuleSet) Covers(kind ContentType) bool {
	if rs == nil {
		return false
	}
	for i := range rs.Rules {
		if rs.Rules[i].AppliesTo(kind) {
			return true
		}
	}
	return false
}

func (rs *RuleSet) ByPriority(priority int) (*Rule, bool) {
	if rs == nil {
		return nil, false
	}
	for i := range rs.Rules {
		if rs.Rules[i].Priority == priority {
			return &rs.Rules[i], true
		}
	}
	return nil, false
}
