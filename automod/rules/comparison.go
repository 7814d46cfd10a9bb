package rules

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
)

func (op Operator) valid() bool {
	switch op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		return true
	}
	return false
}

type TimeUnit string

const (
	UnitMinutes TimeUnit = "minutes"
	UnitHours   TimeUnit = "hours"
	UnitDays    TimeUnit = "days"
	UnitWeeks   TimeUnit = "weeks"
	UnitMonths  TimeUnit = "months"
	UnitYears   TimeUnit = "years"
)

// months and years are fixed-length approximations
var unitDurations = map[TimeUnit]time.Duration{
	UnitMinutes: time.Minute,
	UnitHours:   time.Hour,
	UnitDays:    24 * time.Hour,
	UnitWeeks:   7 * 24 * time.Hour,
	UnitMonths:  30 * 24 * time.Hour,
	UnitYears:   365 * 24 * time.Hour,
}

// A parsed conditional like ">= 80" or "< 7 days". Unit is empty for plain numeric comparisons.
type Comparison struct {
	Op        Operator
	Threshold int64
	Unit      TimeUnit
}

func compare[T cmp.Ordered](op Operator, val, threshold T) bool {
	switch op {
	case OpGreater:
		return val > threshold
	case OpGreaterEqual:
		return val >= threshold
	case OpLess:
		return val < threshold
	case OpLessEqual:
		return val <= threshold
	}
	return false
}

// Tests a live attribute value against the comparison.
func (c Comparison) Match(val int64) bool {
	return compare(c.Op, val, c.Threshold)
}

// Tests a duration (eg, account age) against a time comparison.
func (c Comparison) MatchDuration(d time.Duration) bool {
	unit, ok := unitDurations[c.Unit]
	if !ok {
		return false
	}
	return compare(c.Op, d, thresholdDuration(c.Threshold, unit))
}

// Threshold times unit, saturating at the limits of time.Duration.
func thresholdDuration(n int64, unit time.Duration) time.Duration {
	if !durationFits(n, unit) {
		if n > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return time.Duration(n) * unit
}

func durationFits(n int64, unit time.Duration) bool {
	return n <= int64(math.MaxInt64/unit) && n >= int64(math.MinInt64/unit)
}

func (c Comparison) String() string {
	if c.Unit != "" {
		return fmt.Sprintf("%s %d %s", c.Op, c.Threshold, c.Unit)
	}
	return fmt.Sprintf("%s %d", c.Op, c.Threshold)
}

// Parses "<op> <integer>" text. Tokens are whitespace-separated.
func ParseComparison(field, raw string) (Comparison, error) {
	parts := strings.Fields(raw)
	if len(parts) != 2 {
		return Comparison{}, &ConditionalSyntaxError{Field: field, Raw: raw, Reason: "expected an operator and a number, e.g. \"> 80\""}
	}
	return parseOpThreshold(field, raw, parts[0], parts[1])
}

// Parses "<op> <integer> <unit>" text, eg "> 30 days".
func ParseTimeComparison(field, raw string) (Comparison, error) {
	parts := strings.Fields(raw)
	if len(parts) != 3 {
		return Comparison{}, &ConditionalSyntaxError{Field: field, Raw: raw, Reason: "expected an operator, a number and a time unit, e.g. \">= 7 days\""}
	}
	c, err := parseOpThreshold(field, raw, parts[0], parts[1])
	if err != nil {
		return Comparison{}, err
	}
	unit := TimeUnit(strings.ToLower(parts[2]))
	if _, ok := unitDurations[unit]; !ok {
		return Comparison{}, &ConditionalSyntaxError{Field: field, Raw: raw, Reason: "time unit must be one of minutes, hours, days, weeks, months, years"}
	}
	if !durationFits(c.Threshold, unitDurations[unit]) {
		return Comparison{}, &ValueRangeError{Field: field, Reason: fmt.Sprintf("threshold %d %s is too large", c.Threshold, unit)}
	}
	c.Unit = unit
	return c, nil
}

func parseOpThreshold(field, raw, op, num string) (Comparison, error) {
	o := Operator(op)
	if !o.valid() {
		return Comparison{}, &ConditionalSyntaxError{Field: field, Raw: raw, Reason: "operator must be one of >, >=, <, <="}
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return Comparison{}, &ConditionalSyntaxError{Field: field, Raw: raw, Reason: "threshold is not a whole number"}
	}
	return Comparison{Op: o, Threshold: n}, nil
}
