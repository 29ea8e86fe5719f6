// Package window decides when voting is open. The portal accepts votes for a
// fixed three-day span starting at the instant the recurrence rule yields.
package window

import "time"

// Length is the fixed duration of every voting window.
const Length = 72 * time.Hour

// Window is the half-open interval [Start, Start+Length) during which votes
// are accepted.
type Window struct {
	Start time.Time
}

// End is the first instant at which the window is closed again.
func (w Window) End() time.Time {
	return w.Start.Add(Length)
}

// Contains reports whether t falls inside the window. The end instant is
// excluded: a vote at exactly Start+Length is late.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End())
}

// Key is the window's canonical string form, used as the ledger document key.
func (w Window) Key() string {
	return w.Start.UTC().Format("2006-01-02 15:04:05")
}

// Rule yields the start of the voting window relevant at a given instant.
//
// The real recurrence (the next occurrence of the named election month) is
// still unspecified by the electoral office; FixedStart stands in until that
// is decided, so the rule is an interface rather than a constant.
type Rule interface {
	Next(now time.Time) time.Time
}

// RuleFunc adapts a plain function to a Rule.
type RuleFunc func(now time.Time) time.Time

func (f RuleFunc) Next(now time.Time) time.Time { return f(now) }

// FixedStart is a Rule that always yields the same start instant.
type FixedStart time.Time

func (r FixedStart) Next(time.Time) time.Time { return time.Time(r) }

// Policy computes the active voting window from a recurrence rule.
type Policy struct {
	rule Rule
}

func NewPolicy(rule Rule) *Policy {
	return &Policy{rule: rule}
}

// Current returns the single window computable from now.
func (p *Policy) Current(now time.Time) Window {
	return Window{Start: p.rule.Next(now)}
}
