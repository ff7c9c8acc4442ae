package inventory

import (
	"fmt"
	"strings"
)

// OverdraftPolicy decides what happens when a decrease exceeds the quantity
// on hand.
type OverdraftPolicy string

const (
	// OverdraftClamp floors the quantity at zero and records the discarded
	// amount on the audit line.
	OverdraftClamp OverdraftPolicy = "clamp"
	// OverdraftReject fails the whole batch with ErrInsufficientStock.
	OverdraftReject OverdraftPolicy = "reject"
)

// DefaultOverdraftPolicy keeps the tolerant floor-at-zero behavior.
const DefaultOverdraftPolicy = OverdraftClamp

// IsValid returns true if the policy is known
func (p OverdraftPolicy) IsValid() bool {
	return p == OverdraftClamp || p == OverdraftReject
}

// String returns the string representation
func (p OverdraftPolicy) String() string {
	return string(p)
}

// ParseOverdraftPolicy parses a configured policy name. Empty means default.
func ParseOverdraftPolicy(s string) (OverdraftPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultOverdraftPolicy, nil
	}
	p := OverdraftPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown overdraft policy %q (want clamp or reject)", s)
	}
	return p, nil
}
