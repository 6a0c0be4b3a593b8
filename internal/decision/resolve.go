package decision

import (
	"fmt"
	"strings"
)

// priority orders decisions from most to least severe.
var priority = []Decision{Quarantine, Reject, Secondary, Accept}

// Resolve picks the most severe decision among candidates. No candidates
// means Accept.
func Resolve(candidates []Decision) Decision {
	for _, d := range priority {
		for _, c := range candidates {
			if c == d {
				return d
			}
		}
	}
	return Accept
}

func ParseDecision(raw string) (Decision, error) {
	raw = strings.TrimSpace(raw)
	for _, d := range priority {
		if strings.EqualFold(raw, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown decision %q", raw)
}
