package source

import "strings"

// Decision is what to do with an install path that already exists.
type Decision int

const (
	// RefreshInPlace pulls the latest changes into the existing working copy.
	RefreshInPlace Decision = iota
	// ReplaceFresh removes the working copy and clones it again.
	ReplaceFresh
)

func (d Decision) String() string {
	switch d {
	case ReplaceFresh:
		return "replace-fresh"
	default:
		return "refresh-in-place"
	}
}

// ParseDecision maps a confirmation answer to a Decision. Only a single "y"
// (any case) is affirmative, everything else keeps the existing copy.
func ParseDecision(answer string) Decision {
	if strings.EqualFold(strings.TrimSpace(answer), "y") {
		return ReplaceFresh
	}

	return RefreshInPlace
}

type Outcome int

const (
	Cloned Outcome = iota
	Replaced
	Refreshed
)

func (o Outcome) String() string {
	switch o {
	case Cloned:
		return "cloned"
	case Replaced:
		return "replaced"
	case Refreshed:
		return "refreshed"
	default:
		return "unknown"
	}
}
