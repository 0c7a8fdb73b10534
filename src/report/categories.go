package report

import (
	"strings"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

type RejectionCategory string

const (
	CategoryInverted      RejectionCategory = "Inverted Term Structure"
	CategoryDTE           RejectionCategory = "DTE Out of Range"
	CategoryMismatch      RejectionCategory = "Calculation Mismatch"
	CategoryForwardFactor RejectionCategory = "Forward Factor Too Low"
	CategoryIV            RejectionCategory = "IV Out of Range"
	CategoryOther         RejectionCategory = "Other"
)

// RejectionCategories is the display order of the rejected section.
var RejectionCategories = []RejectionCategory{
	CategoryInverted,
	CategoryDTE,
	CategoryMismatch,
	CategoryForwardFactor,
	CategoryIV,
	CategoryOther,
}

// Categorize buckets a rejection reason. Order matters: earnings conflicts
// mention IV and must be caught first.
func Categorize(reason string) RejectionCategory {
	switch {
	case strings.Contains(reason, "Inverted term structure"), strings.Contains(reason, "FALSE SIGNAL"):
		return CategoryInverted
	case strings.Contains(reason, "DTE"):
		return CategoryDTE
	case strings.Contains(reason, "calculation mismatch"):
		return CategoryMismatch
	case strings.Contains(reason, "Forward Factor too low"):
		return CategoryForwardFactor
	case strings.Contains(reason, "IV"):
		return CategoryIV
	default:
		return CategoryOther
	}
}

// GroupRejections groups analyses by the category of their first rejection reason.
func GroupRejections(rejected []*eventmodels.Analysis) map[RejectionCategory][]*eventmodels.Analysis {
	groups := make(map[RejectionCategory][]*eventmodels.Analysis)
	for _, a := range rejected {
		category := Categorize(a.FirstRejectionReason())
		groups[category] = append(groups[category], a)
	}

	return groups
}
