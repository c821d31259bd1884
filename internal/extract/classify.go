package extract

import (
	"strings"

	"github.com/joseph-ayodele/pdfsheets/constants"
)

// Classify maps a normalized field key to the heuristic that fills it.
// Checks run in a fixed order, so "manager_email" is an email field and
// "fund_currency" a currency field.
func Classify(key string) constants.Category {
	k := strings.ToLower(key)
	tokens := make(map[string]struct{})
	for _, t := range strings.Split(k, "_") {
		tokens[t] = struct{}{}
	}
	has := func(words ...string) bool {
		for _, w := range words {
			if _, ok := tokens[w]; ok {
				return true
			}
		}
		return false
	}

	switch {
	case strings.Contains(k, "email"):
		return constants.CategoryEmail
	case strings.Contains(k, "currency"):
		return constants.CategoryCurrency
	case strings.Contains(k, "date"):
		return constants.CategoryDate
	case has("amount", "commitment", "total"):
		return constants.CategoryAmount
	case has("manager", "gp") || strings.Contains(k, "general_partner"):
		return constants.CategoryManager
	case has("investor", "lp") || strings.Contains(k, "limited_partner"):
		return constants.CategoryInvestor
	case has("fund"):
		return constants.CategoryFund
	default:
		return constants.CategoryNone
	}
}
