package constants

// Category is the semantic class of a template field as seen by the rule-based extractor.
type Category string

const (
	CategoryEmail    Category = "email"
	CategoryCurrency Category = "currency"
	CategoryAmount   Category = "amount"
	CategoryDate     Category = "date"
	CategoryFund     Category = "fund"
	CategoryManager  Category = "manager"
	CategoryInvestor Category = "investor"
	CategoryNone     Category = "none"
)

var allCategories = []Category{
	CategoryEmail,
	CategoryCurrency,
	CategoryAmount,
	CategoryDate,
	CategoryFund,
	CategoryManager,
	CategoryInvestor,
	CategoryNone,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Fixed-catalog template identifiers.
const (
	CatalogTemplate1 = "template1"
	CatalogTemplate2 = "template2"
)
