package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/pdfsheets/constants"
	"github.com/joseph-ayodele/pdfsheets/internal/entity"
	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

const maxLineValue = 120

var (
	reEmail        = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reCurrencyCode = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|INR|AED|JPY|CHF|CNY|AUD|CAD)\b`)
	reCurrencySym  = regexp.MustCompile(`[€£$]`)
	reAmount       = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+\.\d+`)
	reDates        = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`),
		regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},\s+\d{4}\b`),
	}
	reFundLine     = regexp.MustCompile(`\bFund\b`)
	reManagerLine  = regexp.MustCompile(`(?i)\bManager\b|General Partner|Investment Manager`)
	reInvestorLine = regexp.MustCompile(`(?i)\bInvestor\b|Limited Partner|LP\b`)
	reLabel        = regexp.MustCompile(`.*?:\s*`)
)

var currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP"}

// matchers fill one category from the document text.
var matchers = map[constants.Category]func(text string) string{
	constants.CategoryEmail:    matchEmail,
	constants.CategoryCurrency: matchCurrency,
	constants.CategoryAmount:   matchAmount,
	constants.CategoryDate:     matchDate,
	constants.CategoryFund:     matchFund,
	constants.CategoryManager:  func(text string) string { return labelledLine(text, reManagerLine) },
	constants.CategoryInvestor: func(text string) string { return labelledLine(text, reInvestorLine) },
}

// Rules is the deterministic last tier. It always succeeds.
type Rules struct{}

func (Rules) Tier() constants.Tier { return constants.TierRules }

func (Rules) Attempt(_ context.Context, text string, tpl *templates.Template) (entity.Row, bool) {
	return RuleRow(text, tpl), true
}

// RuleRow fills every template key from the heuristic its category maps to.
// Keys with no category, and categories with no match, are "".
func RuleRow(text string, tpl *templates.Template) entity.Row {
	keys := tpl.UniqueKeys()
	row := make(entity.Row, len(keys))
	cache := make(map[constants.Category]string)
	for _, k := range keys {
		cat := Classify(k)
		v, seen := cache[cat]
		if !seen {
			if m, ok := matchers[cat]; ok {
				v = m(text)
			}
			cache[cat] = v
		}
		row[k] = v
	}
	return row
}

func matchEmail(text string) string {
	return reEmail.FindString(text)
}

func matchCurrency(text string) string {
	if m := reCurrencyCode.FindString(text); m != "" {
		return strings.ToUpper(m)
	}
	if m := reCurrencySym.FindString(text); m != "" {
		return currencySymbols[m]
	}
	return ""
}

// matchAmount returns the numerically largest amount written with thousands
// separators or decimals. Bare integers are skipped since they are mostly years,
// page numbers and ordinals.
func matchAmount(text string) string {
	best, bestVal := "", -1.0
	for _, m := range reAmount.FindAllString(text, -1) {
		f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err != nil {
			continue
		}
		if f > bestVal {
			best, bestVal = m, f
		}
	}
	return best
}

func matchDate(text string) string {
	for _, re := range reDates {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

func matchFund(text string) string {
	for _, ln := range strings.Split(text, "\n") {
		if reFundLine.MatchString(ln) {
			return capRunes(strings.TrimSpace(ln), maxLineValue)
		}
	}
	return ""
}

func labelledLine(text string, re *regexp.Regexp) string {
	for _, ln := range strings.Split(text, "\n") {
		if re.MatchString(ln) {
			return capRunes(strings.TrimSpace(reLabel.ReplaceAllString(ln, "")), maxLineValue)
		}
	}
	return ""
}

func capRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
