package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/pdfsheets/internal/templates"
)

// MaxPromptTextRunes caps how much document text is sent to a model.
const MaxPromptTextRunes = 15000

// SystemPrompt is sent ahead of every chat-completions prompt.
const SystemPrompt = "You output strict JSON only."

// BuildPrompt renders the extraction instructions for tpl followed by the
// document text, truncated to MaxPromptTextRunes.
func BuildPrompt(tpl *templates.Template, text string) string {
	var b strings.Builder
	if tpl.MultiSheet {
		b.WriteString("You are a data extraction expert for private equity fund data.\n")
		fmt.Fprintf(&b, "Extract data from this PDF text according to %s template.\n\n", tpl.ID)
		b.WriteString("The template has multiple sheets with the following structure:\n\n")
		for i, s := range tpl.Sheets() {
			keys := make([]string, len(s.Fields))
			for j, f := range s.Fields {
				keys[j] = f.Key
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
			fmt.Fprintf(&b, "   Description: %s\n", s.Description)
			fmt.Fprintf(&b, "   Fields: %s\n\n", strings.Join(keys, ", "))
		}
		b.WriteString("Extract all relevant data and organize it by sheet. ")
		b.WriteString("For each field, provide the extracted value or empty string if not found.\n")
		b.WriteString("Output only valid JSON with all field keys from all sheets.\n")
	} else {
		b.WriteString("You are a data extraction expert.\n")
		fmt.Fprintf(&b, "Extract the following fields from this PDF text according to %s:\n", tpl.ID)
		for _, k := range tpl.FieldOrder() {
			b.WriteString("- ")
			b.WriteString(k)
			b.WriteByte('\n')
		}
		b.WriteString("\nOutput only valid JSON (no markdown), with keys matching the fields.\n")
		b.WriteString("If a field is missing, use an empty string.\n")
	}
	b.WriteString("PDF Text:\n")
	b.WriteString(truncateRunes(text, MaxPromptTextRunes))
	return b.String()
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
