package llm

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ParseReply extracts a JSON object from a model reply. Markdown fences and any
// chatter around the outermost braces are discarded. Numbers are kept as
// json.Number so integers survive intact. Anything unparseable yields an empty map.
func ParseReply(reply string) map[string]any {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.Trim(s, "`")
	}
	if i, j := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); i >= 0 && j > i {
		s = s[i : j+1]
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
