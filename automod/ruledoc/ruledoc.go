// Splits a moderation rule document in to per-rule records.
//
// A document is a sequence of YAML sections separated by lines beginning with
// three dashes. Sections which decode to something other than a mapping (for
// example, sections containing only comments) are skipped.
package ruledoc

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is one decoded section, prior to validation.
type Record map[string]any

// SyntaxError indicates that a single section failed to decode. Section is 1-based.
type SyntaxError struct {
	Section int
	Err     error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("YAML parsing error in section %d: %v", e.Section, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

var separatorRegex = regexp.MustCompile(`(?m)^---[^\n]*$`)

// Splits raw document text in to sections, in order. The separator lines themselves are dropped.
func Split(doc string) []string {
	return separatorRegex.Split(doc, -1)
}

// Parses every section of the document. Either every section decodes, or an error naming the first bad section is returned.
func Parse(doc string) ([]Record, error) {
	var out []Record
	for i, section := range Split(doc) {
		section = strings.Trim(section, "\r\n")
		if strings.TrimSpace(section) == "" {
			continue
		}
		var val any
		if err := yaml.Unmarshal([]byte(section), &val); err != nil {
			return nil, &SyntaxError{Section: i + 1, Err: err}
		}
		m, ok := val.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Record(m))
	}
	return out, nil
}
