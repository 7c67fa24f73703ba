// Package report decomposes free-text model output into named sections.
package report

import (
	"time"
)

// ErrorSentinel is substituted for every section when generation fails, so a
// failed report is distinguishable from one the model left empty.
const ErrorSentinel = "Error generating this section. Please try again."

// StructuredReport is the parsed result of one generation job.
type StructuredReport struct {
	Variant     string            `json:"variant"`
	Sections    map[string]string `json:"sections"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Failed returns a report body with every expected section set to the error
// sentinel. Used on any generation failure so the rendered result always has
// a uniform shape.
func Failed(sections []string) map[string]string {
	out := make(map[string]string, len(sections))
	for _, s := range sections {
		out[s] = ErrorSentinel
	}
	return out
}
