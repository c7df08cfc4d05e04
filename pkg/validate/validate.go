// Package validate checks game documents before they reach an engine: a JSON
// schema pass over the raw file and a referential pass over the decoded document.
package validate

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

//go:embed document.schema.json
var documentSchema string

const schemaURL = "document.schema.json"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found in a document. Path points at the offending
// value, e.g. "quests[0].steps[1].onComplete[0]".
type Issue struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// Errors counts issues with error severity.
func Errors(issues []Issue) int {
	n := 0
	for _, i := range issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString(schemaURL, documentSchema)
})

// Schema validates raw JSON against the document schema. The error is only
// set when data is not JSON at all or the schema fails to compile.
func Schema(data []byte) ([]Issue, error) {
	sch, err := compiled()
	if err != nil {
		return nil, fmt.Errorf("failed to compile document schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	err = sch.Validate(v)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	var issues []Issue
	collectSchemaIssues(verr, &issues)
	sort.SliceStable(issues, func(a, b int) bool { return issues[a].Path < issues[b].Path })
	return issues, nil
}

// collectSchemaIssues flattens the leaves of a validation error tree.
func collectSchemaIssues(verr *jsonschema.ValidationError, out *[]Issue) {
	if len(verr.Causes) == 0 {
		*out = append(*out, Issue{
			Severity: SeverityError,
			Path:     pointerToPath(verr.InstanceLocation),
			Message:  verr.Message,
		})
		return
	}
	for _, c := range verr.Causes {
		collectSchemaIssues(c, out)
	}
}

// pointerToPath turns "/quests/0/steps/1" into "quests[0].steps[1]".
func pointerToPath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if part == "" {
			continue
		}
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Bytes runs both passes over a JSON document. Schema errors stop the run
// before decoding; the referential pass sees the expanded document.
func Bytes(data []byte) ([]Issue, error) {
	issues, err := Schema(data)
	if err != nil {
		return nil, err
	}
	if Errors(issues) > 0 {
		return issues, nil
	}
	var doc game.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return append(issues, Issue{Severity: SeverityError, Message: err.Error()}), nil
	}
	storage.Expand(&doc)
	return append(issues, Document(&doc)...), nil
}
