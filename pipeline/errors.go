package pipeline

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownPipelineError means the requested pipeline name is not registered.
type UnknownPipelineError struct {
	Name      string
	Available []string
}

func (e *UnknownPipelineError) Error() string {
	return fmt.Sprintf("unknown pipeline %q, available: %v", e.Name, strings.Join(e.Available, ", "))
}

// PartialRunFailure means at least one pipeline failed during a run of all
// pipelines. The other pipelines still ran to completion.
type PartialRunFailure struct {
	Total    int
	Failures map[string]error
}

func (e *PartialRunFailure) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%v: %v", name, e.Failures[name]))
	}
	return fmt.Sprintf("%v of %v pipelines failed: %v", len(names), e.Total, strings.Join(parts, "; "))
}
