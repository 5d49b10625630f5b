package importer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPayload  = errors.New("payload has no sections")
	ErrNoLayouts     = errors.New("catalog has no layouts")
	ErrUnknownLayout = errors.New("unknown layout")
)

// AmbiguousLayoutError asks the caller to pick one of several equally good
// templates and retry with ConvertWithLayout.
type AmbiguousLayoutError struct {
	Sections   int
	Exact      bool
	Candidates []Candidate
}

type Candidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Doors int    `json:"doors"`
	Rows  int    `json:"rows"`
}

func (e *AmbiguousLayoutError) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = c.ID
	}
	return fmt.Sprintf("%d sections match several layouts: %s", e.Sections, strings.Join(ids, ", "))
}
