// Package viewstate implements the paging rules of the command browser and the
// per-connection controller that owns the active section and page.
package viewstate

import (
	"github.com/jojobot/website/internal/catalog"
)

// PageSize is the number of commands shown per page.
const PageSize = 6

// TotalPages returns the number of pages needed to show every command of s.
// An empty section still has one (empty) page.
func TotalPages(s catalog.Section) int {
	n := len(s.Commands)
	if n == 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// PageSlice returns the commands shown on page (1-based).
// Pages outside [1, TotalPages(s)] yield an empty slice.
func PageSlice(s catalog.Section, page int) []catalog.Command {
	if page < 1 {
		return []catalog.Command{}
	}
	start := (page - 1) * PageSize
	if start >= len(s.Commands) {
		return []catalog.Command{}
	}
	end := min(start+PageSize, len(s.Commands))

	out := make([]catalog.Command, end-start)
	copy(out, s.Commands[start:end])
	return out
}

// ViewState is the navigational state of one viewer.
type ViewState struct {
	ActiveSection string `json:"section"`
	CurrentPage   int    `json:"page"`
}

// Default returns the state shown to a new viewer.
func Default() ViewState {
	return ViewState{ActiveSection: catalog.DefaultSectionKey, CurrentPage: 1}
}
