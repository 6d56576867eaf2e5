// Package catalog holds the fixed list of Jojo Bot commands shown on the website,
// grouped into sidebar sections.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnknownSection is returned when a section key is not part of the catalog.
var ErrUnknownSection = errors.New("unknown section")

// DefaultSectionKey is the section shown when nothing has been selected yet.
const DefaultSectionKey = "aura"

// Icon is a symbolic glyph reference resolved by the rendering layer.
type Icon int

const (
	IconCommand Icon = iota
	IconMusic
	IconShield
	IconGamepad
	IconSparkles
)

func (i Icon) String() string {
	switch i {
	case IconCommand:
		return "command"
	case IconMusic:
		return "music"
	case IconShield:
		return "shield"
	case IconGamepad:
		return "gamepad"
	case IconSparkles:
		return "sparkles"
	default:
		return "unknown"
	}
}

// Command documents a single bot command.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Usage may hold several invocations separated by newlines.
	Usage string `json:"usage"`
}

// Section is a named category of commands. Command order is display order.
type Section struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Icon     Icon      `json:"-"`
	Commands []Command `json:"commands"`
}

// Len returns the number of commands in the section.
func (s Section) Len() int {
	return len(s.Commands)
}

// Catalog is an immutable, ordered set of sections.
type Catalog struct {
	order    []string
	sections map[string]Section
}

// New builds a catalog from sections in display order.
// Duplicate or empty keys are rejected.
func New(sections ...Section) (*Catalog, error) {
	c := &Catalog{
		order:    make([]string, 0, len(sections)),
		sections: make(map[string]Section, len(sections)),
	}
	for _, s := range sections {
		if s.Key == "" {
			return nil, errors.New("catalog: section key is empty")
		}
		if _, dup := c.sections[s.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate section key %q", s.Key)
		}
		s.Commands = cloneCommands(s.Commands)
		c.order = append(c.order, s.Key)
		c.sections[s.Key] = s
	}
	return c, nil
}

// Get returns the section for key.
func (c *Catalog) Get(key string) (Section, error) {
	s, ok := c.sections[key]
	if !ok {
		return Section{}, fmt.Errorf("%w: %q", ErrUnknownSection, key)
	}
	s.Commands = cloneCommands(s.Commands)
	return s, nil
}

// MustGet is like Get but panics for unknown keys. Use it only with constant keys.
func (c *Catalog) MustGet(key string) Section {
	s, err := c.Get(key)
	if err != nil {
		panic(err)
	}
	return s
}

// Has reports whether key names a section.
func (c *Catalog) Has(key string) bool {
	_, ok := c.sections[key]
	return ok
}

// Keys returns the section keys in display order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

// Sections returns every section in display order.
func (c *Catalog) Sections() []Section {
	out := make([]Section, 0, len(c.order))
	for _, key := range c.order {
		s := c.sections[key]
		s.Commands = cloneCommands(s.Commands)
		out = append(out, s)
	}
	return out
}

// Len returns the number of sections.
func (c *Catalog) Len() int {
	return len(c.order)
}

// CommandCount returns the total number of commands across all sections.
func (c *Catalog) CommandCount() int {
	n := 0
	for _, s := range c.sections {
		n += len(s.Commands)
	}
	return n
}

// Match is a search hit.
type Match struct {
	SectionKey string  `json:"section"`
	Command    Command `json:"command"`
	Rank       int     `json:"rank"`
}

// Search fuzzy-matches query against command names, falling back to a
// substring match on descriptions. Usage strings are not searched.
// Name hits rank ahead of description hits; ties keep catalog order.
// An empty query returns nil.
func (c *Catalog) Search(query string) []Match {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil
	}

	var byName, byDesc []Match
	for _, key := range c.order {
		for _, cmd := range c.sections[key].Commands {
			name := strings.ToLower(cmd.Name)
			if rank := fuzzy.RankMatchNormalizedFold(query, name); rank >= 0 {
				byName = append(byName, Match{SectionKey: key, Command: cmd, Rank: rank})
				continue
			}
			if strings.Contains(strings.ToLower(cmd.Description), query) {
				byDesc = append(byDesc, Match{SectionKey: key, Command: cmd, Rank: -1})
			}
		}
	}

	sortByRank(byName)
	return append(byName, byDesc...)
}

// sortByRank is a stable insertion sort; match lists are small.
func sortByRank(matches []Match) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Rank < matches[j-1].Rank; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}

func cloneCommands(cmds []Command) []Command {
	if cmds == nil {
		return nil
	}
	out := make([]Command, len(cmds))
	copy(out, cmds)
	return out
}
