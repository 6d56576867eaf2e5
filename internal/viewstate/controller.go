package viewstate

import (
	"github.com/jojobot/website/internal/catalog"
)

// Controller owns one ViewState and applies navigation intents to it.
// A Controller is not safe for concurrent use; each live connection has its own.
type Controller struct {
	cat   *catalog.Catalog
	state ViewState
}

// NewController returns a controller over cat positioned at the default state.
// A nil catalog means catalog.Default.
func NewController(cat *catalog.Catalog) *Controller {
	if cat == nil {
		cat = catalog.Default
	}
	c := &Controller{cat: cat, state: Default()}
	if !cat.Has(c.state.ActiveSection) {
		if keys := cat.Keys(); len(keys) > 0 {
			c.state.ActiveSection = keys[0]
		}
	}
	return c
}

// SelectSection makes key the active section and resets the page to 1.
// Unknown keys return catalog.ErrUnknownSection and leave the state untouched.
func (c *Controller) SelectSection(key string) error {
	if _, err := c.cat.Get(key); err != nil {
		return err
	}
	c.state = ViewState{ActiveSection: key, CurrentPage: 1}
	return nil
}

// GoToPage moves to page when it is in range and reports whether it did.
func (c *Controller) GoToPage(page int) bool {
	if page < 1 || page > c.TotalPages() {
		return false
	}
	c.state.CurrentPage = page
	return true
}

// Prev moves one page back.
func (c *Controller) Prev() bool {
	return c.GoToPage(c.state.CurrentPage - 1)
}

// Next moves one page forward.
func (c *Controller) Next() bool {
	return c.GoToPage(c.state.CurrentPage + 1)
}

// CanPrev is false exactly on the first page.
func (c *Controller) CanPrev() bool {
	return c.state.CurrentPage > 1
}

// CanNext is false exactly on the last page.
func (c *Controller) CanNext() bool {
	return c.state.CurrentPage < c.TotalPages()
}

// Section returns the active section.
func (c *Controller) Section() catalog.Section {
	s, _ := c.cat.Get(c.state.ActiveSection)
	return s
}

// Page returns the commands visible on the current page.
func (c *Controller) Page() []catalog.Command {
	return PageSlice(c.Section(), c.state.CurrentPage)
}

// TotalPages returns the page count of the active section.
func (c *Controller) TotalPages() int {
	return TotalPages(c.Section())
}

// State returns a copy of the current state.
func (c *Controller) State() ViewState {
	return c.state
}

// Catalog returns the catalog the controller navigates.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.cat
}

// Restore adopts want, falling back to the first page of the default
// section for unknown keys and clamping the page into range.
func (c *Controller) Restore(want ViewState) ViewState {
	if err := c.SelectSection(want.ActiveSection); err != nil {
		c.state = NewController(c.cat).state
	}
	total := c.TotalPages()
	switch {
	case want.CurrentPage < 1:
		c.state.CurrentPage = 1
	case want.CurrentPage > total:
		c.state.CurrentPage = total
	default:
		c.state.CurrentPage = want.CurrentPage
	}
	return c.state
}
