package components

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/jojobot/website/internal/catalog"
)

// Slot names patched by the live client.
const (
	SlotSidebar      = "sidebar"
	SlotSectionTitle = "section-title"
	SlotPager        = "pager"
	SlotCommands     = "commands"
)

// Live event names emitted by the docs markup.
const (
	EventSelect = "select"
	EventPrev   = "prev"
	EventNext   = "next"
)

// SidebarItem is one section button in the sidebar.
type SidebarItem struct {
	Key    string
	Title  string
	Icon   catalog.Icon
	Active bool
}

// PagerOptions describes the pagination controls.
type PagerOptions struct {
	Section string
	Page    int
	Total   int
	CanPrev bool
	CanNext bool
}

// DocsOptions configures the command documentation block.
type DocsOptions struct {
	Sidebar      []SidebarItem
	SectionTitle string
	// Subtitle is the heading above the command list
	Subtitle string
	Commands []catalog.Command
	Pager    PagerOptions
}

// StateURL returns the deep link for a section and page.
func StateURL(section string, page int) string {
	q := url.Values{}
	q.Set("section", section)
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return "/?" + q.Encode() + "#commands"
}

// RenderDocs generates the sidebar and the paginated command list.
// Each slot is a sibling so it can be patched on its own.
func RenderDocs(opts DocsOptions) string {
	var sb strings.Builder

	subtitle := opts.Subtitle
	if subtitle == "" {
		subtitle = "Available Commands"
	}

	sb.WriteString(`<section class="section" id="commands" aria-labelledby="docs-title">`)
	sb.WriteString("\n")
	sb.WriteString(`<div class="container docs">`)
	sb.WriteString("\n")

	sb.WriteString(RenderSidebar(opts.Sidebar))

	sb.WriteString(`<div class="docs-main" id="main-content">`)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<h2 id="docs-title" data-slot="%s">%s</h2>`,
		SlotSectionTitle, html.EscapeString(opts.SectionTitle)))
	sb.WriteString("\n")

	sb.WriteString(`<div class="docs-header">`)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<h3 class="docs-subtitle">%s</h3>`, html.EscapeString(subtitle)))
	sb.WriteString("\n")
	sb.WriteString(RenderPager(opts.Pager))
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	sb.WriteString(RenderCommandList(opts.Commands))

	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</div>`)
	sb.WriteString("\n")
	sb.WriteString(`</section>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderSidebar generates the section list. Every item is a plain link
// so the page also works without the live client.
func RenderSidebar(items []SidebarItem) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<nav class="sidebar" data-slot="%s" aria-label="Command sections">`, SlotSidebar))
	sb.WriteString("\n")

	for _, item := range items {
		class := "sidebar-item"
		current := ""
		if item.Active {
			class += " active"
			current = ` aria-current="page"`
		}
		sb.WriteString(fmt.Sprintf(`<a href="%s" class="%s"%s lv-click="%s" lv-value-section="%s">`,
			html.EscapeString(StateURL(item.Key, 1)),
			class,
			current,
			EventSelect,
			html.EscapeString(item.Key)))
		sb.WriteString(IconSVG(item.Icon))
		sb.WriteString(`<span>`)
		sb.WriteString(html.EscapeString(item.Title))
		sb.WriteString(`</span></a>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</nav>`)
	sb.WriteString("\n")

	return sb.String()
}

// RenderPager generates the prev/next controls. The slot stays in the
// document but is empty when the section fits on one page.
func RenderPager(opts PagerOptions) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<div class="pager" data-slot="%s">`, SlotPager))
	if opts.Total > 1 {
		sb.WriteString("\n")
		sb.WriteString(pagerButton(opts.CanPrev, StateURL(opts.Section, opts.Page-1), EventPrev, "Previous page", chevronLeftSVG()))
		sb.WriteString(fmt.Sprintf(`<span>Page %d of %d</span>`, opts.Page, opts.Total))
		sb.WriteString("\n")
		sb.WriteString(pagerButton(opts.CanNext, StateURL(opts.Section, opts.Page+1), EventNext, "Next page", chevronRightSVG()))
	}
	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	return sb.String()
}

func pagerButton(enabled bool, href, event, label, icon string) string {
	if !enabled {
		return fmt.Sprintf(`<span class="pager-btn disabled" aria-disabled="true" aria-label="%s">%s</span>`+"\n", label, icon)
	}
	return fmt.Sprintf(`<a href="%s" class="pager-btn" lv-click="%s" aria-label="%s">%s</a>`+"\n",
		html.EscapeString(href), event, label, icon)
}

// RenderCommandList generates one card per command.
func RenderCommandList(commands []catalog.Command) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<div class="command-list" data-slot="%s">`, SlotCommands))
	sb.WriteString("\n")

	if len(commands) == 0 {
		sb.WriteString(`<p class="empty">No commands in this section yet.</p>`)
		sb.WriteString("\n")
	}

	for _, cmd := range commands {
		sb.WriteString(`<article class="command animate-fade-in">`)
		sb.WriteString(`<h4 class="command-name">`)
		sb.WriteString(html.EscapeString(cmd.Name))
		sb.WriteString(`</h4>`)
		sb.WriteString(`<p class="command-desc">`)
		sb.WriteString(html.EscapeString(cmd.Description))
		sb.WriteString(`</p>`)
		sb.WriteString(RenderUsage(cmd.Usage))
		sb.WriteString(`</article>`)
		sb.WriteString("\n")
	}

	sb.WriteString(`</div>`)
	sb.WriteString("\n")

	return sb.String()
}
