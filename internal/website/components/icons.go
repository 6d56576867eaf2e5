package components

import "github.com/jojobot/website/internal/catalog"

// Glyph paths follow the lucide icon set (24x24, stroke based).
const (
	pathBot          = `<path d="M12 8V4H8"/><rect width="16" height="12" x="4" y="8" rx="2"/><path d="M2 14h2"/><path d="M20 14h2"/><path d="M15 13v2"/><path d="M9 13v2"/>`
	pathCommand      = `<path d="M15 6v12a3 3 0 1 0 3-3H6a3 3 0 1 0 3 3V6a3 3 0 1 0-3 3h12a3 3 0 1 0-3-3"/>`
	pathMusic        = `<path d="M9 18V5l12-2v13"/><circle cx="6" cy="18" r="3"/><circle cx="18" cy="16" r="3"/>`
	pathShield       = `<path d="M20 13c0 5-3.5 7.5-7.66 8.95a1 1 0 0 1-.67-.01C7.5 20.5 4 18 4 13V6a1 1 0 0 1 1-1c2 0 4.5-1.2 6.24-2.72a1.17 1.17 0 0 1 1.52 0C14.51 3.81 17 5 19 5a1 1 0 0 1 1 1z"/>`
	pathGamepad      = `<line x1="6" x2="10" y1="11" y2="11"/><line x1="8" x2="8" y1="9" y2="13"/><line x1="15" x2="15.01" y1="12" y2="12"/><line x1="18" x2="18.01" y1="10" y2="10"/><path d="M17.32 5H6.68a4 4 0 0 0-3.978 3.59c-.006.052-.01.101-.017.152C2.604 9.416 2 14.456 2 16a3 3 0 0 0 3 3c1 0 1.5-.5 2-1l1.414-1.414A2 2 0 0 1 9.828 16h4.344a2 2 0 0 1 1.414.586L17 18c.5.5 1 1 2 1a3 3 0 0 0 3-3c0-1.545-.604-6.584-.685-7.258-.007-.05-.011-.1-.017-.151A4 4 0 0 0 17.32 5z"/>`
	pathSparkles     = `<path d="M9.937 15.5A2 2 0 0 0 8.5 14.063l-6.135-1.582a.5.5 0 0 1 0-.962L8.5 9.936A2 2 0 0 0 9.937 8.5l1.582-6.135a.5.5 0 0 1 .963 0L14.063 8.5A2 2 0 0 0 15.5 9.937l6.135 1.581a.5.5 0 0 1 0 .964L15.5 14.063a2 2 0 0 0-1.437 1.437l-1.582 6.135a.5.5 0 0 1-.963 0z"/>`
	pathChevronLeft  = `<path d="m15 18-6-6 6-6"/>`
	pathChevronRight = `<path d="m9 18 6-6-6-6"/>`
)

func svg(paths string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true">` + paths + `</svg>`
}

// IconSVG resolves a section glyph to inline SVG. Unknown glyphs fall
// back to the generic command icon.
func IconSVG(icon catalog.Icon) string {
	switch icon {
	case catalog.IconMusic:
		return svg(pathMusic)
	case catalog.IconShield:
		return svg(pathShield)
	case catalog.IconGamepad:
		return svg(pathGamepad)
	case catalog.IconSparkles:
		return svg(pathSparkles)
	default:
		return svg(pathCommand)
	}
}

// BotSVG is the site logo.
func BotSVG() string { return svg(pathBot) }

func chevronLeftSVG() string  { return svg(pathChevronLeft) }
func chevronRightSVG() string { return svg(pathChevronRight) }
