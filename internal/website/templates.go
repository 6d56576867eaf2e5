// Package website renders the HTML shell and shared styles of the Jojo Bot
// documentation site. Markup is built with strings.Builder and every piece
// of dynamic text goes through html.EscapeString.
package website

// PageConfig defines the document-level metadata of a page.
type PageConfig struct {
	// Title is the page title (shown in browser tab and search results)
	Title string
	// Description is the meta description for SEO
	Description string
	// URL is the canonical URL of the page
	URL string
	// SiteName is used for og:site_name and JSON-LD
	SiteName string
	// InviteURL is advertised in JSON-LD as the install link
	InviteURL string
	Keywords  []string
	// Language is the page language (default: "en")
	Language   string
	ThemeColor string
	// Nonce is the per-request CSP nonce for inline <style> and <script>
	Nonce string
	// ScriptSrc is the live client URL; empty disables the client
	ScriptSrc string
}

// NavLink represents a navigation link.
type NavLink struct {
	Label    string
	URL      string
	External bool
}

// FounderConfig describes the "Meet the Founder" card.
type FounderConfig struct {
	Name string
	// Avatar is an image URL; when empty the initial is shown instead
	Avatar string
	Blurb  string
}

// DefaultPageConfig returns a PageConfig with the site defaults.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		SiteName:   "Jojo Bot",
		Language:   "en",
		ThemeColor: Colors["bg"],
		ScriptSrc:  "/_live/live.js",
		Keywords:   []string{"discord bot", "jojo bot", "music bot", "moderation", "commands"},
	}
}
