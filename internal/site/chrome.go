package site

import (
	"fmt"
	"time"

	"github.com/jojobot/website/internal/config"
	"github.com/jojobot/website/internal/website"
	"github.com/jojobot/website/internal/website/components"
)

// Chrome renders the parts shared by every page: navbar, hero and footer.
type Chrome struct {
	Name    string
	Tagline string
	Founder website.FounderConfig
	Year    int
}

// NewChrome builds the page chrome from the site configuration.
func NewChrome(cfg config.SiteConfig) Chrome {
	return Chrome{
		Name:    cfg.Name,
		Tagline: cfg.Tagline,
		Founder: website.FounderConfig{
			Name:   cfg.Founder.Name,
			Avatar: cfg.Founder.Avatar,
			Blurb:  cfg.Founder.Blurb,
		},
		Year: time.Now().Year(),
	}
}

func (c Chrome) navbar() string {
	return components.RenderNavbar(components.NavbarOptions{
		Logo:      c.Name,
		InviteURL: invitePath,
	})
}

func (c Chrome) hero() string {
	return components.RenderHero(components.HeroOptions{
		Title:    "Jojo Discord Bot",
		Subtitle: c.Tagline,
		Button:   components.HeroButton{Text: "Add to Discord", URL: invitePath},
	})
}

func (c Chrome) footer() string {
	copyright := fmt.Sprintf("© %d %s.", c.Year, c.Name)
	if c.Founder.Name != "" {
		copyright = fmt.Sprintf("© %d %s. Made with ❤️ by %s", c.Year, c.Name, c.Founder.Name)
	}
	return components.RenderFooter(components.FooterOptions{
		Links:     components.DefaultFooterLinks(),
		Copyright: copyright,
	})
}
