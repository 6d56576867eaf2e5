package site

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jojobot/website/internal/catalog"
	"github.com/jojobot/website/internal/viewstate"
	"github.com/jojobot/website/internal/website/components"
	"github.com/jojobot/website/pkg/core"
	"github.com/jojobot/website/pkg/logging"
)

// Events the live client may send that the markup does not emit directly.
const (
	// EventPage jumps to the page in payload["page"].
	EventPage = "page"
	// EventNavigate restores payload["section"] and payload["page"], used
	// on browser back/forward.
	EventNavigate = "navigate"
)

// HomeView is the command documentation page. Each live connection gets
// its own HomeView and therefore its own view controller.
type HomeView struct {
	core.BaseComponent

	catalog *catalog.Catalog
	chrome  Chrome
	ctrl    *viewstate.Controller
}

// NewHomeView returns a factory for HomeView components.
func NewHomeView(cat *catalog.Catalog, chrome Chrome) func() core.Component {
	return func() core.Component {
		return &HomeView{catalog: cat, chrome: chrome}
	}
}

// Name returns the component name.
func (h *HomeView) Name() string {
	return "home"
}

// Mount positions the controller at the state requested by the URL.
func (h *HomeView) Mount(ctx context.Context, params core.Params, session core.Session) error {
	h.ctrl = viewstate.NewController(h.catalog)
	want := viewstate.ViewState{
		ActiveSection: params.GetDefault("section", catalog.DefaultSectionKey),
		CurrentPage:   params.Int("page", 1),
	}
	got := h.ctrl.Restore(want)
	if got != want {
		logging.L(ctx).Debug("deep link clamped",
			logging.String("section", want.ActiveSection),
			logging.Int("page", want.CurrentPage),
			logging.String("restored_section", got.ActiveSection),
			logging.Int("restored_page", got.CurrentPage),
		)
	}
	return nil
}

// HandleEvent applies a navigation intent. Intents that do not apply
// (unknown section, page out of range) leave the state unchanged.
func (h *HomeView) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	log := logging.L(ctx).With(logging.String("event", event))

	switch event {
	case components.EventSelect:
		key := payloadString(payload, "section")
		if err := h.ctrl.SelectSection(key); err != nil {
			log.Debug("intent ignored", logging.String("section", key), logging.Err(err))
		}

	case EventPage:
		page, ok := payloadInt(payload, "page")
		if !ok || !h.ctrl.GoToPage(page) {
			log.Debug("intent ignored", logging.Any("page", payload["page"]))
		}

	case components.EventPrev:
		if !h.ctrl.Prev() {
			log.Debug("intent ignored", logging.Int("page", h.ctrl.State().CurrentPage))
		}

	case components.EventNext:
		if !h.ctrl.Next() {
			log.Debug("intent ignored", logging.Int("page", h.ctrl.State().CurrentPage))
		}

	case EventNavigate:
		page, ok := payloadInt(payload, "page")
		if !ok {
			page = 1
		}
		h.ctrl.Restore(viewstate.ViewState{
			ActiveSection: payloadString(payload, "section"),
			CurrentPage:   page,
		})

	default:
		log.Debug("unknown event ignored")
	}
	return nil
}

// State exposes the current view state.
func (h *HomeView) State() viewstate.ViewState {
	return h.ctrl.State()
}

// Render writes the whole page body.
func (h *HomeView) Render(ctx context.Context) core.Renderer {
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder

		sb.WriteString(h.chrome.navbar())
		sb.WriteString(`<main>`)
		sb.WriteString("\n")
		sb.WriteString(h.chrome.hero())
		sb.WriteString(components.RenderDocs(h.docsOptions()))
		sb.WriteString(components.RenderFounder(h.chrome.Founder))
		sb.WriteString(`</main>`)
		sb.WriteString("\n")
		sb.WriteString(h.chrome.footer())

		_, err := io.WriteString(w, sb.String())
		return err
	})
}

func (h *HomeView) docsOptions() components.DocsOptions {
	state := h.ctrl.State()
	section := h.ctrl.Section()

	sections := h.ctrl.Catalog().Sections()
	items := make([]components.SidebarItem, 0, len(sections))
	for _, s := range sections {
		items = append(items, components.SidebarItem{
			Key:    s.Key,
			Title:  s.Title,
			Icon:   s.Icon,
			Active: s.Key == state.ActiveSection,
		})
	}

	return components.DocsOptions{
		Sidebar:      items,
		SectionTitle: section.Title,
		Commands:     h.ctrl.Page(),
		Pager: components.PagerOptions{
			Section: state.ActiveSection,
			Page:    state.CurrentPage,
			Total:   h.ctrl.TotalPages(),
			CanPrev: h.ctrl.CanPrev(),
			CanNext: h.ctrl.CanNext(),
		},
	}
}

func payloadString(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// payloadInt reads an integer that may arrive as a JSON number, a msgpack
// integer of any width, or a string from an lv-value-* attribute.
func payloadInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case float32:
		if v != float32(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}
