package viewstate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jojobot/website/internal/catalog"
)

func sectionOf(n int) catalog.Section {
	s := catalog.Section{Key: "s"}
	for i := 0; i < n; i++ {
		s.Commands = append(s.Commands, catalog.Command{Name: fmt.Sprintf("c%d", i)})
	}
	return s
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{4, 1},
		{6, 1},
		{7, 2},
		{12, 2},
		{13, 3},
		{23, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, TotalPages(sectionOf(tt.n)))
		})
	}
}

func TestPagesReassembleSection(t *testing.T) {
	for _, s := range catalog.Default.Sections() {
		total := TotalPages(s)
		var all []catalog.Command
		for p := 1; p <= total; p++ {
			page := PageSlice(s, p)
			assert.NotEmpty(t, page, "%s page %d", s.Key, p)
			assert.LessOrEqual(t, len(page), PageSize)
			all = append(all, page...)
		}
		assert.Equal(t, s.Commands, all, s.Key)
	}
}

func TestPageSliceOutOfRange(t *testing.T) {
	s := sectionOf(7)
	for _, p := range []int{-1, 0, 3, 100} {
		assert.NotPanics(t, func() {
			assert.Empty(t, PageSlice(s, p))
		})
	}
	assert.Empty(t, PageSlice(sectionOf(0), 1))
}

func TestDefaultState(t *testing.T) {
	assert.Equal(t, ViewState{ActiveSection: "aura", CurrentPage: 1}, Default())

	c := NewController(nil)
	assert.Equal(t, Default(), c.State())
	assert.Equal(t, "Aura Management", c.Section().Title)
	assert.Len(t, c.Page(), 4)
}

func TestSelectSectionResetsPage(t *testing.T) {
	c := NewController(catalog.Default)
	require.NoError(t, c.SelectSection("fun"))
	require.True(t, c.GoToPage(3))
	assert.Equal(t, 3, c.State().CurrentPage)

	require.NoError(t, c.SelectSection("music"))
	assert.Equal(t, ViewState{ActiveSection: "music", CurrentPage: 1}, c.State())

	// Reselecting the active section also returns to page 1.
	require.True(t, c.Next())
	require.NoError(t, c.SelectSection("music"))
	assert.Equal(t, 1, c.State().CurrentPage)
}

func TestSelectSectionUnknown(t *testing.T) {
	c := NewController(catalog.Default)
	require.NoError(t, c.SelectSection("utility"))
	require.True(t, c.Next())
	before := c.State()

	err := c.SelectSection("nope")
	assert.ErrorIs(t, err, catalog.ErrUnknownSection)
	assert.Equal(t, before, c.State())
}

func TestGoToPageBounds(t *testing.T) {
	c := NewController(catalog.Default)
	require.NoError(t, c.SelectSection("music")) // 12 commands, 2 pages

	assert.False(t, c.GoToPage(0))
	assert.False(t, c.GoToPage(3))
	assert.False(t, c.GoToPage(-5))
	assert.Equal(t, 1, c.State().CurrentPage)

	assert.True(t, c.GoToPage(2))
	assert.Equal(t, 2, c.State().CurrentPage)
	assert.True(t, c.GoToPage(2))
}

func TestPrevNextEnablement(t *testing.T) {
	c := NewController(catalog.Default)
	require.NoError(t, c.SelectSection("fun"))
	assert.Equal(t, 4, c.TotalPages())

	assert.False(t, c.CanPrev())
	assert.True(t, c.CanNext())
	assert.False(t, c.Prev())

	names := func(cmds []catalog.Command) []string {
		out := make([]string, len(cmds))
		for i, cmd := range cmds {
			out[i] = cmd.Name
		}
		return out
	}
	assert.Equal(t, []string{"trivia", "rps", "dice", "coinflip", "flirt", "roast"}, names(c.Page()))

	for c.CanNext() {
		require.True(t, c.Next())
		assert.True(t, c.CanPrev())
	}
	assert.Equal(t, 4, c.State().CurrentPage)
	assert.False(t, c.Next())
	assert.Equal(t, []string{"snuggle", "bully", "think", "akinator", "wordle"}, names(c.Page()))

	require.True(t, c.Prev())
	assert.Equal(t, 3, c.State().CurrentPage)
}

func TestSinglePageSection(t *testing.T) {
	c := NewController(catalog.Default)
	require.NoError(t, c.SelectSection("shop"))
	assert.Equal(t, 1, c.TotalPages())
	assert.False(t, c.CanPrev())
	assert.False(t, c.CanNext())
	assert.False(t, c.Next())
	assert.False(t, c.Prev())
	assert.Len(t, c.Page(), 2)
}

func TestInvariantHoldsUnderRandomIntents(t *testing.T) {
	c := NewController(catalog.Default)
	keys := append(catalog.Default.Keys(), "bogus", "")
	for i := 0; i < 500; i++ {
		switch i % 5 {
		case 0:
			_ = c.SelectSection(keys[(i*7)%len(keys)])
		case 1:
			c.Next()
		case 2:
			c.Prev()
		case 3:
			c.GoToPage((i * 13) % 7)
		case 4:
			c.Next()
			c.Next()
		}
		st := c.State()
		require.True(t, catalog.Default.Has(st.ActiveSection))
		require.GreaterOrEqual(t, st.CurrentPage, 1)
		require.LessOrEqual(t, st.CurrentPage, c.TotalPages())
	}
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name string
		in   ViewState
		want ViewState
	}{
		{"valid", ViewState{"fun", 2}, ViewState{"fun", 2}},
		{"page too high", ViewState{"fun", 9}, ViewState{"fun", 4}},
		{"page zero", ViewState{"music", 0}, ViewState{"music", 1}},
		{"unknown section", ViewState{"nope", 3}, ViewState{"aura", 1}},
		{"empty", ViewState{}, ViewState{"aura", 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(catalog.Default)
			assert.Equal(t, tt.want, c.Restore(tt.in))
			assert.Equal(t, tt.want, c.State())
		})
	}
}

func TestControllersAreIndependent(t *testing.T) {
	a := NewController(catalog.Default)
	b := NewController(catalog.Default)
	require.NoError(t, a.SelectSection("moderation"))
	assert.Equal(t, "aura", b.State().ActiveSection)
}
