package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jojobot/website/internal/catalog"
	"github.com/jojobot/website/internal/viewstate"
)

// NewCommandsCmd creates the commands command.
func NewCommandsCmd() *cobra.Command {
	var section string
	var page int
	var search string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "Browse the bot commands",
		Long: `Without flags, list every section. --section prints one page of a
section using the website's pagination. --search fuzzy-matches command names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case search != "":
				return printSearch(out, catalog.Default, search)
			case section != "":
				return printSection(out, catalog.Default, section, page)
			default:
				printSections(out, catalog.Default)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "section key, e.g. fun")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page of the section")
	cmd.Flags().StringVarP(&search, "search", "q", "", "fuzzy search across all sections")

	return cmd
}

func printSections(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintln(w, titleText(fmt.Sprintf("%d sections, %d commands", cat.Len(), cat.CommandCount())))
	for _, sec := range cat.Sections() {
		fmt.Fprintf(w, "%s %s\n",
			NameStyle.Render(fmt.Sprintf("%-12s", sec.Key)),
			sec.Title+mutedText(fmt.Sprintf(" (%d commands, %d pages)", len(sec.Commands), viewstate.TotalPages(sec))))
	}
}

func printSection(w io.Writer, cat *catalog.Catalog, key string, page int) error {
	ctrl := viewstate.NewController(cat)
	if err := ctrl.SelectSection(key); err != nil {
		return err
	}
	if !ctrl.GoToPage(page) {
		return fmt.Errorf("page %d out of range (1-%d)", page, ctrl.TotalPages())
	}

	fmt.Fprintln(w, titleText(ctrl.Section().Title))
	for _, cmd := range ctrl.Page() {
		printCommand(w, cmd)
	}
	if ctrl.TotalPages() > 1 {
		fmt.Fprintln(w, mutedText(fmt.Sprintf("Page %d of %d", page, ctrl.TotalPages())))
	}
	return nil
}

func printSearch(w io.Writer, cat *catalog.Catalog, query string) error {
	matches := cat.Search(query)
	if len(matches) == 0 {
		fmt.Fprintln(w, mutedText(fmt.Sprintf("No commands match %q", query)))
		return nil
	}

	fmt.Fprintln(w, titleText(fmt.Sprintf("%d matches for %q", len(matches), query)))
	for _, m := range matches {
		fmt.Fprint(w, mutedText("["+m.SectionKey+"] "))
		printCommand(w, m.Command)
	}
	return nil
}

func printCommand(w io.Writer, cmd catalog.Command) {
	var sb strings.Builder
	sb.WriteString(NameStyle.Render(cmd.Name))
	sb.WriteString("\n")
	sb.WriteString(cmd.Description)
	sb.WriteString("\n")
	sb.WriteString(UsageStyle.Render(cmd.Usage))
	fmt.Fprintln(w, CardStyle.Render(sb.String()))
}
