package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"foodwaste/internal/core"

	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#3F7D3A")
	SuccessColor = lipgloss.Color("#4ECDC4")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	// HeaderStyle is used for table headers.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

	// BoxStyle frames the stats summary.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 2)
)

// barWidth is the width of a full breakdown bar in cells.
const barWidth = 24

// RenderEntries writes entries as an aligned table.
func RenderEntries(w io.Writer, page core.Page) error {
	if len(page.Entries) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No entries logged."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("ID"),
		HeaderStyle.Render("Date"),
		HeaderStyle.Render("Item"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Quantity"),
		HeaderStyle.Render("Kg"),
		HeaderStyle.Render("Reason"))
	for _, e := range page.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g %s\t%.2f\t%s\n",
			e.ID, e.Date, e.FoodItem, e.Category, e.Quantity, e.Unit, e.QuantityKg, e.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, SubtleStyle.Render(fmt.Sprintf("%d-%d of %d", min(page.Offset+1, page.Total), page.Offset+len(page.Entries), page.Total)))
	return err
}

// RenderStats writes the summary box and the category and reason bars.
func RenderStats(w io.Writer, period string, stats core.AggregateStats) error {
	summary := strings.Join([]string{
		TitleStyle.Render("Food waste, " + period),
		fmt.Sprintf("Total:         %.2f kg", stats.TotalKg),
		fmt.Sprintf("Daily average: %.2f kg", stats.AvgDailyKg),
		fmt.Sprintf("Most wasted:   %s", stats.TopCategory),
		fmt.Sprintf("Entries:       %d", stats.EntryCount),
	}, "\n")
	if _, err := fmt.Fprintln(w, BoxStyle.Render(summary)); err != nil {
		return err
	}
	if stats.EntryCount == 0 {
		return nil
	}

	for _, section := range []struct {
		title string
		data  map[string]float64
	}{
		{"By category", stats.ByCategory},
		{"By reason", stats.ByReason},
	} {
		fmt.Fprintln(w, HeaderStyle.Render(section.title))
		writeBars(w, section.data)
	}
	return nil
}

func writeBars(w io.Writer, data map[string]float64) {
	names := make([]string, 0, len(data))
	var top float64
	for name, kg := range data {
		names = append(names, name)
		top = max(top, kg)
	}
	sort.Slice(names, func(i, j int) bool {
		if data[names[i]] != data[names[j]] {
			return data[names[i]] > data[names[j]]
		}
		return names[i] < names[j]
	})

	bar := lipgloss.NewStyle().Foreground(PrimaryColor)
	for _, name := range names {
		n := 0
		if top > 0 {
			n = max(int(data[name]/top*barWidth+0.5), 1)
		}
		fmt.Fprintf(w, "  %-12s %s %.2f kg\n", name, bar.Render(strings.Repeat("█", n)), data[name])
	}
}
