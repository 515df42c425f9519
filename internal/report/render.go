package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
)

var printer = message.NewPrinter(language.English)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	tierStyles = map[carbon.ImpactTier]lipgloss.Style{
		carbon.ImpactLow:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34")),
		carbon.ImpactModerate: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		carbon.ImpactHigh:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
)

// EncodeJSON writes the report as indented JSON.
func EncodeJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// FormatKg formats kg CO₂ with thousands separators and two decimals.
func FormatKg(kg float64) string {
	return printer.Sprintf("%.2f kg CO₂", kg)
}

// RenderText writes a human-readable report. Styled output adds terminal
// colors and should only be used on a TTY.
func RenderText(w io.Writer, r *Report, styled bool) error {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	s := r.Summary

	fmt.Fprintln(&b, style(titleStyle, "Carbon Footprint Report"))
	fmt.Fprintf(&b, "%s %s\n", style(labelStyle, "ID:"), r.ID)
	fmt.Fprintf(&b, "%s %s\n\n", style(labelStyle, "Generated:"), r.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintln(&b, style(headerStyle, "Monthly emissions"))
	for _, share := range r.Shares {
		fmt.Fprintf(&b, "  %-12s %18s  %5.1f%%\n", share.Section.Title(), FormatKg(share.Kg), share.Percent)
	}
	fmt.Fprintf(&b, "  %-12s %18s\n\n", "Total", FormatKg(s.TotalKg))

	fmt.Fprintf(&b, "%s %s\n", style(labelStyle, "Impact:"), style(tierStyles[s.Tier], s.Tier.String()))
	fmt.Fprintf(&b, "  %s\n", s.TierDescription)
	fmt.Fprintf(&b, "%s %s (%s of the %s average)\n",
		style(labelStyle, "Annual projection:"),
		FormatKg(s.AnnualProjectionKg),
		printer.Sprintf("%.0f%%", s.AverageRatio*100),
		printer.Sprintf("%.0f kg", carbon.AverageAnnualFootprintKg),
	)

	if r.Route != nil {
		fmt.Fprintf(&b, "%s %s -> %s (%s km)\n",
			style(labelStyle, "Route:"),
			r.Route.Origin, r.Route.Destination,
			printer.Sprintf("%.1f", r.Route.DistanceKm),
		)
	}

	fmt.Fprintf(&b, "\n%s\n", style(headerStyle, "Suggestions"))
	for _, msg := range s.Suggestions {
		fmt.Fprintf(&b, "  - %s\n", msg)
	}

	fmt.Fprintf(&b, "\n%s\n", style(mutedStyle, r.ShareText))

	_, err := io.WriteString(w, b.String())
	return err
}
