// Package notify delivers monthly reports to the household.
package notify

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"kharcha/internal/core"
)

// Subject is the report email subject line.
func Subject(s core.MonthlySummary) string {
	return "Kharcha report for " + s.MonthName
}

// RenderText renders a monthly summary as a plain-text report.
func RenderText(s core.MonthlySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Expenses for %s (%s to %s)\n\n", s.MonthName, s.StartDate, s.EndDate)
	fmt.Fprintf(&b, "Total spent: %s across %d transactions\n", s.TotalExpense, s.TransactionCount)

	if len(s.GroupBreakdown) > 0 {
		b.WriteString("\nBy group\n")
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, g := range s.GroupBreakdown {
			fmt.Fprintf(tw, "  %s\t%s\t\n", g.Group, g.Total)
		}
		tw.Flush()
	}

	if len(s.CategoryBreakdown) > 0 {
		b.WriteString("\nBy category\n")
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, c := range s.CategoryBreakdown {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t\n", c.Name, c.Total, c.Count)
		}
		tw.Flush()
	}

	if len(s.CategoryBreakdown) == 0 {
		b.WriteString("\nNo expenses were recorded this month.\n")
	}
	return b.String()
}
