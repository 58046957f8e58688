// Package reliability renders the reliability indices for the operator's
// scope.
package reliability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/metrics"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/services/outages"
	"github.com/gridline/faultdesk/internal/tui/components"
	"github.com/gridline/faultdesk/internal/util"
)

// Windows are the report windows the dashboard cycles through, in days.
var Windows = []int{7, 30, 90, 365}

// DashboardView shows a reliability report.
type DashboardView struct {
	service   *outages.Service
	principal *access.Principal
	styles    components.Styles
	window    int
	report    *outages.Report
	districts *components.Table
	types     *components.Table
	err       error
}

// NewDashboardView creates a dashboard using a window of windowDays. Any
// value not in Windows selects 30 days.
func NewDashboardView(service *outages.Service, principal *access.Principal, styles components.Styles, windowDays int) *DashboardView {
	v := &DashboardView{
		service:   service,
		principal: principal,
		styles:    styles,
		window:    1,
	}
	for i, w := range Windows {
		if w == windowDays {
			v.window = i
		}
	}

	v.districts = components.NewTable([]components.Column{
		{Title: "District", Width: 14, Weight: 1, Priority: 10},
		{Title: "Region", Width: 14, Weight: 1, Priority: 2},
		{Title: "Faults", Width: 6, Align: lipgloss.Right, Priority: 8},
		{Title: "Open", Width: 5, Align: lipgloss.Right, Priority: 6},
		{Title: "SAIDI", Width: 8, Align: lipgloss.Right, Priority: 9},
		{Title: "SAIFI", Width: 8, Align: lipgloss.Right, Priority: 7},
		{Title: "CAIDI", Width: 8, Align: lipgloss.Right, Priority: 5},
		{Title: "MTTR", Width: 8, Align: lipgloss.Right, Priority: 4},
	}, styles)
	v.districts.SetVisibleRows(12)

	v.types = components.NewTable([]components.Column{
		{Title: "Type", Width: 14, Priority: 10},
		{Title: "Faults", Width: 6, Align: lipgloss.Right, Priority: 9},
		{Title: "Customers", Width: 10, Align: lipgloss.Right, Priority: 7},
		{Title: "Cust. hours", Width: 12, Align: lipgloss.Right, Priority: 8},
		{Title: "Avg outage", Width: 10, Align: lipgloss.Right, Priority: 5},
	}, styles)
	v.types.SetVisibleRows(len(models.FaultTypes))

	return v
}

// WindowDays returns the selected window.
func (v *DashboardView) WindowDays() int {
	return Windows[v.window]
}

// CycleWindow selects the next report window.
func (v *DashboardView) CycleWindow() {
	v.window = (v.window + 1) % len(Windows)
}

// Report returns the last loaded report.
func (v *DashboardView) Report() *outages.Report {
	return v.report
}

// Load builds the report for the selected window ending now.
func (v *DashboardView) Load(ctx context.Context, now time.Time) error {
	to := now.UTC()
	from := to.AddDate(0, 0, -v.WindowDays())
	r, err := v.service.Report(ctx, v.principal, outages.ReportInput{From: &from, To: &to})
	if err != nil {
		v.err = err
		return err
	}
	v.err = nil
	v.report = r

	rows := make([][]string, 0, len(r.ByDistrict))
	for _, d := range r.ByDistrict {
		s := d.Summary
		rows = append(rows, []string{
			d.District.Name,
			d.RegionName,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%d", s.Open),
			fmt.Sprintf("%.3f", s.Indices.SAIDI),
			fmt.Sprintf("%.4f", s.Indices.SAIFI),
			fmt.Sprintf("%.2f", s.Indices.CAIDI),
			hoursOrDash(s.MTTR, s.Repaired),
		})
	}
	v.districts.SetRows(rows)

	rows = make([][]string, 0, len(r.ByType))
	for _, t := range r.ByType {
		s := t.Summary
		rows = append(rows, []string{
			string(t.Type),
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%d", s.TotalAffected),
			fmt.Sprintf("%.1f", s.CustomerLostHours),
			hoursOrDash(s.AverageOutage, s.Restored),
		})
	}
	v.types.SetRows(rows)
	return nil
}

func hoursOrDash(h float64, n int) string {
	if n == 0 {
		return "-"
	}
	return util.FormatHours(h)
}

// Render renders the dashboard.
func (v *DashboardView) Render(width, height int) string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("═══ NETWORK RELIABILITY ═══"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	if v.report == nil {
		b.WriteString(v.styles.Muted.Render("Loading..."))
		return b.String()
	}

	r := v.report
	s := r.Summary
	b.WriteString(v.styles.Field("Scope:", 12, r.Scope))
	b.WriteString("\n")
	b.WriteString(v.styles.Field("Window:", 12, fmt.Sprintf("%s to %s (%d days)",
		util.FormatDate(r.From), util.FormatDate(r.To), v.WindowDays())))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Section.Render("INDICES"))
	b.WriteString("\n")
	b.WriteString(v.renderIndices(s.Indices, width))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Section.Render("ACTIVITY"))
	b.WriteString("\n")
	b.WriteString(v.styles.Field("Faults:", 20, fmt.Sprintf("%d (%d open, %d restored, %d repaired)", s.Count, s.Open, s.Restored, s.Repaired)))
	b.WriteString("\n")
	b.WriteString(v.styles.Field("Customers served:", 20, fmt.Sprintf("%d", s.CustomersServed)))
	b.WriteString("\n")
	b.WriteString(v.styles.Field("Customers affected:", 20, fmt.Sprintf("%d", s.TotalAffected)))
	b.WriteString("\n")
	b.WriteString(v.styles.Field("Customer hours lost:", 20, fmt.Sprintf("%.1f", s.CustomerLostHours)))
	b.WriteString("\n")
	b.WriteString(v.styles.Field("MTTR:", 20, hoursOrDash(s.MTTR, s.Repaired)))
	b.WriteString("\n")
	if s.Skipped > 0 {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("%d records skipped with invalid timestamps", s.Skipped)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if !v.districts.Empty() {
		b.WriteString(v.styles.Section.Render("BY DISTRICT"))
		b.WriteString("\n")
		b.WriteString(v.districts.RenderResponsive(width))
		b.WriteString("\n")
	}
	if !v.types.Empty() {
		b.WriteString(v.styles.Section.Render("BY FAULT TYPE"))
		b.WriteString("\n")
		b.WriteString(v.types.RenderResponsive(width))
		b.WriteString("\n")
	}

	b.WriteString(v.styles.Help.Render("w:Window  F5:Refresh"))
	return b.String()
}

func (v *DashboardView) renderIndices(idx metrics.ReliabilityIndices, width int) string {
	cells := []struct {
		name, value, unit string
	}{
		{"SAIDI", fmt.Sprintf("%.3f", idx.SAIDI), "hours / customer"},
		{"SAIFI", fmt.Sprintf("%.4f", idx.SAIFI), "interruptions / customer"},
		{"CAIDI", fmt.Sprintf("%.2f", idx.CAIDI), "hours / interruption"},
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(v.styles.Border.GetForeground()).
		Padding(0, 1).
		Width(26)

	panels := make([]string, len(cells))
	for i, c := range cells {
		panels[i] = box.Render(
			v.styles.Label.Render(c.name) + "\n" +
				v.styles.Accent.Bold(true).Render(c.value) + "\n" +
				v.styles.Muted.Render(c.unit))
	}
	if width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, panels...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}
