// Package faults provides TUI views for fault records.
package faults

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/services/outages"
	"github.com/gridline/faultdesk/internal/tui/components"
	"github.com/gridline/faultdesk/internal/util"
)

// ListView displays the fault records visible to the operator.
type ListView struct {
	service   *outages.Service
	principal *access.Principal
	ref       *models.ReferenceData
	styles    components.Styles
	table     *components.Table
	faults    []*models.FaultRecord
	page      models.Pagination
	filter    models.FaultFilter
	typeIndex int
	err       error
	now       time.Time
}

// NewListView creates a fault list for principal.
func NewListView(service *outages.Service, principal *access.Principal, ref *models.ReferenceData, styles components.Styles, pageSize int) *ListView {
	columns := []components.Column{
		{Title: "Occurred", Width: 16, Priority: 10},
		{Title: "District", Width: 10, Weight: 1.5, Priority: 9},
		{Title: "Type", Width: 13, Priority: 6},
		{Title: "Status", Width: 11, Priority: 8},
		{Title: "Affected", Width: 8, Align: lipgloss.Right, Priority: 7},
		{Title: "Outage", Width: 8, Align: lipgloss.Right, Priority: 5},
		{Title: "Description", Width: 12, Weight: 2, Priority: 2},
		{Title: "By", Width: 10, Weight: 0.5, Priority: 1},
	}

	table := components.NewTable(columns, styles)
	table.SetVisibleRows(pageSize)
	table.Focus(true)

	return &ListView{
		service:   service,
		principal: principal,
		ref:       ref,
		styles:    styles,
		table:     table,
		page:      models.NewPagination(1, pageSize),
		typeIndex: -1,
	}
}

// Load fetches the current page from the service.
func (v *ListView) Load(ctx context.Context) error {
	result, err := v.service.ListVisible(ctx, v.principal, v.filter, v.page)
	if err != nil {
		v.err = err
		return err
	}
	v.err = nil
	v.faults = result.Faults

	rows := make([][]string, len(v.faults))
	for i, f := range v.faults {
		outage := "open"
		if d, err := v.service.Derive(f); err == nil && d.Restored {
			outage = util.FormatHours(d.OutageHours)
		}
		rows[i] = []string{
			util.FormatDateTime(f.OccurrenceDate),
			v.ref.DistrictName(f.DistrictID),
			string(f.FaultType),
			string(f.Status),
			fmt.Sprintf("%d", f.AffectedPopulation.Total()),
			outage,
			f.Description,
			f.ReportedBy,
		}
	}
	v.table.SetRows(rows)
	v.table.SetPagination(result.Page, result.TotalPages, result.Total)
	if result.TotalPages > 0 && v.page.Page > result.TotalPages {
		v.page.Page = result.TotalPages
	}
	return nil
}

// SetNow sets the time open faults are aged against.
func (v *ListView) SetNow(t time.Time) {
	v.now = t
}

// SetVisibleRows sets the number of visible table rows.
func (v *ListView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// ToggleOpenOnly switches between all faults and open ones.
func (v *ListView) ToggleOpenOnly() {
	v.filter.OpenOnly = !v.filter.OpenOnly
	v.page.Page = 1
}

// CycleType steps the fault type filter through every type and back to all.
func (v *ListView) CycleType() {
	v.typeIndex++
	if v.typeIndex >= len(models.FaultTypes) {
		v.typeIndex = -1
		v.filter.FaultType = nil
	} else {
		t := models.FaultTypes[v.typeIndex]
		v.filter.FaultType = &t
	}
	v.page.Page = 1
}

// Filter returns the active filter.
func (v *ListView) Filter() models.FaultFilter {
	return v.filter
}

// NextPage moves to the next page.
func (v *ListView) NextPage() {
	v.page = v.page.Next()
}

// PrevPage moves to the previous page.
func (v *ListView) PrevPage() {
	v.page = v.page.Prev()
}

// MoveUp moves the selection up.
func (v *ListView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *ListView) MoveDown() {
	v.table.MoveDown()
}

// Count returns the number of faults on the current page.
func (v *ListView) Count() int {
	return len(v.faults)
}

// SelectedFault returns the selected fault.
func (v *ListView) SelectedFault() *models.FaultRecord {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.faults) {
		return v.faults[idx]
	}
	return nil
}

// Render renders the list fitted to width.
func (v *ListView) Render(width, height int) string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("═══ FAULT LOG ═══"))
	b.WriteString("\n\n")

	var filters []string
	if v.filter.OpenOnly {
		filters = append(filters, "open only")
	}
	if v.filter.FaultType != nil {
		filters = append(filters, string(*v.filter.FaultType))
	}
	b.WriteString(v.styles.Label.Render("Scope: "))
	b.WriteString(v.styles.Value.Render(v.principal.ScopeLabel()))
	if len(filters) > 0 {
		b.WriteString(v.styles.Label.Render("  Filter: "))
		b.WriteString(v.styles.Value.Render(strings.Join(filters, ", ")))
	}
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(v.styles.Label.Render("No faults found."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.RenderResponsive(width))
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(v.styles.Help.Render("↑↓:Nav  Enter:View  a:Add  o:Open"))
	} else {
		b.WriteString(v.styles.Help.Render("Up/Down:Select  Enter:Details  a:Add  o:Open only  t:Type  PgUp/Dn:Page"))
	}
	return b.String()
}

// RenderDetail renders one fault with its derived metrics.
func (v *ListView) RenderDetail(f *models.FaultRecord, width int) string {
	labelWidth := 18
	if width < 60 {
		labelWidth = 12
	}
	if f == nil {
		return v.styles.Label.Render("No fault selected")
	}
	field := func(label, value string) string {
		return v.styles.Field(label+":", labelWidth, value) + "\n"
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("═══ FAULT DETAILS ═══"))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Section.Render("LOCATION"))
	b.WriteString("\n")
	b.WriteString(field("Region", v.ref.RegionName(f.RegionID)))
	b.WriteString(field("District", v.ref.DistrictName(f.DistrictID)))
	if f.AssetID != nil {
		b.WriteString(field("Asset", *f.AssetID))
	}
	b.WriteString("\n")

	b.WriteString(v.styles.Section.Render("EVENT"))
	b.WriteString("\n")
	b.WriteString(field("Type", string(f.FaultType)))
	b.WriteString(field("Status", string(f.Status)))
	if f.Description != "" {
		b.WriteString(field("Description", f.Description))
	}
	occurred := util.FormatDateTime(f.OccurrenceDate)
	if !v.now.IsZero() {
		occurred += " (" + util.RelativeTimeString(f.OccurrenceDate, v.now) + ")"
	}
	b.WriteString(field("Occurred", occurred))
	b.WriteString(field("Restored", util.FormatOptional(f.RestorationDate, "-")))
	b.WriteString(field("Repaired", util.FormatOptional(f.RepairDate, "-")))
	if f.ReportedBy != "" {
		b.WriteString(field("Reported by", f.ReportedBy))
	}
	b.WriteString("\n")

	p := f.AffectedPopulation
	b.WriteString(v.styles.Section.Render("CUSTOMERS AFFECTED"))
	b.WriteString("\n")
	b.WriteString(field("Rural / Urban / Metro", fmt.Sprintf("%d / %d / %d", p.Rural, p.Urban, p.Metro)))
	b.WriteString(field("Total", fmt.Sprintf("%d", p.Total())))
	b.WriteString("\n")

	b.WriteString(v.styles.Section.Render("METRICS"))
	b.WriteString("\n")
	d, err := v.service.Derive(f)
	switch {
	case err != nil:
		b.WriteString(v.styles.Warning.Render("  " + err.Error()))
		b.WriteString("\n")
	default:
		if d.Restored {
			b.WriteString(field("Outage duration", util.FormatHours(d.OutageHours)))
			b.WriteString(field("Customer hours lost", fmt.Sprintf("%.2f", d.CustomerLostHours)))
		} else if !v.now.IsZero() {
			b.WriteString(field("Open for", util.FormatHours(v.now.Sub(f.OccurrenceDate).Hours())))
		}
		if d.Repaired {
			b.WriteString(field("Repair time", util.FormatHours(d.RepairHours)))
		}
	}
	b.WriteString("\n")

	b.WriteString(v.styles.Help.Render("Esc:Back  w:Start work  r:Restored  x:Repaired  d:Delete"))
	return b.String()
}
