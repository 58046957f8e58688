// Package assets provides the asset register views.
package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/models"
	assetsvc "github.com/gridline/faultdesk/internal/services/assets"
	"github.com/gridline/faultdesk/internal/tui/components"
	"github.com/gridline/faultdesk/internal/util"
)

var assetTypes = []models.AssetType{
	models.AssetTypeSubstation,
	models.AssetTypeTransformer,
	models.AssetTypeFeeder,
	models.AssetTypeSwitchgear,
	models.AssetTypePole,
	models.AssetTypeMeter,
}

// RegisterView displays the asset register for the operator's scope.
type RegisterView struct {
	service   *assetsvc.Service
	principal *access.Principal
	ref       *models.ReferenceData
	styles    components.Styles
	table     *components.Table
	assets    []*models.Asset
	page      models.Pagination
	filter    models.AssetFilter
	typeIndex int
	err       error
}

// NewRegisterView creates an asset register view.
func NewRegisterView(service *assetsvc.Service, principal *access.Principal, ref *models.ReferenceData, styles components.Styles, pageSize int) *RegisterView {
	columns := []components.Column{
		{Title: "Code", Width: 16, Priority: 10},
		{Title: "Name", Width: 14, Weight: 2, Priority: 9},
		{Title: "Type", Width: 11, Priority: 7},
		{Title: "District", Width: 10, Weight: 1, Priority: 6},
		{Title: "Status", Width: 14, Priority: 8},
		{Title: "Inspected", Width: 10, Priority: 4},
		{Title: "kVA", Width: 7, Align: lipgloss.Right, Priority: 2},
	}

	table := components.NewTable(columns, styles)
	table.SetVisibleRows(pageSize)
	table.Focus(true)

	return &RegisterView{
		service:   service,
		principal: principal,
		ref:       ref,
		styles:    styles,
		table:     table,
		page:      models.NewPagination(1, pageSize),
		typeIndex: -1,
	}
}

// Load fetches the current page.
func (v *RegisterView) Load(ctx context.Context) error {
	result, err := v.service.List(ctx, v.principal, v.filter, v.page)
	if err != nil {
		v.err = err
		return err
	}
	v.err = nil
	v.assets = result.Assets

	rows := make([][]string, len(v.assets))
	for i, a := range v.assets {
		inspected := "never"
		if a.LastInspection != nil {
			inspected = util.FormatDate(*a.LastInspection)
		}
		if v.service.Overdue(a) {
			inspected += "!"
		}
		capacity := "-"
		if a.CapacityKVA != nil {
			capacity = fmt.Sprintf("%.0f", *a.CapacityKVA)
		}
		rows[i] = []string{
			a.AssetCode,
			a.Name,
			string(a.Type),
			v.ref.DistrictName(a.DistrictID),
			string(a.Status),
			inspected,
			capacity,
		}
	}
	v.table.SetRows(rows)
	v.table.SetPagination(result.Page, result.TotalPages, result.Total)
	return nil
}

// SetSearch sets the name or code search term.
func (v *RegisterView) SetSearch(term string) {
	v.filter.SearchTerm = term
	v.page.Page = 1
}

// CycleType steps the asset type filter.
func (v *RegisterView) CycleType() {
	v.typeIndex++
	if v.typeIndex >= len(assetTypes) {
		v.typeIndex = -1
		v.filter.Type = nil
	} else {
		t := assetTypes[v.typeIndex]
		v.filter.Type = &t
	}
	v.page.Page = 1
}

// Filter returns the active filter.
func (v *RegisterView) Filter() models.AssetFilter {
	return v.filter
}

// SetVisibleRows sets the number of visible table rows.
func (v *RegisterView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// NextPage moves to the next page.
func (v *RegisterView) NextPage() {
	v.page = v.page.Next()
}

// PrevPage moves to the previous page.
func (v *RegisterView) PrevPage() {
	v.page = v.page.Prev()
}

// MoveUp moves the selection up.
func (v *RegisterView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *RegisterView) MoveDown() {
	v.table.MoveDown()
}

// Count returns the number of assets on the page.
func (v *RegisterView) Count() int {
	return len(v.assets)
}

// SelectedAsset returns the selected asset.
func (v *RegisterView) SelectedAsset() *models.Asset {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.assets) {
		return v.assets[idx]
	}
	return nil
}

// Render renders the register.
func (v *RegisterView) Render(width, height int) string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("═══ ASSET REGISTER ═══"))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Label.Render("Scope: "))
	b.WriteString(v.styles.Value.Render(v.principal.ScopeLabel()))
	if v.filter.Type != nil {
		b.WriteString(v.styles.Label.Render("  Type: "))
		b.WriteString(v.styles.Value.Render(string(*v.filter.Type)))
	}
	if v.filter.SearchTerm != "" {
		b.WriteString(v.styles.Label.Render("  Search: "))
		b.WriteString(v.styles.Value.Render(v.filter.SearchTerm))
	}
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(v.styles.Label.Render("No assets found."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.RenderResponsive(width))
	}

	b.WriteString("\n")
	if width < 60 {
		b.WriteString(v.styles.Help.Render("↑↓:Nav  Enter:View  /:Search"))
	} else {
		b.WriteString(v.styles.Help.Render("Up/Down:Select  Enter:Details  a:Add  /:Search  t:Type  PgUp/Dn:Page  ! = inspection overdue"))
	}
	return b.String()
}

// RenderDetail renders one asset with its fault history.
func (v *RegisterView) RenderDetail(a *models.Asset, history []*models.FaultRecord, width int) string {
	if a == nil {
		return v.styles.Label.Render("No asset selected")
	}
	labelWidth := 16
	if width < 60 {
		labelWidth = 10
	}
	field := func(label, value string) string {
		return v.styles.Field(label+":", labelWidth, value) + "\n"
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("═══ " + a.AssetCode + " ═══"))
	b.WriteString("\n\n")

	b.WriteString(field("Name", a.Name))
	b.WriteString(field("Type", string(a.Type)))
	b.WriteString(field("Status", string(a.Status)))
	b.WriteString(field("Region", v.ref.RegionName(a.RegionID)))
	b.WriteString(field("District", v.ref.DistrictName(a.DistrictID)))
	b.WriteString(field("Installed", util.FormatDate(a.InstallDate)))
	if a.CapacityKVA != nil {
		b.WriteString(field("Capacity", fmt.Sprintf("%.0f kVA", *a.CapacityKVA)))
	}
	inspected := "never"
	if a.LastInspection != nil {
		inspected = util.FormatDate(*a.LastInspection)
	}
	if v.service.Overdue(a) {
		b.WriteString(field("Inspected", inspected+" "+v.styles.Warning.Render("OVERDUE")))
	} else {
		b.WriteString(field("Inspected", inspected))
	}
	if a.Notes != "" {
		b.WriteString(field("Notes", a.Notes))
	}
	b.WriteString("\n")

	b.WriteString(v.styles.Section.Render(fmt.Sprintf("FAULT HISTORY (%d)", len(history))))
	b.WriteString("\n")
	if len(history) == 0 {
		b.WriteString(v.styles.Muted.Render("  No faults recorded"))
		b.WriteString("\n")
	}
	for _, f := range history {
		b.WriteString(fmt.Sprintf("  %s  %-13s %-11s %d\n",
			util.FormatDateTime(f.OccurrenceDate), f.FaultType, f.Status, f.AffectedPopulation.Total()))
	}
	b.WriteString("\n")

	b.WriteString(v.styles.Help.Render("Esc:Back  i:Inspected today  s:Cycle status  d:Delete"))
	return b.String()
}

// NextStatus returns the status after s in the cycle used by the register.
func NextStatus(s models.AssetStatus) models.AssetStatus {
	switch s {
	case models.AssetStatusInService:
		return models.AssetStatusOutOfService
	case models.AssetStatusOutOfService:
		return models.AssetStatusUnderRepair
	case models.AssetStatusUnderRepair:
		return models.AssetStatusDecommissioned
	default:
		return models.AssetStatusInService
	}
}
