package assets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gridline/faultdesk/internal/models"
	assetsvc "github.com/gridline/faultdesk/internal/services/assets"
	"github.com/gridline/faultdesk/internal/tui/components"
	"github.com/gridline/faultdesk/internal/util"
)

// Form collects a new asset. A non-empty district locks the district field.
type Form struct {
	styles         components.Styles
	lockedDistrict string

	district  *components.Input
	name      *components.Input
	assetType *components.Select
	installed *components.Input
	capacity  *components.Input
	notes     *components.Input

	form *components.Form
	err  string
}

// NewForm creates an asset form. district is the operator's district, or
// empty when the operator may register anywhere in scope.
func NewForm(district string, styles components.Styles) *Form {
	types := make([]string, len(assetTypes))
	for i, t := range assetTypes {
		types[i] = string(t)
	}

	f := &Form{
		styles:         styles,
		lockedDistrict: district,
		district:       components.NewInput("District", styles).SetRequired(true).SetWidth(24).SetValue(district),
		name:           components.NewInput("Name", styles).SetRequired(true).SetWidth(30).SetMaxLength(80),
		assetType:      components.NewSelect("Type", types, styles),
		installed:      components.NewInput("Installed", styles).SetWidth(10).SetMaxLength(10).SetPlaceholder("YYYY-MM-DD"),
		capacity:       components.NewInput("Capacity kVA", styles).SetNumeric(true).SetWidth(8).SetMaxLength(6),
		notes:          components.NewInput("Notes", styles).SetWidth(40).SetMaxLength(200),
	}

	var fields []components.FormField
	if district == "" {
		fields = append(fields, f.district)
	}
	fields = append(fields, f.name, f.assetType, f.installed, f.capacity, f.notes)
	f.form = components.NewForm(fields...)
	return f
}

// HandleKey handles a key. Invalid submits stay open with an error.
func (f *Form) HandleKey(key string) {
	f.form.HandleKey(key)
	if f.form.IsSubmitted() {
		if _, err := f.GetInput(); err != nil {
			f.err = err.Error()
			f.form.Reopen()
			return
		}
		f.err = ""
	}
}

// IsSubmitted returns true once a valid form was submitted.
func (f *Form) IsSubmitted() bool {
	return f.form.IsSubmitted()
}

// IsCancelled returns true if the form was cancelled.
func (f *Form) IsCancelled() bool {
	return f.form.IsCancelled()
}

// SetError shows a service error and reopens the form.
func (f *Form) SetError(err error) {
	f.err = err.Error()
	f.form.Reopen()
}

// Error returns the current error message.
func (f *Form) Error() string {
	return f.err
}

// GetInput validates the fields and builds the register input.
func (f *Form) GetInput() (assetsvc.RegisterInput, error) {
	var in assetsvc.RegisterInput

	valid := f.district.Validate()
	valid = f.name.Validate() && valid
	if !valid {
		return in, errors.New("fill in all required fields")
	}

	if s := f.installed.Value(); s != "" {
		d, err := util.ParseDate(s)
		if err != nil {
			f.installed.SetError("YYYY-MM-DD")
			return in, fmt.Errorf("invalid install date %q", s)
		}
		f.installed.SetError("")
		in.InstallDate = d
	}
	if s := f.capacity.Value(); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return in, fmt.Errorf("invalid capacity %q", s)
		}
		kva := float64(n)
		in.CapacityKVA = &kva
	}

	in.District = f.district.Value()
	in.Name = f.name.Value()
	in.Type = models.AssetType(f.assetType.Value())
	in.Notes = f.notes.Value()
	return in, nil
}

// Render renders the form.
func (f *Form) Render(width int) string {
	labelWidth := 14
	if width > 0 && width < 60 {
		labelWidth = 10
	}

	var b strings.Builder
	b.WriteString(f.styles.Title.Render("═══ REGISTER ASSET ═══"))
	b.WriteString("\n\n")

	if f.lockedDistrict != "" {
		b.WriteString(f.styles.Field("District:", labelWidth, f.lockedDistrict))
	} else {
		b.WriteString(f.district.Render(labelWidth))
	}
	b.WriteString("\n")
	for _, field := range []components.FormField{f.name, f.assetType, f.installed, f.capacity, f.notes} {
		b.WriteString(field.Render(labelWidth))
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(f.styles.Error.Render("Error: " + f.err))
	}

	b.WriteString("\n\n")
	b.WriteString(f.styles.Help.Render("Tab:Next  Ctrl+S:Save  Esc:Cancel"))
	return b.String()
}
