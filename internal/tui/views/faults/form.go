package faults

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/metrics"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/services/outages"
	"github.com/gridline/faultdesk/internal/tui/components"
	"github.com/gridline/faultdesk/internal/util"
)

// LocationContext is the region and district a new fault is entered against,
// taken from the operator's scope. Locked parts are shown but not editable.
type LocationContext struct {
	Region         string
	District       string
	RegionLocked   bool
	DistrictLocked bool
}

// LocationFor returns the entry location implied by p's scope.
func LocationFor(p access.Principal) LocationContext {
	switch {
	case p.Role.IsGlobal():
		return LocationContext{}
	case p.Role.IsDistrictScoped():
		return LocationContext{Region: p.Region, District: p.District, RegionLocked: true, DistrictLocked: true}
	default:
		return LocationContext{Region: p.Region, RegionLocked: true}
	}
}

// Form collects a new fault record.
type Form struct {
	loc    LocationContext
	styles components.Styles

	region      *components.Input
	district    *components.Input
	asset       *components.Input
	faultType   *components.Select
	description *components.Input
	occurred    *components.Input
	restored    *components.Input
	rural       *components.Input
	urban       *components.Input
	metro       *components.Input

	form *components.Form
	err  string
}

// NewForm creates a fault entry form at loc. now prefills the occurrence.
func NewForm(loc LocationContext, styles components.Styles, now time.Time) *Form {
	types := make([]string, len(models.FaultTypes))
	for i, t := range models.FaultTypes {
		types[i] = string(t)
	}

	f := &Form{
		loc:         loc,
		styles:      styles,
		region:      components.NewInput("Region", styles).SetRequired(true).SetWidth(24).SetValue(loc.Region),
		district:    components.NewInput("District", styles).SetRequired(true).SetWidth(24).SetValue(loc.District),
		asset:       components.NewInput("Asset ID", styles).SetWidth(36),
		faultType:   components.NewSelect("Type", types, styles),
		description: components.NewInput("Description", styles).SetWidth(40).SetMaxLength(200),
		occurred:    components.NewInput("Occurred", styles).SetRequired(true).SetWidth(16).SetMaxLength(16).SetValue(now.UTC().Format(util.DateTimeFormat)),
		restored:    components.NewInput("Restored", styles).SetWidth(16).SetMaxLength(16).SetPlaceholder("YYYY-MM-DD HH:MM"),
		rural:       components.NewInput("Rural", styles).SetNumeric(true).SetWidth(8).SetMaxLength(7).SetValue("0"),
		urban:       components.NewInput("Urban", styles).SetNumeric(true).SetWidth(8).SetMaxLength(7).SetValue("0"),
		metro:       components.NewInput("Metro", styles).SetNumeric(true).SetWidth(8).SetMaxLength(7).SetValue("0"),
	}

	var fields []components.FormField
	if !loc.RegionLocked {
		fields = append(fields, f.region)
	}
	if !loc.DistrictLocked {
		fields = append(fields, f.district)
	}
	fields = append(fields, f.asset, f.faultType, f.description, f.occurred, f.restored, f.rural, f.urban, f.metro)
	f.form = components.NewForm(fields...)
	return f
}

// HandleKey handles a key. A submit that fails validation keeps the form
// open with an error.
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

// SetError shows an error returned by the service and reopens the form.
func (f *Form) SetError(err error) {
	f.err = err.Error()
	f.form.Reopen()
}

// Error returns the current error message.
func (f *Form) Error() string {
	return f.err
}

// GetInput validates the fields and builds the service input.
func (f *Form) GetInput() (outages.RecordFaultInput, error) {
	var in outages.RecordFaultInput

	valid := f.region.Validate()
	valid = f.district.Validate() && valid
	valid = f.occurred.Validate() && valid
	if !valid {
		return in, errors.New("fill in all required fields")
	}

	occurred, err := util.ParseDateTime(f.occurred.Value())
	if err != nil {
		f.occurred.SetError("YYYY-MM-DD HH:MM")
		return in, fmt.Errorf("invalid occurrence time %q", f.occurred.Value())
	}
	in.OccurrenceDate = occurred

	if s := f.restored.Value(); s != "" {
		restored, err := util.ParseDateTime(s)
		if err != nil {
			f.restored.SetError("YYYY-MM-DD HH:MM")
			return in, fmt.Errorf("invalid restoration time %q", s)
		}
		if restored.Before(occurred) {
			f.restored.SetError("before occurrence")
			return in, fmt.Errorf("restoration: %w", metrics.ErrNegativeDuration)
		}
		f.restored.SetError("")
		in.RestorationDate = &restored
	}

	counts := make([]int, 3)
	for i, input := range []*components.Input{f.rural, f.urban, f.metro} {
		if input.Value() == "" {
			continue
		}
		n, err := strconv.Atoi(input.Value())
		if err != nil {
			return in, fmt.Errorf("invalid customer count %q", input.Value())
		}
		counts[i] = n
	}

	in.Location = outages.Location{Region: f.region.Value(), District: f.district.Value()}
	in.AssetID = f.asset.Value()
	in.FaultType = models.FaultType(f.faultType.Value())
	in.Description = f.description.Value()
	in.AffectedPopulation = models.AffectedPopulation{Rural: counts[0], Urban: counts[1], Metro: counts[2]}
	return in, nil
}

// Render renders the form fitted to width.
func (f *Form) Render(width int) string {
	labelWidth := 14
	if width > 0 && width < 60 {
		labelWidth = 10
	}

	var b strings.Builder
	b.WriteString(f.styles.Title.Render("═══ RECORD FAULT ═══"))
	b.WriteString("\n\n")

	if f.loc.RegionLocked {
		b.WriteString(f.styles.Field("Region:", labelWidth, f.loc.Region))
	} else {
		b.WriteString(f.region.Render(labelWidth))
	}
	b.WriteString("\n")
	if f.loc.DistrictLocked {
		b.WriteString(f.styles.Field("District:", labelWidth, f.loc.District))
	} else {
		b.WriteString(f.district.Render(labelWidth))
	}
	b.WriteString("\n")
	b.WriteString(f.asset.Render(labelWidth))
	b.WriteString("\n\n")

	b.WriteString(f.faultType.Render(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.description.Render(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.occurred.Render(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.restored.Render(labelWidth))
	b.WriteString("\n\n")

	b.WriteString(f.styles.Section.Render("CUSTOMERS AFFECTED"))
	b.WriteString("\n")
	b.WriteString(f.rural.Render(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.urban.Render(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.metro.Render(labelWidth))
	b.WriteString("\n")

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(f.styles.Error.Render("Error: " + f.err))
	}

	b.WriteString("\n\n")
	if width > 0 && width < 60 {
		b.WriteString(f.styles.Help.Render("Tab:Next  Ctrl+S:Save  Esc:Cancel"))
	} else {
		b.WriteString(f.styles.Help.Render("Tab/Down:Next  Shift+Tab/Up:Prev  Left/Right:Type  Ctrl+S:Save  Esc:Cancel"))
	}
	return b.String()
}
