package components

import (
	"strings"
	"unicode"
)

// FormField is a focusable form control.
type FormField interface {
	Focus(bool)
	IsFocused() bool
	HandleKey(string)
	Render(labelWidth int) string
}

// Input is a single line text input.
type Input struct {
	label       string
	value       []rune
	placeholder string
	width       int
	maxLength   int
	cursor      int
	focused     bool
	required    bool
	numeric     bool
	err         string
	styles      Styles
}

// NewInput creates a new input field.
func NewInput(label string, styles Styles) *Input {
	return &Input{
		label:     label,
		width:     20,
		maxLength: 100,
		styles:    styles,
	}
}

// SetValue sets the input value and moves the cursor to its end.
func (i *Input) SetValue(v string) *Input {
	i.value = []rune(v)
	i.cursor = len(i.value)
	return i
}

// SetPlaceholder sets the text shown while the input is empty.
func (i *Input) SetPlaceholder(p string) *Input {
	i.placeholder = p
	return i
}

// SetWidth sets the input width.
func (i *Input) SetWidth(w int) *Input {
	i.width = w
	return i
}

// SetMaxLength sets the maximum input length.
func (i *Input) SetMaxLength(m int) *Input {
	i.maxLength = m
	return i
}

// SetRequired marks the field as required.
func (i *Input) SetRequired(r bool) *Input {
	i.required = r
	return i
}

// SetNumeric restricts input to digits.
func (i *Input) SetNumeric(n bool) *Input {
	i.numeric = n
	return i
}

// SetError sets an error message shown after the field.
func (i *Input) SetError(e string) *Input {
	i.err = e
	return i
}

// Focus sets the focus state.
func (i *Input) Focus(focused bool) {
	i.focused = focused
}

// IsFocused returns the focus state.
func (i *Input) IsFocused() bool {
	return i.focused
}

// Value returns the trimmed value.
func (i *Input) Value() string {
	return strings.TrimSpace(string(i.value))
}

// HandleKey applies an editing key or inserts a printable character.
func (i *Input) HandleKey(key string) {
	if !i.focused {
		return
	}

	switch key {
	case "backspace":
		if i.cursor > 0 {
			i.value = append(i.value[:i.cursor-1], i.value[i.cursor:]...)
			i.cursor--
		}
	case "delete":
		if i.cursor < len(i.value) {
			i.value = append(i.value[:i.cursor], i.value[i.cursor+1:]...)
		}
	case "left":
		if i.cursor > 0 {
			i.cursor--
		}
	case "right":
		if i.cursor < len(i.value) {
			i.cursor++
		}
	case "home", "ctrl+a":
		i.cursor = 0
	case "end", "ctrl+e":
		i.cursor = len(i.value)
	case "space":
		i.insert(' ')
	default:
		r := []rune(key)
		if len(r) == 1 && unicode.IsPrint(r[0]) {
			i.insert(r[0])
		}
	}
}

func (i *Input) insert(r rune) {
	if len(i.value) >= i.maxLength {
		return
	}
	if i.numeric && !unicode.IsDigit(r) {
		return
	}
	i.value = append(i.value[:i.cursor], append([]rune{r}, i.value[i.cursor:]...)...)
	i.cursor++
}

// Validate checks the required flag and records the error.
func (i *Input) Validate() bool {
	if i.required && i.Value() == "" {
		i.err = "Required"
		return false
	}
	i.err = ""
	return true
}

// Render draws the field with its label padded to labelWidth.
func (i *Input) Render(labelWidth int) string {
	label := i.label
	if i.required {
		label += "*"
	}

	var display string
	n := len(i.value)
	switch {
	case n == 0 && !i.focused && i.placeholder != "":
		display = i.styles.Muted.Render(i.placeholder)
		n = len([]rune(i.placeholder))
	case i.focused:
		display = i.styles.Accent.Render(string(i.value[:i.cursor]) + "_" + string(i.value[i.cursor:]))
		n++
	default:
		display = i.styles.Value.Render(string(i.value))
	}
	if n < i.width {
		display += strings.Repeat(" ", i.width-n)
	}

	out := i.styles.Label.Width(labelWidth).Render(label+":") + " " + display
	if i.err != "" {
		out += " " + i.styles.Error.Render(i.err)
	}
	return out
}

// Select chooses one of a fixed set of options with left and right.
type Select struct {
	label    string
	options  []string
	selected int
	focused  bool
	styles   Styles
}

// NewSelect creates a new select input.
func NewSelect(label string, options []string, styles Styles) *Select {
	return &Select{label: label, options: options, styles: styles}
}

// SetSelected sets the selected index.
func (s *Select) SetSelected(idx int) *Select {
	if idx >= 0 && idx < len(s.options) {
		s.selected = idx
	}
	return s
}

// SetValue selects the option equal to v, if present.
func (s *Select) SetValue(v string) *Select {
	for i, o := range s.options {
		if o == v {
			s.selected = i
		}
	}
	return s
}

// Focus sets the focus state.
func (s *Select) Focus(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state.
func (s *Select) IsFocused() bool {
	return s.focused
}

// Value returns the selected option.
func (s *Select) Value() string {
	if s.selected >= 0 && s.selected < len(s.options) {
		return s.options[s.selected]
	}
	return ""
}

// SelectedIndex returns the selected index.
func (s *Select) SelectedIndex() int {
	return s.selected
}

// HandleKey moves the selection.
func (s *Select) HandleKey(key string) {
	if !s.focused {
		return
	}
	switch key {
	case "left", "h":
		if s.selected > 0 {
			s.selected--
		}
	case "right", "l", "space", " ":
		if s.selected < len(s.options)-1 {
			s.selected++
		} else if key == "space" || key == " " {
			s.selected = 0
		}
	}
}

// Render draws the options with the selected one bracketed.
func (s *Select) Render(labelWidth int) string {
	var b strings.Builder
	b.WriteString(s.styles.Label.Width(labelWidth).Render(s.label + ":"))
	for i, opt := range s.options {
		b.WriteString(" ")
		switch {
		case i == s.selected && s.focused:
			b.WriteString(s.styles.Accent.Bold(true).Render("[" + opt + "]"))
		case i == s.selected:
			b.WriteString(s.styles.Value.Bold(true).Render("(" + opt + ")"))
		default:
			b.WriteString(s.styles.Muted.Render(" " + opt + " "))
		}
	}
	return b.String()
}

var (
	_ FormField = (*Input)(nil)
	_ FormField = (*Select)(nil)
)

// Form moves focus across fields and tracks submit and cancel.
type Form struct {
	fields     []FormField
	focusIndex int
	submitted  bool
	cancelled  bool
}

// NewForm creates a form over fields and focuses the first.
func NewForm(fields ...FormField) *Form {
	f := &Form{fields: fields}
	if len(fields) > 0 {
		fields[0].Focus(true)
	}
	return f
}

// HandleKey handles navigation keys and passes the rest to the focused
// field. Enter on the last field submits.
func (f *Form) HandleKey(key string) {
	switch key {
	case "tab", "down":
		f.move(1)
	case "shift+tab", "up":
		f.move(-1)
	case "ctrl+s":
		f.submitted = true
	case "esc":
		f.cancelled = true
	case "enter":
		if f.focusIndex == len(f.fields)-1 {
			f.submitted = true
		} else {
			f.move(1)
		}
	default:
		if f.focusIndex < len(f.fields) {
			f.fields[f.focusIndex].HandleKey(key)
		}
	}
}

func (f *Form) move(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex = (f.focusIndex + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focusIndex].Focus(true)
}

// FocusIndex returns the index of the focused field.
func (f *Form) FocusIndex() int {
	return f.focusIndex
}

// Fields returns the form fields in order.
func (f *Form) Fields() []FormField {
	return f.fields
}

// IsSubmitted returns true once the form was submitted.
func (f *Form) IsSubmitted() bool {
	return f.submitted
}

// Reopen clears the submitted flag after a failed submit.
func (f *Form) Reopen() {
	f.submitted = false
}

// IsCancelled returns true if the form was cancelled.
func (f *Form) IsCancelled() bool {
	return f.cancelled
}
