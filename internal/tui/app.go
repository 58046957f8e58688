package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/config"
	"github.com/gridline/faultdesk/internal/models"
	assetsvc "github.com/gridline/faultdesk/internal/services/assets"
	"github.com/gridline/faultdesk/internal/services/outages"
	assetviews "github.com/gridline/faultdesk/internal/tui/views/assets"
	faultviews "github.com/gridline/faultdesk/internal/tui/views/faults"
	"github.com/gridline/faultdesk/internal/tui/views/reliability"
	"github.com/gridline/faultdesk/internal/util"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// MaxContentWidth is the maximum width for content display
const MaxContentWidth = 120

// chromeLines is the height of the header, alert bar and footer.
const chromeLines = 6

// Module represents a view module in the application.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleFaults    Module = "faults"
	ModuleAssets    Module = "assets"
	ModuleHelp      Module = "help"
)

// Deps are the services and settings the app runs against.
type Deps struct {
	Config    *config.Config
	Clock     util.Clock
	Principal access.Principal
	Reference *models.ReferenceData
	Outages   *outages.Service
	Assets    *assetsvc.Service
	Logger    *slog.Logger
}

// App is the main Bubble Tea application model.
type App struct {
	ctx       context.Context
	config    *config.Config
	clock     util.Clock
	logger    *slog.Logger
	principal *access.Principal
	ref       *models.ReferenceData

	outageSvc *outages.Service
	assetSvc  *assetsvc.Service

	dashboard    *reliability.DashboardView
	faultList    *faultviews.ListView
	faultForm    *faultviews.Form
	register     *assetviews.RegisterView
	assetForm    *assetviews.Form
	assetHistory []*models.FaultRecord

	// UI state
	theme    *Theme
	keys     KeyMap
	width    int
	height   int
	ready    bool
	quitting bool
	confirm  *confirmation

	currentModule  Module
	previousModule Module
	showDetail     bool
	showForm       bool
	searchMode     bool
	searchInput    string

	alerts     []Alert
	openFaults int
}

// confirmation is a yes/no modal. onYes runs when confirmed; a nil onYes
// quits the app.
type confirmation struct {
	title  string
	prompt string
	onYes  tea.Cmd
}

// Alert represents a desk alert.
type Alert struct {
	Level   AlertLevel
	Message string
	Time    time.Time
}

// AlertLevel indicates the severity of an alert.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// tickMsg is sent periodically to update the UI.
type tickMsg time.Time

type (
	dashboardLoadedMsg struct{ err error }
	faultsLoadedMsg    struct{ err error }
	assetsLoadedMsg    struct{ err error }
	openCountMsg       struct{ count int }

	historyLoadedMsg struct {
		records []*models.FaultRecord
		err     error
	}

	// actionMsg reports the outcome of a write. done is the success alert.
	actionMsg struct {
		module Module
		done   string
		err    error
		closed bool
	}
)

// New creates a new App instance.
func New(deps Deps) *App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = util.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	principal := deps.Principal
	theme := NewTheme(cfg.Display.ColorScheme)
	pageSize := cfg.Display.PageSize
	if pageSize < 1 {
		pageSize = models.DefaultPageSize
	}

	a := &App{
		ctx:           context.Background(),
		config:        cfg,
		clock:         clock,
		logger:        logger,
		principal:     &principal,
		ref:           deps.Reference,
		outageSvc:     deps.Outages,
		assetSvc:      deps.Assets,
		theme:         theme,
		keys:          DefaultKeyMap(),
		currentModule: ModuleDashboard,
	}
	a.dashboard = reliability.NewDashboardView(deps.Outages, a.principal, theme.Styles(), cfg.Metrics.ReportWindowDays)
	a.faultList = faultviews.NewListView(deps.Outages, a.principal, deps.Reference, theme.Styles(), pageSize)
	a.faultList.SetNow(clock.Now())
	a.register = assetviews.NewRegisterView(deps.Assets, a.principal, deps.Reference, theme.Styles(), pageSize)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
		a.loadDashboard(),
		a.loadOpenCount(),
	)
}

// tickCmd returns a command that sends tick messages.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.updateViewDimensions()
		return a, nil

	case tickMsg:
		a.faultList.SetNow(a.clock.Now())
		return a, tickCmd()

	case openCountMsg:
		a.openFaults = msg.count
		return a, nil

	case dashboardLoadedMsg:
		a.loadFailed("reliability report", msg.err)
		return a, nil

	case faultsLoadedMsg:
		a.loadFailed("fault log", msg.err)
		return a, nil

	case assetsLoadedMsg:
		a.loadFailed("asset register", msg.err)
		return a, nil

	case historyLoadedMsg:
		a.assetHistory = msg.records
		a.loadFailed("fault history", msg.err)
		return a, nil

	case actionMsg:
		return a, a.handleAction(msg)
	}

	return a, nil
}

func (a *App) loadFailed(what string, err error) {
	if err != nil {
		a.AddAlert(AlertWarning, "Failed to load "+what+": "+err.Error())
	}
}

// handleAction applies the result of a write and reloads what it touched.
func (a *App) handleAction(msg actionMsg) tea.Cmd {
	if msg.err != nil {
		level := AlertWarning
		var denied *access.DeniedError
		if errors.As(msg.err, &denied) || errors.Is(msg.err, access.ErrUnauthenticated) {
			level = AlertCritical
		}
		a.AddAlert(level, msg.err.Error())
		switch {
		case a.showForm && a.faultForm != nil:
			a.faultForm.SetError(msg.err)
		case a.showForm && a.assetForm != nil:
			a.assetForm.SetError(msg.err)
		}
		return nil
	}

	a.AddAlert(AlertInfo, msg.done)
	a.showForm = false
	a.faultForm = nil
	a.assetForm = nil
	if msg.closed {
		a.showDetail = false
	}

	switch msg.module {
	case ModuleAssets:
		cmds := []tea.Cmd{a.loadAssets()}
		if a.showDetail {
			cmds = append(cmds, a.loadHistory())
		}
		return tea.Batch(cmds...)
	default:
		return tea.Batch(a.loadFaults(), a.loadOpenCount(), a.loadDashboard())
	}
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The modal takes priority
	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			c := a.confirm
			a.confirm = nil
			if c.onYes == nil {
				a.quitting = true
				return a, tea.Quit
			}
			return a, c.onYes
		case "n", "N", "esc":
			a.confirm = nil
		}
		return a, nil
	}

	// Forms and search need every key
	if a.showForm {
		return a.handleFormKeys(msg)
	}
	if a.searchMode {
		return a.handleSearchKeys(msg)
	}

	if a.keys.IsQuit(msg) {
		a.confirm = &confirmation{title: "CONFIRM EXIT", prompt: "Are you sure you want to exit?"}
		return a, nil
	}

	if module, ok := a.keys.FunctionKeyModule(msg); ok {
		return a, a.switchTo(module)
	}
	if a.keys.Help.Matches(msg) {
		return a, a.switchTo(ModuleHelp)
	}

	if a.keys.Refresh.Matches(msg) {
		return a, a.refresh()
	}

	if a.keys.Back.Matches(msg) {
		if a.showDetail {
			a.showDetail = false
			return a, nil
		}
		if a.currentModule == ModuleHelp && a.previousModule != "" {
			a.currentModule = a.previousModule
			a.previousModule = ""
		}
		return a, nil
	}

	switch a.currentModule {
	case ModuleDashboard:
		if msg.String() == "w" {
			a.dashboard.CycleWindow()
			return a, a.loadDashboard()
		}
	case ModuleFaults:
		return a.handleFaultKeys(msg)
	case ModuleAssets:
		return a.handleAssetKeys(msg)
	}
	return a, nil
}

// switchTo moves to module and loads its data.
func (a *App) switchTo(module Module) tea.Cmd {
	a.showDetail = false
	if module == ModuleHelp {
		if a.currentModule != ModuleHelp {
			a.previousModule = a.currentModule
		}
		a.currentModule = ModuleHelp
		return nil
	}
	a.currentModule = module
	return a.refresh()
}

func (a *App) refresh() tea.Cmd {
	switch a.currentModule {
	case ModuleFaults:
		return tea.Batch(a.loadFaults(), a.loadOpenCount())
	case ModuleAssets:
		return a.loadAssets()
	case ModuleDashboard:
		return tea.Batch(a.loadDashboard(), a.loadOpenCount())
	}
	return nil
}

// handleFaultKeys handles keys in the fault log.
func (a *App) handleFaultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showDetail {
		f := a.faultList.SelectedFault()
		if f == nil {
			a.showDetail = false
			return a, nil
		}
		switch msg.String() {
		case "w":
			return a, a.faultAction("Work started on fault", false, func(ctx context.Context) error {
				_, err := a.outageSvc.StartWork(ctx, a.principal, f.ID)
				return err
			})
		case "r":
			return a, a.faultAction("Fault restored", false, func(ctx context.Context) error {
				_, err := a.outageSvc.RestoreFault(ctx, a.principal, f.ID, a.clock.Now())
				return err
			})
		case "x":
			return a, a.faultAction("Repair completed", false, func(ctx context.Context) error {
				_, err := a.outageSvc.CompleteRepair(ctx, a.principal, f.ID, a.clock.Now())
				return err
			})
		case "d":
			a.confirm = &confirmation{
				title:  "DELETE FAULT",
				prompt: fmt.Sprintf("Delete the %s fault in %s?", f.FaultType, a.ref.DistrictName(f.DistrictID)),
				onYes: a.faultAction("Fault deleted", true, func(ctx context.Context) error {
					return a.outageSvc.DeleteFault(ctx, a.principal, f.ID)
				}),
			}
		}
		return a, nil
	}

	switch {
	case a.keys.Up.Matches(msg):
		a.faultList.MoveUp()
	case a.keys.Down.Matches(msg):
		a.faultList.MoveDown()
	case a.keys.Select.Matches(msg):
		if a.faultList.SelectedFault() != nil {
			a.showDetail = true
		}
	case a.keys.PageUp.Matches(msg):
		a.faultList.PrevPage()
		return a, a.loadFaults()
	case a.keys.PageDown.Matches(msg):
		a.faultList.NextPage()
		return a, a.loadFaults()
	default:
		switch msg.String() {
		case "a":
			a.faultForm = faultviews.NewForm(faultviews.LocationFor(*a.principal), a.theme.Styles(), a.clock.Now())
			a.showForm = true
		case "o":
			a.faultList.ToggleOpenOnly()
			return a, a.loadFaults()
		case "t":
			a.faultList.CycleType()
			return a, a.loadFaults()
		}
	}
	return a, nil
}

// handleAssetKeys handles keys in the asset register.
func (a *App) handleAssetKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showDetail {
		asset := a.register.SelectedAsset()
		if asset == nil {
			a.showDetail = false
			return a, nil
		}
		switch msg.String() {
		case "i":
			return a, a.assetAction("Inspection recorded for "+asset.AssetCode, false, func(ctx context.Context) error {
				_, err := a.assetSvc.RecordInspection(ctx, a.principal, asset.ID, a.clock.Now())
				return err
			})
		case "s":
			next := assetviews.NextStatus(asset.Status)
			return a, a.assetAction(asset.AssetCode+" set to "+string(next), false, func(ctx context.Context) error {
				_, err := a.assetSvc.SetStatus(ctx, a.principal, asset.ID, next)
				return err
			})
		case "d":
			a.confirm = &confirmation{
				title:  "DELETE ASSET",
				prompt: "Delete " + asset.AssetCode + " from the register?",
				onYes: a.assetAction(asset.AssetCode+" deleted", true, func(ctx context.Context) error {
					return a.assetSvc.Delete(ctx, a.principal, asset.ID)
				}),
			}
		}
		return a, nil
	}

	switch {
	case a.keys.Up.Matches(msg):
		a.register.MoveUp()
	case a.keys.Down.Matches(msg):
		a.register.MoveDown()
	case a.keys.Select.Matches(msg):
		if a.register.SelectedAsset() != nil {
			a.showDetail = true
			a.assetHistory = nil
			return a, a.loadHistory()
		}
	case a.keys.PageUp.Matches(msg):
		a.register.PrevPage()
		return a, a.loadAssets()
	case a.keys.PageDown.Matches(msg):
		a.register.NextPage()
		return a, a.loadAssets()
	default:
		switch msg.String() {
		case "a":
			district := ""
			if a.principal.Role.IsDistrictScoped() {
				district = a.principal.District
			}
			a.assetForm = assetviews.NewForm(district, a.theme.Styles())
			a.showForm = true
		case "/":
			a.searchMode = true
			a.searchInput = ""
		case "t":
			a.register.CycleType()
			return a, a.loadAssets()
		}
	}
	return a, nil
}

// handleFormKeys handles key presses while a form is open.
func (a *App) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case a.faultForm != nil:
		a.faultForm.HandleKey(key)
		if a.faultForm.IsCancelled() {
			a.closeForm()
			return a, nil
		}
		if a.faultForm.IsSubmitted() {
			return a, a.saveFault()
		}
	case a.assetForm != nil:
		a.assetForm.HandleKey(key)
		if a.assetForm.IsCancelled() {
			a.closeForm()
			return a, nil
		}
		if a.assetForm.IsSubmitted() {
			return a, a.saveAsset()
		}
	default:
		a.showForm = false
	}
	return a, nil
}

func (a *App) closeForm() {
	a.showForm = false
	a.faultForm = nil
	a.assetForm = nil
}

// handleSearchKeys handles key presses in search mode.
func (a *App) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "esc":
		a.searchMode = false
		a.searchInput = ""
		a.register.SetSearch("")
		return a, a.loadAssets()
	case "enter":
		a.searchMode = false
		a.register.SetSearch(a.searchInput)
		return a, a.loadAssets()
	case "backspace":
		if r := []rune(a.searchInput); len(r) > 0 {
			a.searchInput = string(r[:len(r)-1])
		}
	case "space":
		a.searchInput += " "
	default:
		if len([]rune(key)) == 1 {
			a.searchInput += key
		}
	}
	return a, nil
}

func (a *App) faultAction(done string, closes bool, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{module: ModuleFaults, done: done, closed: closes, err: fn(a.ctx)}
	}
}

func (a *App) assetAction(done string, closes bool, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{module: ModuleAssets, done: done, closed: closes, err: fn(a.ctx)}
	}
}

// saveFault records the fault from the open form.
func (a *App) saveFault() tea.Cmd {
	form := a.faultForm
	return func() tea.Msg {
		in, err := form.GetInput()
		if err != nil {
			return actionMsg{module: ModuleFaults, err: err}
		}
		f, err := a.outageSvc.RecordFault(a.ctx, a.principal, in)
		if err != nil {
			return actionMsg{module: ModuleFaults, err: err}
		}
		return actionMsg{module: ModuleFaults, done: fmt.Sprintf("Fault recorded in %s", a.ref.DistrictName(f.DistrictID))}
	}
}

// saveAsset registers the asset from the open form.
func (a *App) saveAsset() tea.Cmd {
	form := a.assetForm
	return func() tea.Msg {
		in, err := form.GetInput()
		if err != nil {
			return actionMsg{module: ModuleAssets, err: err}
		}
		asset, err := a.assetSvc.Register(a.ctx, a.principal, in)
		if err != nil {
			return actionMsg{module: ModuleAssets, err: err}
		}
		return actionMsg{module: ModuleAssets, done: "Asset registered as " + asset.AssetCode}
	}
}

func (a *App) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		return dashboardLoadedMsg{err: a.dashboard.Load(a.ctx, a.clock.Now())}
	}
}

func (a *App) loadFaults() tea.Cmd {
	return func() tea.Msg {
		return faultsLoadedMsg{err: a.faultList.Load(a.ctx)}
	}
}

func (a *App) loadAssets() tea.Cmd {
	return func() tea.Msg {
		return assetsLoadedMsg{err: a.register.Load(a.ctx)}
	}
}

func (a *App) loadHistory() tea.Cmd {
	asset := a.register.SelectedAsset()
	if asset == nil {
		return nil
	}
	return func() tea.Msg {
		records, err := a.assetSvc.FaultHistory(a.ctx, a.principal, asset.ID)
		return historyLoadedMsg{records: records, err: err}
	}
}

// loadOpenCount counts the open faults in scope for the header.
func (a *App) loadOpenCount() tea.Cmd {
	return func() tea.Msg {
		list, err := a.outageSvc.ListVisible(a.ctx, a.principal, models.FaultFilter{OpenOnly: true}, models.NewPagination(1, 1))
		if err != nil {
			a.logger.Warn("counting open faults", "error", err)
			return openCountMsg{}
		}
		return openCountMsg{count: list.Total}
	}
}

// updateViewDimensions sizes the list views to the terminal.
func (a *App) updateViewDimensions() {
	// Title, filter line, table header, rule and footer, help line.
	rows := ContentHeight(a.height, chromeLines) - 10
	if rows < 3 {
		rows = 3
	}
	a.faultList.SetVisibleRows(rows)
	a.register.SetVisibleRows(rows)
}

func (a *App) contentWidth() int {
	return ContentWidth(a.width, 20, MaxContentWidth)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.quitting {
		return a.theme.Title.Render("Fault desk shutting down...")
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	b.WriteString(a.renderAlertBar())
	b.WriteString("\n")

	contentHeight := ContentHeight(a.height, chromeLines)
	if a.confirm != nil {
		b.WriteString(a.renderConfirmDialog(contentHeight))
	} else {
		b.WriteString(a.renderContent(contentHeight))
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderHeader renders the top header bar.
func (a *App) renderHeader() string {
	title := fmt.Sprintf("FAULTDESK v%s", Version)
	if a.config.Utility.Name != "" {
		title += " | " + a.config.Utility.Name
	}

	info := fmt.Sprintf("%s | %s | %s | OPEN: %d",
		a.principal.Subject,
		a.principal.Role.Label(),
		a.principal.ScopeLabel(),
		a.openFaults,
	)
	if GetBreakpoint(a.width) == BreakpointNarrow {
		info = fmt.Sprintf("%s | OPEN: %d", a.principal.Role.Label(), a.openFaults)
	}

	spacing := a.width - lipgloss.Width(title) - lipgloss.Width(info) - 4
	if spacing < 1 {
		spacing = 1
	}

	header := a.theme.Header.Render(title) +
		strings.Repeat(" ", spacing) +
		a.theme.Header.Render(info)

	return header + "\n" + a.theme.DrawDoubleLine(a.width)
}

// renderAlertBar renders the clock and the latest alert.
func (a *App) renderAlertBar() string {
	now := a.clock.Now().In(a.config.Utility.Location())
	timeStr := now.Format(a.config.Display.DateFormat + " " + a.config.Display.TimeFormat)

	var alertText string
	if len(a.alerts) > 0 {
		alert := a.alerts[0]
		switch alert.Level {
		case AlertCritical:
			alertText = a.theme.AlertCrit.Render("DENIED: " + alert.Message)
		case AlertWarning:
			alertText = a.theme.AlertWarn.Render("WARNING: " + alert.Message)
		default:
			alertText = a.theme.Alert.Render("INFO: " + alert.Message)
		}
	} else {
		alertText = a.theme.Muted.Render("Desk ready")
	}

	line := a.theme.Value.Render(timeStr) + a.theme.Muted.Render(" │ ") + alertText
	return lipgloss.NewStyle().MaxWidth(max(a.width, 1)).Render(line)
}

// renderContent renders the main content area centred in the terminal.
func (a *App) renderContent(height int) string {
	content := a.moduleContent(height)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	return style.Render(lipgloss.NewStyle().Width(a.contentWidth()).Render(content))
}

func (a *App) moduleContent(height int) string {
	width := a.contentWidth()
	switch a.currentModule {
	case ModuleFaults:
		switch {
		case a.showForm && a.faultForm != nil:
			return a.faultForm.Render(width)
		case a.showDetail:
			return a.faultList.RenderDetail(a.faultList.SelectedFault(), width)
		}
		return a.faultList.Render(width, height)
	case ModuleAssets:
		switch {
		case a.showForm && a.assetForm != nil:
			return a.assetForm.Render(width)
		case a.showDetail:
			return a.register.RenderDetail(a.register.SelectedAsset(), a.assetHistory, width)
		}
		var search string
		if a.searchMode {
			search = a.theme.Label.Render("SEARCH: ") +
				a.theme.Accent.Render(a.searchInput+"_") + "\n\n"
		}
		return search + a.register.Render(width, height)
	case ModuleHelp:
		return a.renderHelp(width)
	default:
		return a.dashboard.Render(width, height)
	}
}

// renderHelp renders the help screen with the operator's permissions.
func (a *App) renderHelp(width int) string {
	var b strings.Builder

	b.WriteString(a.theme.Title.Render("═══ HELP ═══"))
	b.WriteString("\n\n")

	lines := func(items [][2]string) string {
		var s strings.Builder
		for i, item := range items {
			if i > 0 {
				s.WriteString("\n")
			}
			s.WriteString(a.theme.Primary.Render(fmt.Sprintf("%-9s %s", item[0], item[1])))
		}
		return s.String()
	}

	nav := lines([][2]string{
		{"F1", "Help"},
		{"F2", "Reliability"},
		{"F3", "Fault log"},
		{"F4", "Asset register"},
		{"F5", "Refresh"},
		{"F10/q", "Quit"},
	})
	controls := lines([][2]string{
		{"Up/Down", "Navigate"},
		{"Enter", "Details"},
		{"Esc", "Back/Cancel"},
		{"a", "Add"},
		{"Tab", "Next field"},
		{"PgUp/Dn", "Page"},
	})

	panelWidth := 34
	b.WriteString(SideBySide(
		a.theme.Panel("NAVIGATION", nav, panelWidth),
		a.theme.Panel("CONTROLS", controls, panelWidth),
		width, 2))
	b.WriteString("\n\n")

	yesNo := func(ok bool) string {
		if ok {
			return a.theme.Success.Render("yes")
		}
		return a.theme.Muted.Render("no")
	}
	role := a.principal.Role
	perms := lines([][2]string{
		{"Role", role.Label()},
		{"Scope", a.principal.ScopeLabel()},
	}) + "\n" +
		a.theme.Label.Render("Record faults      ") + yesNo(true) + "\n" +
		a.theme.Label.Render("Delete faults      ") + yesNo(access.HasRequiredRole(role, outages.DeleteRole)) + "\n" +
		a.theme.Label.Render("Manage assets      ") + yesNo(access.HasRequiredRole(role, assetsvc.ManageRole) || waived(role, access.ScopeAssetManagement))
	b.WriteString(a.theme.Panel("YOUR ACCESS", perms, min(width, 2*panelWidth+2)))
	b.WriteString("\n\n")

	b.WriteString(a.theme.Muted.Render("Press Esc to return"))
	return b.String()
}

// waived reports whether a role exception lets role act in scope.
func waived(role access.Role, scope access.Scope) bool {
	for _, ex := range access.RoleExceptions() {
		if ex.Role == role && ex.Scope == scope {
			return true
		}
	}
	return false
}

// renderConfirmDialog renders the active confirmation modal.
func (a *App) renderConfirmDialog(height int) string {
	dialog := a.theme.Box.Render(
		a.theme.Title.Render(a.confirm.title) + "\n\n" +
			a.theme.Value.Render(a.confirm.prompt) + "\n\n" +
			a.theme.Label.Render("[Y]es  [N]o"),
	)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(dialog)
}

// renderFooter renders the bottom status bar.
func (a *App) renderFooter() string {
	help := a.keys.StatusBarHelp()
	if GetBreakpoint(a.width) == BreakpointNarrow {
		help = "[F1]? [F2]Rel [F3]Flt [F4]Ast [F10]Quit"
	}
	return a.theme.DrawHorizontalLine(a.width) + "\n" + a.theme.Footer.Render(help)
}

// AddAlert adds a new alert to the display.
func (a *App) AddAlert(level AlertLevel, message string) {
	a.alerts = append([]Alert{{
		Level:   level,
		Message: message,
		Time:    a.clock.Now(),
	}}, a.alerts...)

	if len(a.alerts) > 10 {
		a.alerts = a.alerts[:10]
	}
	if level != AlertInfo {
		a.logger.Warn("desk alert", "message", message)
	}
}

// ClearAlerts removes all alerts.
func (a *App) ClearAlerts() {
	a.alerts = nil
}

// Run starts the TUI application.
func Run(ctx context.Context, deps Deps) error {
	app := New(deps)
	app.ctx = ctx

	p := tea.NewProgram(app, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	return err
}
