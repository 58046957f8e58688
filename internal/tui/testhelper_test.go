package tui

import (
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/config"
	assetsvc "github.com/gridline/faultdesk/internal/services/assets"
	"github.com/gridline/faultdesk/internal/services/outages"
	"github.com/gridline/faultdesk/internal/testutil"
	"github.com/gridline/faultdesk/internal/util"
)

var (
	globalEng   = access.Principal{Subject: "grace", Role: access.RoleGlobalEngineer}
	harbourTech = access.Principal{Subject: "kwame", Role: access.RoleTechnician, Region: "CEN", District: "Harbour"}
)

// harness holds the services behind a test app.
type harness struct {
	outages *outages.Service
	assets  *assetsvc.Service
	clock   *util.FixedClock
	deps    Deps
}

// newHarness builds services over a migrated in-memory database holding the
// fixture reference catalogue.
func newHarness(t *testing.T, p access.Principal) *harness {
	t.Helper()

	db := testutil.NewTestDB(t)
	ref := db.SeedReference(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := access.NewPolicy(access.NewDirectory(ref), logger)
	clock := util.NewFixedClock(testutil.BaseTime.AddDate(0, 0, 1))

	h := &harness{
		outages: outages.NewService(db.DB.DB, ref, policy, outages.Options{Clock: clock, Logger: logger}),
		assets:  assetsvc.NewService(db.DB.DB, ref, policy, clock, logger, 90),
		clock:   clock,
	}
	cfg := config.Default()
	cfg.Utility.Name = "Coastal Power"
	h.deps = Deps{
		Config:    cfg,
		Clock:     clock,
		Principal: p,
		Reference: ref,
		Outages:   h.outages,
		Assets:    h.assets,
		Logger:    logger,
	}
	return h
}

// newTestApp creates an App at 120x40 marked ready.
func newTestApp(t *testing.T, p access.Principal) (*App, *harness) {
	t.Helper()

	h := newHarness(t, p)
	app := New(h.deps)

	app.width = 120
	app.height = 40
	app.ready = true
	app.updateViewDimensions()

	return app, h
}

// press sends msg to the app and runs every command it returns until the
// app settles.
func press(t *testing.T, app *App, msg tea.Msg) {
	t.Helper()
	_, cmd := app.Update(msg)
	drain(app, cmd)
}

// drain runs cmd and feeds the resulting messages back into the app.
// Callers must not pass commands that wait on timers.
func drain(app *App, cmd tea.Cmd) {
	pending := []tea.Cmd{cmd}
	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			pending = append(pending, msg...)
		case tea.QuitMsg:
		default:
			_, next := app.Update(msg)
			pending = append(pending, next)
		}
	}
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}

// typeText sends each rune of s as a key press.
func typeText(t *testing.T, app *App, s string) {
	t.Helper()
	for _, r := range s {
		press(t, app, keyMsg(string(r)))
	}
}
