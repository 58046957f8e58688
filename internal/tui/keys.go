package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the key bindings shared by every screen. Screen specific
// action keys live with the screen handlers.
type KeyMap struct {
	Up       Key
	Down     Key
	PageUp   Key
	PageDown Key
	Home     Key
	End      Key

	Select  Key
	Back    Key
	Quit    Key
	Help    Key
	Refresh Key

	// Function keys for module navigation
	F1  Key
	F2  Key
	F3  Key
	F4  Key
	F5  Key
	F10 Key
}

// Key represents a key binding.
type Key struct {
	Keys    []string
	Help    string
	Enabled bool
}

func bind(help string, keys ...string) Key {
	return Key{Keys: keys, Help: help, Enabled: true}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       bind("up", "up", "k"),
		Down:     bind("down", "down", "j"),
		PageUp:   bind("page up", "pgup", "ctrl+u"),
		PageDown: bind("page down", "pgdown", "ctrl+d"),
		Home:     bind("home", "home", "g"),
		End:      bind("end", "end", "G"),

		Select:  bind("select", "enter"),
		Back:    bind("back", "esc", "backspace"),
		Quit:    bind("quit", "q", "ctrl+c"),
		Help:    bind("help", "?"),
		Refresh: bind("refresh", "f5"),

		F1:  bind("Help", "f1"),
		F2:  bind("Reliability", "f2"),
		F3:  bind("Faults", "f3"),
		F4:  bind("Assets", "f4"),
		F5:  bind("Refresh", "f5"),
		F10: bind("Quit", "f10"),
	}
}

// Matches checks if a key message matches this key binding.
func (k Key) Matches(msg tea.KeyMsg) bool {
	if !k.Enabled {
		return false
	}

	keyStr := msg.String()
	for _, key := range k.Keys {
		if keyStr == key {
			return true
		}
	}
	return false
}

// MatchesAny checks if a key message matches any of the provided key bindings.
func MatchesAny(msg tea.KeyMsg, keys ...Key) bool {
	for _, k := range keys {
		if k.Matches(msg) {
			return true
		}
	}
	return false
}

// IsQuit checks if the key message is a quit command.
func (km KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return km.Quit.Matches(msg) || km.F10.Matches(msg)
}

// FunctionKeyModule returns the module a navigation function key selects.
func (km KeyMap) FunctionKeyModule(msg tea.KeyMsg) (Module, bool) {
	switch {
	case km.F1.Matches(msg):
		return ModuleHelp, true
	case km.F2.Matches(msg):
		return ModuleDashboard, true
	case km.F3.Matches(msg):
		return ModuleFaults, true
	case km.F4.Matches(msg):
		return ModuleAssets, true
	default:
		return "", false
	}
}

// StatusBarHelp returns the help text for the status bar.
func (km KeyMap) StatusBarHelp() string {
	return "[F1]Help [F2]Reliability [F3]Faults [F4]Assets [F5]Refresh [F10]Quit"
}
