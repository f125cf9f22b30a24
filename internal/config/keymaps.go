package config

// KeyMappings defines all configurable key bindings for the dashboard
type KeyMappings struct {
	// Navigation
	Up   string `yaml:"up"`
	Down string `yaml:"down"`

	// Chores
	MarkDone string `yaml:"mark_done"`
	Detail   string `yaml:"detail"`

	// View
	Refresh string `yaml:"refresh"`
	Sort    string `yaml:"sort"`
	Filter  string `yaml:"filter"`

	// Other
	ShowHelp string `yaml:"show_help"`
	Quit     string `yaml:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		Up:   "k",
		Down: "j",

		MarkDone: "d",
		Detail:   "enter",

		Refresh: "r",
		Sort:    "s",
		Filter:  "f",

		ShowHelp: "?",
		Quit:     "q",
	}
}

// applyDefaults fills in any missing key mappings with defaults
func (km *KeyMappings) applyDefaults() {
	defaults := DefaultKeyMappings()

	if km.Up == "" {
		km.Up = defaults.Up
	}
	if km.Down == "" {
		km.Down = defaults.Down
	}
	if km.MarkDone == "" {
		km.MarkDone = defaults.MarkDone
	}
	if km.Detail == "" {
		km.Detail = defaults.Detail
	}
	if km.Refresh == "" {
		km.Refresh = defaults.Refresh
	}
	if km.Sort == "" {
		km.Sort = defaults.Sort
	}
	if km.Filter == "" {
		km.Filter = defaults.Filter
	}
	if km.ShowHelp == "" {
		km.ShowHelp = defaults.ShowHelp
	}
	if km.Quit == "" {
		km.Quit = defaults.Quit
	}
}
