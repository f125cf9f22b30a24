package colors

// ColorScheme defines all configurable color values
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome", "wave")
	Preset string `yaml:"preset"`

	// Primary accent color (used for selections, titles, highlights)
	Accent string `yaml:"accent"`

	// Status colors
	OK      string `yaml:"ok"`
	DueSoon string `yaml:"due_soon"`
	Overdue string `yaml:"overdue"`
	Unknown string `yaml:"unknown"`

	// UI element colors
	Border     string `yaml:"border"`
	SelectedBg string `yaml:"selected_bg"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"` // Muted/placeholder text
	Normal string `yaml:"normal"`

	// Notification colors
	InfoFg    string `yaml:"info_fg"`
	WarningFg string `yaml:"warning_fg"`
	ErrorFg   string `yaml:"error_fg"`
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	case "wave":
		return Wave()
	case "dragon":
		return Dragon()
	case "lotus":
		return Lotus()
	default:
		return Default()
	}
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	return []string{"default", "monochrome", "wave", "dragon", "lotus"}
}

// ApplyDefaults fills in missing color values using the preset as base
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}

	fill(&c.Accent, preset.Accent)
	fill(&c.OK, preset.OK)
	fill(&c.DueSoon, preset.DueSoon)
	fill(&c.Overdue, preset.Overdue)
	fill(&c.Unknown, preset.Unknown)
	fill(&c.Border, preset.Border)
	fill(&c.SelectedBg, preset.SelectedBg)
	fill(&c.Title, preset.Title)
	fill(&c.Subtle, preset.Subtle)
	fill(&c.Normal, preset.Normal)
	fill(&c.InfoFg, preset.InfoFg)
	fill(&c.WarningFg, preset.WarningFg)
	fill(&c.ErrorFg, preset.ErrorFg)
}

// MergeFrom overrides colors with the non-empty values of other.
// A preset in other replaces the whole base before the overrides apply.
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	if other.Preset != "" && other.Preset != c.Preset {
		*c = *GetPreset(other.Preset)
	}

	override(&c.Accent, other.Accent)
	override(&c.OK, other.OK)
	override(&c.DueSoon, other.DueSoon)
	override(&c.Overdue, other.Overdue)
	override(&c.Unknown, other.Unknown)
	override(&c.Border, other.Border)
	override(&c.SelectedBg, other.SelectedBg)
	override(&c.Title, other.Title)
	override(&c.Subtle, other.Subtle)
	override(&c.Normal, other.Normal)
	override(&c.InfoFg, other.InfoFg)
	override(&c.WarningFg, other.WarningFg)
	override(&c.ErrorFg, other.ErrorFg)
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
