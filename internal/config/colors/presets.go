package colors

// Default returns the default color scheme (purple accent, traffic-light statuses)
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",
		Accent: "170",

		OK:      "42",
		DueSoon: "214",
		Overdue: "196",
		Unknown: "245",

		Border:     "238",
		SelectedBg: "236",

		Title:  "99",
		Subtle: "241",
		Normal: "252",

		InfoFg:    "39",
		WarningFg: "214",
		ErrorFg:   "196",
	}
}

// Monochrome returns a black and white color scheme
func Monochrome() *ColorScheme {
	return &ColorScheme{
		Preset: "monochrome",
		Accent: "15",

		OK:      "250",
		DueSoon: "253",
		Overdue: "15",
		Unknown: "244",

		Border:     "240",
		SelectedBg: "237",

		Title:  "15",
		Subtle: "243",
		Normal: "252",

		InfoFg:    "250",
		WarningFg: "253",
		ErrorFg:   "15",
	}
}

// Wave returns the Kanagawa Wave color scheme
func Wave() *ColorScheme {
	return &ColorScheme{
		Preset: "wave",
		Accent: kanagawa.oniViolet,

		OK:      kanagawa.springGreen,
		DueSoon: kanagawa.roninYellow,
		Overdue: kanagawa.peachRed,
		Unknown: kanagawa.fujiGray,

		Border:     kanagawa.sumiInk6,
		SelectedBg: kanagawa.waveBlue1,

		Title:  kanagawa.crystalBlue,
		Subtle: kanagawa.fujiGray,
		Normal: kanagawa.fujiWhite,

		InfoFg:    kanagawa.waveAqua2,
		WarningFg: kanagawa.carpYellow,
		ErrorFg:   kanagawa.samuraiRed,
	}
}

// Dragon returns the Kanagawa Dragon color scheme (muted dark theme)
func Dragon() *ColorScheme {
	return &ColorScheme{
		Preset: "dragon",
		Accent: kanagawa.dragonViolet,

		OK:      kanagawa.dragonGreen,
		DueSoon: kanagawa.dragonYellow,
		Overdue: kanagawa.dragonRed,
		Unknown: kanagawa.dragonAsh,

		Border:     kanagawa.dragonBlack6,
		SelectedBg: kanagawa.dragonBlack4,

		Title:  kanagawa.dragonBlue,
		Subtle: kanagawa.dragonAsh,
		Normal: kanagawa.dragonWhite,

		InfoFg:    kanagawa.dragonBlue,
		WarningFg: kanagawa.dragonOrange,
		ErrorFg:   kanagawa.dragonRed,
	}
}

// Lotus returns the Kanagawa Lotus color scheme (light theme)
func Lotus() *ColorScheme {
	return &ColorScheme{
		Preset: "lotus",
		Accent: kanagawa.lotusViolet,

		OK:      kanagawa.lotusGreen,
		DueSoon: kanagawa.lotusOrange,
		Overdue: kanagawa.lotusRed,
		Unknown: kanagawa.lotusGray,

		Border:     kanagawa.lotusWhite5,
		SelectedBg: kanagawa.lotusBlue1,

		Title:  kanagawa.lotusBlue4,
		Subtle: kanagawa.lotusGray,
		Normal: kanagawa.lotusInk,

		InfoFg:    kanagawa.lotusTeal,
		WarningFg: kanagawa.lotusYellow,
		ErrorFg:   kanagawa.lotusRed,
	}
}
