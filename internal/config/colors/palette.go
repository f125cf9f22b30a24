package colors

// kanagawa holds the Kanagawa palette shared by the wave, dragon and lotus presets.
var kanagawa = struct {
	// wave
	sumiInk6    string
	waveBlue1   string
	fujiWhite   string
	fujiGray    string
	oniViolet   string
	crystalBlue string
	springGreen string
	waveAqua2   string
	carpYellow  string
	roninYellow string
	peachRed    string
	samuraiRed  string

	// dragon
	dragonBlack4 string
	dragonBlack6 string
	dragonWhite  string
	dragonAsh    string
	dragonViolet string
	dragonBlue   string
	dragonGreen  string
	dragonYellow string
	dragonOrange string
	dragonRed    string

	// lotus
	lotusInk    string
	lotusGray   string
	lotusWhite5 string
	lotusBlue1  string
	lotusBlue4  string
	lotusViolet string
	lotusGreen  string
	lotusTeal   string
	lotusYellow string
	lotusOrange string
	lotusRed    string
}{
	sumiInk6:    "#54546D",
	waveBlue1:   "#223249",
	fujiWhite:   "#DCD7BA",
	fujiGray:    "#727169",
	oniViolet:   "#957FB8",
	crystalBlue: "#7E9CD8",
	springGreen: "#98BB6C",
	waveAqua2:   "#7AA89F",
	carpYellow:  "#E6C384",
	roninYellow: "#FF9E3B",
	peachRed:    "#FF5D62",
	samuraiRed:  "#E82424",

	dragonBlack4: "#282727",
	dragonBlack6: "#625e5a",
	dragonWhite:  "#c5c9c5",
	dragonAsh:    "#737c73",
	dragonViolet: "#8992a7",
	dragonBlue:   "#8ba4b0",
	dragonGreen:  "#8a9a7b",
	dragonYellow: "#c4b28a",
	dragonOrange: "#b6927b",
	dragonRed:    "#c4746e",

	lotusInk:    "#545464",
	lotusGray:   "#8a8980",
	lotusWhite5: "#c7c7b1",
	lotusBlue1:  "#c7d7e0",
	lotusBlue4:  "#4d699b",
	lotusViolet: "#624c83",
	lotusGreen:  "#6f894e",
	lotusTeal:   "#597b75",
	lotusYellow: "#77713f",
	lotusOrange: "#cc6d00",
	lotusRed:    "#c84053",
}
