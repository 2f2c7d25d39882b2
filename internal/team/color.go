package team

// Color is a member's accent color.
type Color string

const (
	Orange  Color = "orange"
	Blue    Color = "blue"
	Purple  Color = "purple"
	Emerald Color = "emerald"
	Pink    Color = "pink"
	Cyan    Color = "cyan"
	Yellow  Color = "yellow"
	Red     Color = "red"
)

// Colors lists every color in assignment order.
var Colors = []Color{Orange, Blue, Purple, Emerald, Pink, Cyan, Yellow, Red}

// AutoColor picks the color for a new member given the current roster size.
func AutoColor(memberCount int) Color {
	if memberCount < 0 {
		memberCount = 0
	}
	return Colors[memberCount%len(Colors)]
}

// Valid reports whether c is one of Colors.
func (c Color) Valid() bool {
	for _, x := range Colors {
		if c == x {
			return true
		}
	}
	return false
}
