package palette

var humanReadable = [...]Color{
	RGB(45, 110, 220),
	RGB(125, 50, 200),
	RGB(205, 5, 165),
	RGB(245, 65, 65),
	RGB(245, 130, 0),
	RGB(195, 180, 0),
	RGB(125, 185, 65),
	RGB(35, 185, 175),
	RGB(160, 15, 200),
	RGB(180, 75, 10),
	RGB(80, 80, 220),
	RGB(225, 90, 120),
	RGB(130, 130, 30),
	RGB(20, 140, 95),
	RGB(100, 180, 240),
	RGB(235, 160, 200),
	RGB(150, 90, 60),
	RGB(60, 60, 60),
	RGB(240, 200, 90),
	RGB(90, 200, 120),
	RGB(175, 120, 230),
	RGB(215, 215, 215),
	RGB(5, 90, 130),
	RGB(190, 40, 40),
}

// HumanReadable returns a fresh copy of the distinguishable color list.
// The first entry is blue.
func HumanReadable() Pool {
	out := make(Pool, len(humanReadable))
	copy(out, humanReadable[:])
	return out
}
