// Package shapes contains the 8x8 ASCII sprite shapes used by the substrate
// prefabs. Each glyph is resolved through the palette of the Appearance
// component that references the shape.
package shapes

import (
	"fmt"
	"strings"
)

const CuteAvatar = `
xxxxxxxx
xx*xx*xx
xx****xx
xx&o&oxx
xx****xx
x#****#x
xx&**&xx
xx&xx&xx
`

const Wall = `
&&&&&&&&
&@@@@@@#
&@@@@@@#
&@@@@@@#
&@@@@@@#
&@@@@@@#
&@@@@@@#
*#######
`

const GrainyFloor = `
+*++++*+
++++*+++
+*++++++
++++++*+
+++*++++
*+++++++
++++*++*
+*++++++
`

const GrassStraight = `
********
*@*@*@*@
********
@*@*@*@*
********
*@*@*@*@
********
@*@*@*@*
`

const GrassStraightNEdge = `
xxxxxxxx
x@xx@xx@
@*@@*@@*
********
*@*@*@*@
********
@*@*@*@*
********
`

const ShadowW = `
~=xxxxxx
~=xxxxxx
~=xxxxxx
~=xxxxxx
~=xxxxxx
~=xxxxxx
~=xxxxxx
~=xxxxxx
`

const ShadowE = `
xxxxxx=~
xxxxxx=~
xxxxxx=~
xxxxxx=~
xxxxxx=~
xxxxxx=~
xxxxxx=~
xxxxxx=~
`

const ShadowN = `
~~~~~~~~
========
xxxxxxxx
xxxxxxxx
xxxxxxxx
xxxxxxxx
xxxxxxxx
xxxxxxxx
`

const Water1 = `
**~~*ooo
~~~~~~~~
o**~~***
~~~@@~~~
**oo~~**
~~~~~~~~
~ooo**~~
~~~~~~~~
`

const Water2 = `
*ooo**~~
~~~~~~~~
~***o**~
~~~~@@~~
~**~~oo*
~~~~~~~~
~~~ooo**
~~~~~~~~
`

const Water3 = `
o**~~**o
~~~~~~~~
**~o**~~
~~@@~~~~
o~~**oo~
~~~~~~~~
*~~~ooo*
~~~~~~~~
`

const Water4 = `
~~*ooo**
~~~~~~~~
*o**~~**
~~~~~@@~
*~~oo**~
~~~~~~~~
oo**~~~o
~~~~~~~~
`

const Diamond = `
xxxxxxxx
xxxaaxxx
xxabbaxx
xabbbbax
xacbbdax
xxaccaxx
xxxaaxxx
xxxxxxxx
`

// Rows splits a shape into its non-empty rows.
func Rows(shape string) []string {
	var out []string
	for _, line := range strings.Split(shape, "\n") {
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Glyphs returns the set of distinct glyphs a shape uses.
func Glyphs(shape string) map[string]bool {
	out := map[string]bool{}
	for _, row := range Rows(shape) {
		for _, r := range row {
			out[string(r)] = true
		}
	}
	return out
}

// Size returns the width and height of a rectangular shape.
func Size(shape string) (w, h int, err error) {
	rows := Rows(shape)
	if len(rows) == 0 {
		return 0, 0, fmt.Errorf("shapes: empty shape")
	}
	w = len(rows[0])
	for i, row := range rows {
		if len(row) != w {
			return 0, 0, fmt.Errorf("shapes: row %d has width %d, want %d", i, len(row), w)
		}
	}
	return w, len(rows), nil
}
