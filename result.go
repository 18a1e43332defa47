package colorconv

import (
	"strconv"
	"strings"
)

// Result implements interface Resulter.
// Holds a single conversion outcome.
type Result struct {
	Color   Color24
	Percent [3]int
	Packed  Color565
}

// Result returns a string in CSV format: red,green,blue,pr,pg,pb,dec,bin,hex.
func (r *Result) Result() string {
	var sb strings.Builder
	sb.Grow(64)

	for _, v := range [...]int{r.Color.Red, r.Color.Green, r.Color.Blue,
		r.Percent[0], r.Percent[1], r.Percent[2]} {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte(',')
	}
	sb.WriteString(r.Packed.Dec())
	sb.WriteByte(',')
	sb.WriteString(r.Packed.Bin())
	sb.WriteByte(',')
	sb.WriteString(r.Packed.Hex())
	sb.WriteByte('\n')
	return sb.String()
}

// Header returns header in CSV format.
func (r *Result) Header() string {
	return "red,green,blue,red_pct,green_pct,blue_pct,dec,bin,hex\n"
}
