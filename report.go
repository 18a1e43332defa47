package colorconv

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteText writes res in the legacy five line report format:
//
//	(<pr>%, <pg>%, <pb>%)
//	dec <n>
//	dec <n>
//	bin 0b...
//	hex 0x...
//
// The decimal line is written twice. Scripts built around the old firmware
// tool read the second one.
func WriteText(w io.Writer, res *Result) error {
	_, err := fmt.Fprintf(w, "(%3d%%, %3d%%, %3d%%)\ndec %s\ndec %s\nbin %s\nhex %s\n",
		res.Percent[0], res.Percent[1], res.Percent[2],
		res.Packed.Dec(), res.Packed.Dec(), res.Packed.Bin(), res.Packed.Hex())
	return err
}

// Report is JSON representation of Result.
type Report struct {
	Color24
	Percent [3]int `json:"percent"`
	Dec     uint16 `json:"dec"`
	Bin     string `json:"bin"`
	Hex     string `json:"hex"`
}

// NewReport returns Report of res.
func NewReport(res *Result) Report {
	return Report{
		Color24: res.Color,
		Percent: res.Percent,
		Dec:     uint16(res.Packed),
		Bin:     res.Packed.Bin(),
		Hex:     res.Packed.Hex(),
	}
}

// WriteJSON writes res as a single line JSON object.
func WriteJSON(w io.Writer, res *Result) error {
	return json.NewEncoder(w).Encode(NewReport(res))
}

// WriteCalibration writes cal as JSON when format is "json", otherwise as
// three space separated lines, one per row, each starting with its label.
func WriteCalibration(w io.Writer, cal *Calibration, format string) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(cal)
	}

	var sb strings.Builder
	sb.WriteString(CalibrationRowRaw)
	for _, v := range cal.Raw {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(v))
	}
	for _, row := range [...]struct {
		label  string
		values []float64
	}{{CalibrationRowCoefficient, cal.Coefficients}, {CalibrationRowCalibrated, cal.Calibrated}} {
		sb.WriteByte('\n')
		sb.WriteString(row.label)
		for _, v := range row.values {
			sb.WriteByte(' ')
			sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}
