package colorconv_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/regorov/colorconv"
)

func TestDefaultCalibration(t *testing.T) {
	cal, err := colorconv.DefaultCalibration()
	if err != nil {
		t.Fatalf("default calibration parsing failed: %s", err.Error())
	}

	raw := []int{2, 6, 11, 10, 10, 10, 11, 16, 18, 21, 15, 7, 7, 4, 3, 3, 1, 1}
	for i, v := range raw {
		if cal.Raw[i] != v {
			t.Errorf("raw[%d] = %d, expected %d", i, cal.Raw[i], v)
		}
	}

	if n := len(cal.Coefficients); n != colorconv.CalibrationChannels {
		t.Fatalf("coefficients length %d", n)
	}
	if cal.Coefficients[0] != 1.11 || cal.Coefficients[5] != 1.15 || cal.Coefficients[17] != 0.69 {
		t.Errorf("unexpected coefficients: %v", cal.Coefficients)
	}
	if cal.Calibrated[0] != 4.61 || cal.Calibrated[3] != 2.47 || cal.Calibrated[17] != 0.88 {
		t.Errorf("unexpected calibrated: %v", cal.Calibrated)
	}
}

func row(label string, n int, cell string) string {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = cell
	}
	return strconv.Quote(label) + "," + strings.Join(cells, ",") + ",\n"
}

func TestParseCalibration(t *testing.T) {
	var tbl = []struct {
		name  string
		input string
		fails bool
	}{
		{"reordered rows", row("calibrated", 18, "1.5") + row("raw", 18, "3") + row("calibrationData", 18, "0.5"), false},
		{"extra rows ignored", row("raw", 18, "3") + row("notes", 2, "x") + row("calibrationData", 18, "0.5") + row("calibrated", 18, "1"), false},
		{"extra columns ignored", row("raw", 20, "3") + row("calibrationData", 18, "0.5") + row("calibrated", 18, "1"), false},
		{"missing row", row("raw", 18, "3") + row("calibrated", 18, "1"), true},
		{"short row", row("raw", 17, "3") + row("calibrationData", 18, "0.5") + row("calibrated", 18, "1"), true},
		{"float in raw", row("raw", 18, "3.5") + row("calibrationData", 18, "0.5") + row("calibrated", 18, "1"), true},
		{"bad coefficient", row("raw", 18, "3") + row("calibrationData", 18, "x") + row("calibrated", 18, "1"), true},
		{"empty", "", true},
	}

	for _, tc := range tbl {
		cal, err := colorconv.ParseCalibration(strings.NewReader(tc.input))
		if tc.fails {
			if err == nil {
				t.Errorf("%s: expected error, got %+v", tc.name, cal)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %s", tc.name, err.Error())
			continue
		}
		if len(cal.Raw) != 18 || cal.Raw[0] != 3 || cal.Coefficients[17] != 0.5 {
			t.Errorf("%s: unexpected result %+v", tc.name, cal)
		}
	}
}

func TestParseCalibration_Errors(t *testing.T) {
	_, err := colorconv.ParseCalibration(strings.NewReader(row("raw", 18, "3")))
	if !errors.Is(err, colorconv.ErrCalibrationRowMissing) {
		t.Errorf("expected ErrCalibrationRowMissing, got %v", err)
	}

	in := row("raw", 18, "3") + row("calibrationData", 18, "0.5") +
		`"calibrated",1,1,1,oops,1,1,1,1,1,1,1,1,1,1,1,1,1,1,` + "\n"
	_, err = colorconv.ParseCalibration(strings.NewReader(in))
	var nerr *strconv.NumError
	if !errors.As(err, &nerr) || !strings.Contains(err.Error(), "column 4") {
		t.Errorf("expected wrapped NumError naming column 4, got %v", err)
	}
}
