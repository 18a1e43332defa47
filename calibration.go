package colorconv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CalibrationChannels is the number of spectrometer channels per row.
const CalibrationChannels = 18

// Row labels of calibration CSV.
const (
	CalibrationRowRaw         = "raw"
	CalibrationRowCoefficient = "calibrationData"
	CalibrationRowCalibrated  = "calibrated"
)

// DefaultCalibrationCSV holds calibration data captured from the reference
// spectrometer. Every row is a label followed by one value per channel and
// a trailing comma.
const DefaultCalibrationCSV = `
"raw",2,6,11,10,10,10,11,16,18,21,15,7,7,4,3,3,1,1,
"calibrationData",1.11,0.96,0.88,0.83,0.86,1.15,0.42,0.38,0.33,0.35,0.56,0.88,0.96,0.98,0.93,0.89,0.81,0.69,
"calibrated",4.61,6.16,6.99,2.47,0.56,0.88,4.61,6.16,4.61,6.99,6.16,2.47,6.99,2.47,0.56,0.88,0.56,0.88,
`

// ErrCalibrationRowMissing is returned when one of the required rows is absent.
var ErrCalibrationRowMissing = errors.New("calibration row is missing")

// Calibration holds raw sensor counts, per-channel calibration coefficients
// and calibrated output values.
type Calibration struct {
	Raw          []int     `json:"raw"`
	Coefficients []float64 `json:"coefficients"`
	Calibrated   []float64 `json:"calibrated"`
}

// DefaultCalibration parses DefaultCalibrationCSV.
func DefaultCalibration() (*Calibration, error) {
	return ParseCalibration(strings.NewReader(DefaultCalibrationCSV))
}

// ParseCalibration reads calibration CSV. Rows are located by label, so
// their order is irrelevant and unknown rows are ignored.
func ParseCalibration(r io.Reader) (*Calibration, error) {

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows := make(map[string][]string, 3)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("calibration csv: %w", err)
		}
		// trailing comma leaves an empty last field.
		for len(rec) > 0 && strings.TrimSpace(rec[len(rec)-1]) == "" {
			rec = rec[:len(rec)-1]
		}
		if len(rec) == 0 {
			continue
		}
		rows[strings.TrimSpace(rec[0])] = rec[1:]
	}

	var cal Calibration

	cells, err := calibrationRow(rows, CalibrationRowRaw)
	if err != nil {
		return nil, err
	}
	cal.Raw = make([]int, CalibrationChannels)
	for i, s := range cells {
		if cal.Raw[i], err = strconv.Atoi(s); err != nil {
			return nil, cellError(CalibrationRowRaw, i, err)
		}
	}

	if cal.Coefficients, err = calibrationFloats(rows, CalibrationRowCoefficient); err != nil {
		return nil, err
	}
	if cal.Calibrated, err = calibrationFloats(rows, CalibrationRowCalibrated); err != nil {
		return nil, err
	}

	return &cal, nil
}

func calibrationRow(rows map[string][]string, label string) ([]string, error) {
	cells, ok := rows[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCalibrationRowMissing, label)
	}
	if len(cells) < CalibrationChannels {
		return nil, fmt.Errorf("calibration row %q has %d values, expected %d", label, len(cells), CalibrationChannels)
	}
	cells = cells[:CalibrationChannels]
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells, nil
}

func calibrationFloats(rows map[string][]string, label string) ([]float64, error) {
	cells, err := calibrationRow(rows, label)
	if err != nil {
		return nil, err
	}
	out := make([]float64, CalibrationChannels)
	for i, s := range cells {
		if out[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, cellError(label, i, err)
		}
	}
	return out, nil
}

// cellError reports column as 1-based, the label being column 0.
func cellError(label string, i int, err error) error {
	return fmt.Errorf("calibration row %q column %d: %w", label, i+1, err)
}
