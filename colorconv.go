// Package colorconv provides RGB565 colour conversion and spectrometer
// calibration tooling for display firmware.
package colorconv

// Resulter is one converted colour ready to be stored. Result renders it
// as a CSV row and Header names the columns of that row.
type Resulter interface {
	Result() string
	Header() string
}

// Outputer stores converted colours. Save may be called from several
// workers at once; Close must be called once the batch is done so that
// buffered rows reach the destination.
type Outputer interface {
	Save(Resulter) error
	Close() error
}

// Inputer feeds colour triples to the batch converter. The channel from
// Next is closed at end of input or on cancellation.
type Inputer interface {
	Next() <-chan Line
}

// Line is a single non-empty input line and its 1-based number in the source.
type Line struct {
	Num  int
	Text string
}
