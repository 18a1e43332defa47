package colorconv

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidTriple is returned when input line is not three integers.
var ErrInvalidTriple = errors.New("expected three integer channel values")

// PlainTextFileInput implements interface Inputer and provides colour
// triples from plain text file, one per line. Empty lines and lines
// starting with '#' are skipped.
type PlainTextFileInput struct {
	line        chan Line
	log         zerolog.Logger
	linesPassed int
}

// NewPlainTextFileInput returns new instance of PlainTextFileInput.
func NewPlainTextFileInput(l zerolog.Logger) *PlainTextFileInput {
	return &PlainTextFileInput{log: l.With().Str("component", "inputer").Logger(), line: make(chan Line)}
}

// Start opens an input file in read only mode and starts runner (separate goroutine) of line by
// line reading to chan Line. Returns error if could not open a file.
func (inp *PlainTextFileInput) Start(ctx context.Context, fname string) error {

	file, err := os.OpenFile(fname, os.O_RDONLY, 0666)
	if err != nil {
		return err
	}

	go func() {
		inp.run(ctx, file)
		_ = file.Close() // we can ignore file.Close() error because of readonly mode.
	}()
	return nil
}

// StartReader starts runner reading lines from r. r is not closed.
func (inp *PlainTextFileInput) StartReader(ctx context.Context, r io.Reader) {
	go inp.run(ctx, r)
}

func (inp *PlainTextFileInput) run(ctx context.Context, r io.Reader) {

	defer close(inp.line)

	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		s := strings.TrimSpace(scanner.Text())
		if s == "" || s[0] == '#' {
			continue
		}

		if ctx.Err() != nil {
			inp.log.Debug().Int("lines", inp.linesPassed).Msg("input interrupted")
			return
		}

		// catching ctx.Done() while nobody reads line chan.
		select {
		case inp.line <- Line{Num: num, Text: s}:
			inp.linesPassed++
		case <-ctx.Done():
			inp.log.Debug().Int("lines", inp.linesPassed).Msg("input interrupted")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		inp.log.Error().Str("errmsg", err.Error()).Msg("scanner failed")
	}
	inp.log.Debug().Int("lines", inp.linesPassed).Msg("reached EOF")
}

// Next returns chan with lines read from file.
func (inp *PlainTextFileInput) Next() <-chan Line {
	return inp.line
}

// ParseTriple parses "r,g,b", "r g b" or "r;g;b" into channel values.
func ParseTriple(s string) (r, g, b int, err error) {

	fields := strings.FieldsFunc(s, func(c rune) bool {
		return c == ',' || c == ';' || c == ' ' || c == '\t'
	})
	if len(fields) != 3 {
		return 0, 0, 0, ErrInvalidTriple
	}

	var v [3]int
	for i, f := range fields {
		if v[i], err = strconv.Atoi(f); err != nil {
			return 0, 0, 0, ErrInvalidTriple
		}
	}
	return v[0], v[1], v[2], nil
}
