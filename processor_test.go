package colorconv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/regorov/colorconv"
	"github.com/rs/zerolog"
)

type outputMock struct {
	mux   sync.Mutex
	lines []string
	fail  string // Save fails for result containing fail.
}

func (mock *outputMock) Save(res colorconv.Resulter) error {
	mock.mux.Lock()
	defer mock.mux.Unlock()
	s := res.Result()
	if mock.fail != "" && strings.Contains(s, mock.fail) {
		return errors.New("disk full")
	}
	mock.lines = append(mock.lines, s)
	return nil
}

func (mock *outputMock) Close() error {
	return nil
}

const batchText = `128,64,32
0 0 0
300,0,0
not a colour
256 256 256
255;255;255
`

func TestColorProcessor(t *testing.T) {
	var tbl = []struct {
		strict    bool
		processed int64
		failed    int64
	}{
		{strict: false, processed: 4, failed: 2},
		{strict: true, processed: 3, failed: 3},
	}

	for i := range tbl {
		input := colorconv.NewPlainTextFileInput(zerolog.Nop())
		input.StartReader(context.Background(), strings.NewReader(batchText))

		out := &outputMock{}
		proc := colorconv.NewColorProcessor(zerolog.Nop(), input, out, colorconv.NewConverter(tbl[i].strict))
		st := proc.Start(context.Background(), 3)

		if st.Processed != tbl[i].processed || st.Failed != tbl[i].failed {
			t.Errorf("case %d failed. Got %+v, expected processed %d failed %d", i, st, tbl[i].processed, tbl[i].failed)
		}
		if st != proc.Stats() {
			t.Errorf("case %d failed. Stats() = %+v, Start returned %+v", i, proc.Stats(), st)
		}
		if int64(len(out.lines)) != tbl[i].processed {
			t.Errorf("case %d failed. %d lines saved", i, len(out.lines))
		}
	}
}

func TestColorProcessor_SaveFailure(t *testing.T) {
	input := colorconv.NewPlainTextFileInput(zerolog.Nop())
	input.StartReader(context.Background(), strings.NewReader(batchText))

	out := &outputMock{fail: "0x8204"}
	proc := colorconv.NewColorProcessor(zerolog.Nop(), input, out, colorconv.NewConverter(false))
	st := proc.Start(context.Background(), 0)

	if st.Processed != 3 || st.Failed != 3 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestColorProcessor_Cancelled(t *testing.T) {
	input := colorconv.NewPlainTextFileInput(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	input.StartReader(ctx, strings.NewReader(strings.Repeat("1,2,3\n", 1000)))

	proc := colorconv.NewColorProcessor(zerolog.Nop(), input, &outputMock{}, colorconv.NewConverter(false))
	if st := proc.Start(ctx, 2); st.Processed >= 1000 {
		t.Errorf("cancelled batch processed everything: %+v", st)
	}
}

func TestBufferedCSV(t *testing.T) {

	fname := filepath.Join(t.TempDir(), "result.csv")

	// two sessions, header must be written once.
	for session := 0; session < 2; session++ {
		out := colorconv.NewBufferedCSV(0)
		if err := out.Open(fname); err != nil {
			t.Fatalf("open file failed: %s", err.Error())
		}

		input := colorconv.NewPlainTextFileInput(zerolog.Nop())
		input.StartReader(context.Background(), strings.NewReader(batchText))
		colorconv.NewColorProcessor(zerolog.Nop(), input, out, colorconv.NewConverter(false)).Start(context.Background(), 2)

		if err := out.Close(); err != nil {
			t.Fatalf("output file close failed: %s", err.Error())
		}
		if err := out.Close(); !errors.Is(err, colorconv.ErrOutputClosed) {
			t.Errorf("second close: expected ErrOutputClosed, got %v", err)
		}
	}

	buf, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(buf), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected header and 8 rows, got %d lines:\n%s", len(lines), buf)
	}

	res := &colorconv.Result{}
	if lines[0] != strings.TrimSuffix(res.Header(), "\n") {
		t.Errorf("first line is not header: %q", lines[0])
	}

	rows := lines[1:]
	sort.Strings(rows)
	if rows[0] != "0,0,0,0,0,0,0,0b0,0x0" || rows[2] != "128,64,32,50,25,12,33284,0b1000001000000100,0x8204" {
		t.Errorf("unexpected rows: %q", rows)
	}
}

func TestBufferedCSV_SaveClosed(t *testing.T) {
	out := colorconv.NewBufferedCSV(0)
	if err := out.Save(&colorconv.Result{}); !errors.Is(err, colorconv.ErrOutputClosed) {
		t.Errorf("expected ErrOutputClosed, got %v", err)
	}
}

func TestBufferedCSV_OpenTwice(t *testing.T) {
	dir := t.TempDir()

	out := colorconv.NewBufferedCSV(0)
	if err := out.Open(filepath.Join(dir, "a.csv")); err != nil {
		t.Fatal(err)
	}
	if err := out.Open(filepath.Join(dir, "b.csv")); !errors.Is(err, colorconv.ErrOutputOpen) {
		t.Errorf("expected ErrOutputOpen, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.csv")); !os.IsNotExist(err) {
		t.Errorf("second file must not be created, stat: %v", err)
	}

	if err := out.Save(&colorconv.Result{}); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	// first file stays the target.
	buf, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(buf), "\n"); n != 2 {
		t.Errorf("expected header and one row, got %q", buf)
	}

	if err := out.Open(filepath.Join(dir, "b.csv")); err != nil {
		t.Errorf("reopen after close failed: %s", err.Error())
	}
	_ = out.Close()
}
