package colorconv

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
)

var (
	// ErrOutputClosed is returned by Save called before Open or after Close.
	ErrOutputClosed = errors.New("output is not open")

	// ErrOutputOpen is returned by Open when previous file is not closed yet.
	ErrOutputOpen = errors.New("output is already open")
)

// BufferedCSV implements Outputer interface. CSV file with write buffer.
type BufferedCSV struct {
	mux                 sync.Mutex
	buf                 *bufio.Writer
	file                *os.File
	size                int
	isHeadWriteRequired bool
}

// DefaultBufferSize defines default output buffer size in bytes.
const DefaultBufferSize = 4096

// NewBufferedCSV returns new BufferedCSV instance. If size < 64, DefaultBufferSize will be assigned.
func NewBufferedCSV(size int) *BufferedCSV {
	if size < 64 {
		size = DefaultBufferSize
	}
	return &BufferedCSV{size: size}
}

// Open creates file or appends if file is exist. CSV header writes only into empty file.
// BufferedCSV may be reopened after Close.
func (out *BufferedCSV) Open(fname string) error {

	out.mux.Lock()
	defer out.mux.Unlock()

	if out.file != nil {
		return ErrOutputOpen
	}

	f, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}

	flen, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		_ = f.Close()
		return err
	}

	out.file = f
	out.buf = bufio.NewWriterSize(f, out.size)
	out.isHeadWriteRequired = (flen == 0)

	return nil
}

// Save writes Resulter to the buffer. Buffer is flushed to the file when full.
func (out *BufferedCSV) Save(res Resulter) error {

	out.mux.Lock()
	defer out.mux.Unlock()

	if out.file == nil {
		return ErrOutputClosed
	}

	if out.isHeadWriteRequired {
		// applies only at the first Save() call.
		if _, err := out.buf.WriteString(res.Header()); err != nil {
			return err
		}
		out.isHeadWriteRequired = false
	}

	_, err := out.buf.WriteString(res.Result())
	return err
}

// Close flushes to the output file unsaved buffer and closes file.
func (out *BufferedCSV) Close() error {
	out.mux.Lock()
	defer out.mux.Unlock()

	if out.file == nil {
		return ErrOutputClosed
	}

	err := out.buf.Flush()
	if cerr := out.file.Close(); err == nil {
		err = cerr
	}

	out.file = nil
	out.buf = nil
	return err
}
