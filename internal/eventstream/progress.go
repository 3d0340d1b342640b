package eventstream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
)

// NewProgress returns a progress bar over the lines of the file at path, or
// nil when out is not a terminal.
func NewProgress(path string, out *os.File) (*pb.ProgressBar, error) {
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace log: %w", err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // Read-only file
	}()

	total, err := CountLines(f)
	if err != nil {
		return nil, err
	}
	return pb.New64(total).SetWriter(out).Start(), nil
}

// CountLines counts newline-terminated lines, plus a final unterminated one.
func CountLines(r io.Reader) (int64, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	buf := make([]byte, 1<<20)
	var count int64
	var last byte = '\n'
	for {
		n, err := br.Read(buf)
		if n > 0 {
			count += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count lines: %w", err)
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}
