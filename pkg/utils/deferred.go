// Package utils holds small shared helpers with no project dependencies.
package utils

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers writes until Flush is called. It exists so log
// lines produced while a full screen TUI owns the terminal can be held
// back and replayed after the TUI exits. The zero value is ready to use.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// Flush replays the buffered content into out and resets the buffer.
// Each line is written in its own call so consumers that parse whole
// events per Write, like zerolog's ConsoleWriter, see every log line
// intact. Safe to call multiple times.
func (w *DeferredWriter) Flush(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() == 0 {
		return nil
	}

	sc := bufio.NewScanner(&w.buf)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if _, err := io.WriteString(out, line+"\n"); err != nil {
			return err
		}
	}
	w.buf.Reset()
	return sc.Err()
}

var _ io.Writer = (*DeferredWriter)(nil)
