/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package exporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Sink is the append-only destination reports are written to: the console
// or a single file opened once for the lifetime of the run.
type Sink struct {
	bufWriter *bufio.Writer
	file      *os.File // nil for console and wrapped writers
	name      string
}

// OpenSink opens the report destination. An empty path selects stdout.
// A file path is created fresh and opening fails if it already exists.
func OpenSink(path string) (*Sink, error) {
	if path == "" {
		return NewWriterSink(os.Stdout, "stdout"), nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Sink{
		bufWriter: bufio.NewWriterSize(file, 8192), // 8KB buffer
		file:      file,
		name:      path,
	}, nil
}

// NewWriterSink wraps an arbitrary writer. Closing the sink does not close w.
func NewWriterSink(w io.Writer, name string) *Sink {
	return &Sink{
		bufWriter: bufio.NewWriterSize(w, 8192),
		name:      name,
	}
}

// Write implements io.Writer. Data is buffered until Flush.
func (s *Sink) Write(p []byte) (int, error) {
	return s.bufWriter.Write(p)
}

// Flush writes buffered data to the underlying destination.
func (s *Sink) Flush() error {
	if err := s.bufWriter.Flush(); err != nil {
		return fmt.Errorf("buffer writer error: %w", err)
	}
	return nil
}

// Name returns the destination name (file path or "stdout").
func (s *Sink) Name() string {
	return s.name
}

// Close flushes remaining data and closes the file, if any.
func (s *Sink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if s.file == nil {
		return nil
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
