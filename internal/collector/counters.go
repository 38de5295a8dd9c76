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

package collector

import (
	"errors"
	"fmt"

	"github.com/erwanjouan/proc-io/pkg/metrics"
	"github.com/prometheus/procfs"
)

// ErrUnavailable indicates that the I/O counters of a process could not be read.
var ErrUnavailable = errors.New("collector: counters unavailable")

// CounterSource reads the cumulative I/O counters of a single process.
type CounterSource interface {
	Read(pid int32) (metrics.Counters, error)
}

// ProcfsSource reads /proc/<pid>/io through procfs.
type ProcfsSource struct {
	fs procfs.FS
}

// NewProcfsSource creates a counter source rooted at the given proc mount point.
func NewProcfsSource(root string) (*ProcfsSource, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open proc filesystem %s: %w", root, err)
	}
	return &ProcfsSource{fs: fs}, nil
}

// Read returns the current counters of pid. A process that has exited or
// whose io file cannot be read (permissions, kernel thread) yields an error
// wrapping ErrUnavailable.
func (s *ProcfsSource) Read(pid int32) (metrics.Counters, error) {
	proc, err := s.fs.Proc(int(pid))
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %w", ErrUnavailable, pid, err)
	}

	pio, err := proc.IO()
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d: %w", ErrUnavailable, pid, err)
	}

	return metrics.Counters{
		metrics.RChar:               int64(pio.RChar),
		metrics.WChar:               int64(pio.WChar),
		metrics.SyscR:               int64(pio.SyscR),
		metrics.SyscW:               int64(pio.SyscW),
		metrics.ReadBytes:           int64(pio.ReadBytes),
		metrics.WriteBytes:          int64(pio.WriteBytes),
		metrics.CancelledWriteBytes: int64(pio.CancelledWriteBytes),
	}, nil
}

// Name returns the collector name for logging purposes.
func (s *ProcfsSource) Name() string {
	return "IO"
}
