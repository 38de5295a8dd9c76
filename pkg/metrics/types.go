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

package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Counter names exposed by /proc/<pid>/io.
const (
	RChar               = "rchar"
	WChar               = "wchar"
	SyscR               = "syscr"
	SyscW               = "syscw"
	ReadBytes           = "read_bytes"
	WriteBytes          = "write_bytes"
	CancelledWriteBytes = "cancelled_write_bytes"
)

// CounterNames lists the canonical counters in report column order.
var CounterNames = []string{
	RChar,
	WChar,
	SyscR,
	SyscW,
	ReadBytes,
	WriteBytes,
	CancelledWriteBytes,
}

var (
	// ErrUnknownMetric indicates a sort metric that is not a known counter.
	ErrUnknownMetric = errors.New("metrics: unknown metric")

	// ErrMissingMetric indicates a tracked process whose delta lacks the sort metric.
	ErrMissingMetric = errors.New("metrics: metric missing from delta")
)

// Counters maps a counter name to its value. Values are signed so that a
// counter going backwards yields a negative delta instead of wrapping.
type Counters map[string]int64

// Clone returns a copy of c.
func (c Counters) Clone() Counters {
	if c == nil {
		return nil
	}
	out := make(Counters, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// IsCounterName reports whether name is one of CounterNames.
func IsCounterName(name string) bool {
	for _, n := range CounterNames {
		if n == name {
			return true
		}
	}
	return false
}

// ValidateMetric checks that name can be used as a sort metric.
func ValidateMetric(name string) error {
	if IsCounterName(name) {
		return nil
	}
	return fmt.Errorf("%w: %q (must be one of %s)", ErrUnknownMetric, name, strings.Join(CounterNames, ", "))
}

// TrackedProcess is the running record kept for one observed process.
type TrackedProcess struct {
	PID            int32
	LastSampleTime time.Time
	Current        Counters // Counters as of the most recent sample
	Previous       Counters // Counters as of the prior sample (nil before the second sample)
	Delta          Counters // Current - Previous (nil before the second sample)

	seq   uint64 // Discovery order, used as ranking tie-break
	cycle uint64 // Cycle of the most recent observation
}

// HasDelta reports whether a delta has been computed for the process.
func (p *TrackedProcess) HasDelta() bool {
	return p.Delta != nil
}

// Report is the ranked view produced for one cycle.
type Report struct {
	Timestamp time.Time
	Metric    string
	TopN      int
	Interval  time.Duration
	Entries   []Entry
}

// Entry is one ranked process line of a Report.
type Entry struct {
	PID   int32
	Delta Counters
	Label string // Command name and arguments
}
