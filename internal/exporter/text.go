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
	"fmt"
	"time"

	"github.com/erwanjouan/proc-io/pkg/metrics"
)

// lineFormat pads every column to a fixed minimum width; the label is last and unpadded.
const lineFormat = "%-8v %-10v %-10v %-10v %-10v %-15v %-15v %-22v %s\n"

const (
	timestampFormat = "2006-01-02 15:04:05.000000"
	labelHeader     = "process name args"
)

// TextExporter writes reports as aligned plain text.
type TextExporter struct {
	sink     *Sink
	location *time.Location
	rate     bool
}

// NewTextExporter creates a text exporter. With rate set, deltas are printed
// as per-second rates instead of raw values.
func NewTextExporter(sink *Sink, loc *time.Location, rate bool) *TextExporter {
	if loc == nil {
		loc = time.Local
	}
	return &TextExporter{
		sink:     sink,
		location: loc,
		rate:     rate,
	}
}

// Export writes the header and one line per entry, then flushes the sink.
func (e *TextExporter) Export(report *metrics.Report) error {
	ts := report.Timestamp.In(e.location).Format(timestampFormat)
	if _, err := fmt.Fprintf(e.sink, "\n[%s] Top %d process ios ordered by %s desc\n", ts, report.TopN, report.Metric); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if _, err := fmt.Fprintf(e.sink, lineFormat, e.headerRow()...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range report.Entries {
		if _, err := fmt.Fprintf(e.sink, lineFormat, e.buildRow(&report.Entries[i], report.Interval)...); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return e.sink.Flush()
}

func (e *TextExporter) headerRow() []any {
	row := make([]any, 0, len(metrics.CounterNames)+2)
	row = append(row, "PID")
	for _, name := range metrics.CounterNames {
		row = append(row, name)
	}
	return append(row, labelHeader)
}

func (e *TextExporter) buildRow(entry *metrics.Entry, interval time.Duration) []any {
	row := make([]any, 0, len(metrics.CounterNames)+2)
	row = append(row, entry.PID)
	for _, name := range metrics.CounterNames {
		row = append(row, e.formatValue(entry.Delta, name, interval))
	}
	return append(row, entry.Label)
}

// formatValue renders one delta, handling the N/A case.
func (e *TextExporter) formatValue(delta metrics.Counters, name string, interval time.Duration) string {
	v, ok := delta[name]
	if !ok {
		return naString
	}
	if e.rate {
		return metrics.FormatRate(v, interval)
	}
	return fmt.Sprintf("%d", v)
}

// Close flushes and closes the sink.
func (e *TextExporter) Close() error {
	return e.sink.Close()
}
