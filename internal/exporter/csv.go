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
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/erwanjouan/proc-io/pkg/metrics"
)

// CSVExporter writes reports as CSV rows, one row per ranked process.
type CSVExporter struct {
	sink          *Sink
	csvWriter     *csv.Writer
	location      *time.Location
	headerWritten bool
}

// NewCSVExporter creates a CSV exporter on top of sink.
func NewCSVExporter(sink *Sink, loc *time.Location) *CSVExporter {
	if loc == nil {
		loc = time.Local
	}
	return &CSVExporter{
		sink:      sink,
		csvWriter: csv.NewWriter(sink),
		location:  loc,
	}
}

// Export writes the report rows and flushes them to the sink.
func (e *CSVExporter) Export(report *metrics.Report) error {
	// Write header if this is the first record
	if !e.headerWritten {
		if err := e.csvWriter.Write(e.header()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.headerWritten = true
	}

	ts := report.Timestamp.In(e.location).Format("2006-01-02 15:04:05")
	for i := range report.Entries {
		if err := e.csvWriter.Write(e.buildRow(ts, report, i)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return e.flush()
}

// header builds the CSV header row.
func (e *CSVExporter) header() []string {
	header := []string{"Timestamp", "Metric", "Rank", "Interval (s)", "PID"}
	header = append(header, metrics.CounterNames...)
	return append(header, "Command")
}

// buildRow builds a CSV row for the i-th entry of report.
func (e *CSVExporter) buildRow(ts string, report *metrics.Report, i int) []string {
	entry := &report.Entries[i]
	row := []string{
		ts,
		report.Metric,
		strconv.Itoa(i + 1),
		strconv.FormatFloat(report.Interval.Seconds(), 'f', -1, 64),
		strconv.FormatInt(int64(entry.PID), 10),
	}

	for _, name := range metrics.CounterNames {
		if v, ok := entry.Delta[name]; ok {
			row = append(row, strconv.FormatInt(v, 10))
		} else {
			row = append(row, naString)
		}
	}

	return append(row, entry.Label)
}

// flush flushes the buffered data to the sink.
func (e *CSVExporter) flush() error {
	e.csvWriter.Flush()
	if err := e.csvWriter.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return e.sink.Flush()
}

// Close flushes remaining data and closes the sink.
func (e *CSVExporter) Close() error {
	if err := e.flush(); err != nil {
		return err
	}
	return e.sink.Close()
}
