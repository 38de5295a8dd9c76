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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erwanjouan/proc-io/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *metrics.Report {
	return &metrics.Report{
		Timestamp: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Metric:    metrics.ReadBytes,
		TopN:      10,
		Interval:  10 * time.Second,
		Entries: []metrics.Entry{
			{
				PID: 1234,
				Delta: metrics.Counters{
					metrics.RChar: 4000, metrics.WChar: 0, metrics.SyscR: 20, metrics.SyscW: 0,
					metrics.ReadBytes: 2000, metrics.WriteBytes: 0, metrics.CancelledWriteBytes: 0,
				},
				Label: "dd if=/dev/sda of=/dev/null bs=1M",
			},
			{
				PID: 99,
				Delta: metrics.Counters{
					metrics.RChar: 600, metrics.WChar: 10, metrics.SyscR: 3, metrics.SyscW: 1,
					metrics.ReadBytes: 500, metrics.WriteBytes: 4096,
				},
				Label: "[kworker/0:1]",
			},
		},
	}
}

func TestTextExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	exp := NewTextExporter(NewWriterSink(&buf, "test"), time.UTC, false)

	require.NoError(t, exp.Export(testReport()))

	expected := "\n" +
		"[2026-10-17 09:30:00.000000] Top 10 process ios ordered by read_bytes desc\n" +
		"PID      rchar      wchar      syscr      syscw      read_bytes      write_bytes     cancelled_write_bytes  process name args\n" +
		"1234     4000       0          20         0          2000            0               0                      dd if=/dev/sda of=/dev/null bs=1M\n" +
		"99       600        10         3          1          500             4096            N/A                    [kworker/0:1]\n"
	assert.Equal(t, expected, buf.String())
}

func TestTextExporter_RateMode(t *testing.T) {
	var buf bytes.Buffer
	exp := NewTextExporter(NewWriterSink(&buf, "test"), time.UTC, true)

	report := testReport()
	report.Entries = report.Entries[:1]
	report.Entries[0].Label = "dd"
	require.NoError(t, exp.Export(report))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t,
		"1234     400.00 B/s 0.00 B/s   2.00 B/s   0.00 B/s   200.00 B/s      0.00 B/s        0.00 B/s               dd",
		lines[3])
}

func TestTextExporter_Timezone(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("UTC+2", 2*60*60)
	exp := NewTextExporter(NewWriterSink(&buf, "test"), loc, false)

	require.NoError(t, exp.Export(testReport()))
	assert.Contains(t, buf.String(), "[2026-10-17 11:30:00.000000]")
}

func TestTextExporter_ColumnsAlignAcrossMagnitudes(t *testing.T) {
	var buf bytes.Buffer
	exp := NewTextExporter(NewWriterSink(&buf, "test"), time.UTC, false)

	report := testReport()
	report.Entries[0].Delta[metrics.ReadBytes] = 123_456_789_012
	require.NoError(t, exp.Export(report))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	header, row1, row2 := lines[2], lines[3], lines[4]
	col := strings.Index(header, "write_bytes")
	require.Positive(t, col)
	assert.Equal(t, "0 ", row1[col:col+2])
	assert.Equal(t, "4096", row2[col:col+4])
}

func TestOpenSink_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host_20261017-093000.log")

	sink, err := OpenSink(path)
	require.NoError(t, err)
	assert.Equal(t, path, sink.Name())

	exp := NewTextExporter(sink, time.UTC, false)
	require.NoError(t, exp.Export(testReport()))
	require.NoError(t, exp.Export(testReport()))
	require.NoError(t, exp.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "Top 10 process ios ordered by read_bytes desc"))
}

func TestOpenSink_FailsIfFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exists.log")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))

	_, err := OpenSink(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrExist))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestOpenSink_Console(t *testing.T) {
	sink, err := OpenSink("")
	require.NoError(t, err)
	assert.Equal(t, "stdout", sink.Name())
	assert.NoError(t, sink.Close())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTextExporter_WriteFailure(t *testing.T) {
	exp := NewTextExporter(NewWriterSink(failingWriter{}, "broken"), time.UTC, false)
	err := exp.Export(testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
