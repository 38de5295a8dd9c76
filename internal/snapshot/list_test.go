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

package snapshot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/erwanjouan/proc-io/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	labels map[int32]string
	err    error
}

func (f fakeLister) List(context.Context) (map[int32]string, error) {
	return f.labels, f.err
}

type fakeSource map[int32]metrics.Counters

func (f fakeSource) Read(pid int32) (metrics.Counters, error) {
	c, ok := f[pid]
	if !ok {
		return nil, errors.New("no such process")
	}
	return c, nil
}

func TestListProcesses(t *testing.T) {
	lister := fakeLister{labels: map[int32]string{
		1:   "/sbin/init",
		200: "postgres",
		300: "[kworker/1:0]",
		400: "nginx: worker process",
	}}
	source := fakeSource{
		1:   {metrics.ReadBytes: 4096},
		200: {metrics.ReadBytes: 1 << 30},
		400: {metrics.ReadBytes: 4096},
	}

	tests := []struct {
		name    string
		metric  string
		want    []int32
		wantErr bool
	}{
		{name: "Sorted by metric then pid", metric: metrics.ReadBytes, want: []int32{200, 1, 400}},
		{name: "Unknown metric", metric: "iops", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infos, unreadable, err := ListProcesses(context.Background(), lister, source, tt.metric)
			if tt.wantErr {
				assert.ErrorIs(t, err, metrics.ErrUnknownMetric)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, unreadable)

			got := make([]int32, 0, len(infos))
			for _, p := range infos {
				got = append(got, p.PID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListProcesses_ListerError(t *testing.T) {
	listErr := errors.New("boom")
	_, _, err := ListProcesses(context.Background(), fakeLister{err: listErr}, fakeSource{}, metrics.ReadBytes)
	assert.ErrorIs(t, err, listErr)
}

func TestFormatProcessesTable(t *testing.T) {
	infos := []ProcessInfo{
		{
			PID:   200,
			Label: "postgres: checkpointer process with a very long argument list attached",
			Counters: metrics.Counters{
				metrics.RChar: 512, metrics.WChar: 2048, metrics.ReadBytes: 1 << 30, metrics.WriteBytes: 0,
			},
		},
	}

	out := FormatProcessesTable(infos, metrics.ReadBytes)

	assert.Contains(t, out, "by read_bytes")
	assert.Contains(t, out, "PID")
	assert.Contains(t, out, "COMMAND")
	assert.Contains(t, out, "512 B")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "1.0 GB")
	assert.Contains(t, out, "...")
	assert.False(t, strings.Contains(out, "attached"), "long labels are truncated")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{-5, "-5 B"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.input))
	}
}
