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

package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erwanjouan/proc-io/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseCollectFlags resets every collect flag and parses args.
func parseCollectFlags(t *testing.T, args ...string) {
	t.Helper()
	require.NoError(t, collectCmd.ParseFlags(nil))
	collectCmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
	configFile = ""
	require.NoError(t, collectCmd.ParseFlags(args))
}

func TestBuildConfig_Defaults(t *testing.T) {
	parseCollectFlags(t)

	got, err := buildConfig(collectCmd, time.Now())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), got)
}

func TestBuildConfig_Flags(t *testing.T) {
	parseCollectFlags(t, "--interval", "2s", "-m", "write_bytes", "-n", "5", "--rate", "--workers", "4")

	got, err := buildConfig(collectCmd, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, got.SamplingInterval)
	assert.Equal(t, "write_bytes", got.Metric)
	assert.Equal(t, 5, got.TopN)
	assert.True(t, got.RateMode)
	assert.Equal(t, 4, got.Workers)
	assert.Empty(t, got.OutputPath)
}

func TestBuildConfig_AutoOutput(t *testing.T) {
	parseCollectFlags(t, "-o", "auto")

	now := time.Date(2026, 10, 17, 8, 5, 9, 0, time.UTC)
	got, err := buildConfig(collectCmd, now)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got.OutputPath, "_20261017-080509.log"), got.OutputPath)
}

func TestBuildConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc-io.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metric: syscr\ntop: 3\ninterval: 5s\n"), 0o644))

	parseCollectFlags(t, "--config", path, "-n", "7")

	got, err := buildConfig(collectCmd, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "syscr", got.Metric)
	assert.Equal(t, 5*time.Second, got.SamplingInterval)
	assert.Equal(t, 7, got.TopN, "flags override the config file")
}

func TestBuildConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "Unknown metric", args: []string{"-m", "iops"}},
		{name: "Zero top", args: []string{"-n", "0"}},
		{name: "Interval too short", args: []string{"--interval", "100ms"}},
		{name: "Bad format", args: []string{"--format", "xml"}},
		{name: "Bad timezone", args: []string{"--timezone", "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parseCollectFlags(t, tt.args...)
			_, err := buildConfig(collectCmd, time.Now())
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}
