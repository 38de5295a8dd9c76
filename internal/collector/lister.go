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
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Dependency injection points for testing
var (
	processPids  = process.PidsWithContext
	processLabel = commandLabel
)

// ProcessLister enumerates live processes.
type ProcessLister interface {
	// List returns every live pid with its display label (command and arguments).
	List(ctx context.Context) (map[int32]string, error)
}

// PsLister lists processes the way `ps aux` shows them.
type PsLister struct{}

// NewPsLister creates a new process lister.
func NewPsLister() *PsLister {
	return &PsLister{}
}

// List returns all live processes keyed by pid.
// Processes that exit while being listed are silently dropped.
func (l *PsLister) List(ctx context.Context) (map[int32]string, error) {
	pids, err := processPids(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list process ids: %w", err)
	}

	labels := make(map[int32]string, len(pids))
	for _, pid := range pids {
		label, err := processLabel(ctx, pid)
		if err != nil {
			continue
		}
		labels[pid] = label
	}

	return labels, nil
}

// commandLabel returns the full command line of pid. Kernel threads have no
// command line and are shown as [name], like ps does.
func commandLabel(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}

	cmdline, err := p.CmdlineWithContext(ctx)
	if err == nil {
		if cmdline = strings.TrimSpace(cmdline); cmdline != "" {
			return cmdline, nil
		}
	}

	name, err := p.NameWithContext(ctx)
	if err != nil {
		return "", err
	}
	return "[" + name + "]", nil
}

// Name returns the collector name for logging purposes.
func (l *PsLister) Name() string {
	return "Process"
}
