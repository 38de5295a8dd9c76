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
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/erwanjouan/proc-io/internal/config"
	"github.com/erwanjouan/proc-io/pkg/metrics"
)

// Exporter receives the report of every cycle that ranked at least one process.
type Exporter interface {
	Export(report *metrics.Report) error
}

// Publisher is notified with every exported report (e.g. the status API).
type Publisher interface {
	Publish(report *metrics.Report)
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the time source used to stamp samples and reports.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithWait replaces the pause between cycles. wait returns false when the
// manager must stop.
func WithWait(wait func(ctx context.Context, d time.Duration) bool) Option {
	return func(m *Manager) { m.wait = wait }
}

// WithPublisher registers a publisher.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publishers = append(m.publishers, p) }
}

// Manager drives the sampling cycle: list, sample, reap, rank, report.
type Manager struct {
	config     *config.Config
	lister     ProcessLister
	source     CounterSource
	exporter   Exporter
	publishers []Publisher
	store      *metrics.Store
	logger     *slog.Logger

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) bool
}

// sample is the outcome of reading one pid's counters.
type sample struct {
	counters metrics.Counters
	err      error
}

// NewManager creates a new collector manager instance.
func NewManager(cfg *config.Config, lister ProcessLister, source CounterSource, exporter Exporter,
	logger *slog.Logger, opts ...Option,
) *Manager {
	m := &Manager{
		config:   cfg,
		lister:   lister,
		source:   source,
		exporter: exporter,
		store:    metrics.NewStore(),
		logger:   logger,
		now:      time.Now,
		wait:     sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// sleep pauses for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Start runs one cycle immediately and then one per sampling interval.
// It returns nil once ctx is cancelled, or the error of a cycle whose
// data cannot be trusted (listing, ranking or output failure).
func (m *Manager) Start(ctx context.Context) error {
	m.logger.Info("Starting collector manager",
		"interval", m.config.SamplingInterval,
		"metric", m.config.Metric,
		"top", m.config.TopN,
		"workers", m.config.Workers,
	)

	for {
		if ctx.Err() != nil {
			m.logger.Info("Collector manager stopping...")
			return nil
		}

		if err := m.collectOnce(ctx); err != nil {
			if ctx.Err() != nil {
				m.logger.Info("Collector manager stopping...")
				return nil
			}
			m.logger.Error("Collection failed", "error", err)
			return err
		}

		if !m.wait(ctx, m.config.SamplingInterval) {
			m.logger.Info("Collector manager stopping...")
			return nil
		}
	}
}

// collectOnce performs a single collection cycle.
func (m *Manager) collectOnce(ctx context.Context) error {
	now := m.now()
	m.store.BeginCycle()

	labels, err := m.lister.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}

	pids := make([]int32, 0, len(labels))
	live := make(map[int32]struct{}, len(labels))
	for pid := range labels {
		pids = append(pids, pid)
		live[pid] = struct{}{}
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	// Reads may run concurrently; the store is only touched from here.
	samples := m.readCounters(pids)
	unreadable := 0
	for i, s := range samples {
		if s.err != nil {
			unreadable++
			m.logger.Debug("Skipping process", "pid", pids[i], "error", s.err)
			continue
		}
		m.store.Observe(pids[i], now, s.counters)
	}

	reaped := m.store.Reap(live)

	ranked, err := metrics.Rank(m.store, m.config.Metric, m.config.TopN)
	if err != nil {
		return fmt.Errorf("failed to rank processes: %w", err)
	}

	m.logger.Debug("Cycle sampled",
		"live", len(pids),
		"unreadable", unreadable,
		"reaped", len(reaped),
		"tracked", m.store.Len(),
		"ranked", len(ranked),
	)

	if len(ranked) == 0 {
		m.logger.Debug("No process deltas yet, skipping report")
		return nil
	}

	report, missing := metrics.BuildReport(ranked, labels, now, m.config.Metric, m.config.TopN, m.config.SamplingInterval)
	if len(missing) > 0 {
		m.logger.Warn("Omitting processes without a label", "pids", missing)
	}
	if len(report.Entries) == 0 {
		return nil
	}

	if err := m.exporter.Export(report); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	for _, p := range m.publishers {
		p.Publish(report)
	}

	return nil
}

// readCounters reads the counters of every pid, using up to config.Workers
// goroutines. Results are returned in pids order.
func (m *Manager) readCounters(pids []int32) []sample {
	samples := make([]sample, len(pids))

	workers := m.config.Workers
	if workers <= 1 || len(pids) < 2 {
		for i, pid := range pids {
			samples[i].counters, samples[i].err = m.source.Read(pid)
		}
		return samples
	}

	if workers > len(pids) {
		workers = len(pids)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Each index is written by exactly one worker.
				samples[i].counters, samples[i].err = m.source.Read(pids[i])
			}
		}()
	}

	for i := range pids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return samples
}

// Tracked returns the number of processes currently tracked.
func (m *Manager) Tracked() int {
	return m.store.Len()
}
