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

// Package server exposes the latest ranked report over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/erwanjouan/proc-io/internal/config"
	"github.com/erwanjouan/proc-io/pkg/metrics"
	"github.com/erwanjouan/proc-io/pkg/version"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// Server serves the status API. It implements collector.Publisher.
type Server struct {
	runID     string
	startedAt time.Time
	config    *config.Config
	logger    *slog.Logger
	router    *mux.Router

	mu      sync.RWMutex
	latest  *ReportView
	reports uint64
}

// ReportView is the JSON representation of a report.
type ReportView struct {
	Timestamp       time.Time   `json:"timestamp"`
	Metric          string      `json:"metric"`
	Top             int         `json:"top"`
	IntervalSeconds float64     `json:"interval_seconds"`
	Processes       []EntryView `json:"processes"`
}

// EntryView is the JSON representation of a ranked process.
type EntryView struct {
	Rank    int               `json:"rank"`
	PID     int32             `json:"pid"`
	Command string            `json:"command"`
	Delta   map[string]int64  `json:"delta"`
	Rates   map[string]string `json:"rates"`
}

// StatusView describes the running sampler.
type StatusView struct {
	RunID           string     `json:"run_id"`
	StartedAt       time.Time  `json:"started_at"`
	Metric          string     `json:"metric"`
	Top             int        `json:"top"`
	IntervalSeconds float64    `json:"interval_seconds"`
	Output          string     `json:"output"`
	Reports         uint64     `json:"reports"`
	LastReport      *time.Time `json:"last_report,omitempty"`
}

// NewServer creates a new status server.
func NewServer(runID string, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		runID:     runID,
		startedAt: time.Now(),
		config:    cfg,
		logger:    logger,
		router:    mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Add logging middleware
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/api/version", s.handleGetVersion).Methods("GET")
	s.router.HandleFunc("/api/status", s.handleGetStatus).Methods("GET")
	s.router.HandleFunc("/api/top", s.handleGetTop).Methods("GET")
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Publish stores report as the latest one.
func (s *Server) Publish(report *metrics.Report) {
	view := newReportView(report)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = view
	s.reports++
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Status API listening", "addr", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status API failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status API shutdown failed: %w", err)
		}
		return nil
	}
}

func newReportView(report *metrics.Report) *ReportView {
	view := &ReportView{
		Timestamp:       report.Timestamp,
		Metric:          report.Metric,
		Top:             report.TopN,
		IntervalSeconds: report.Interval.Seconds(),
		Processes:       make([]EntryView, 0, len(report.Entries)),
	}

	for i, e := range report.Entries {
		rates := make(map[string]string, len(e.Delta))
		for name, v := range e.Delta {
			rates[name] = metrics.FormatRate(v, report.Interval)
		}
		view.Processes = append(view.Processes, EntryView{
			Rank:    i + 1,
			PID:     e.PID,
			Command: e.Label,
			Delta:   e.Delta.Clone(),
			Rates:   rates,
		})
	}

	return view
}

// handleGetVersion returns version information from the version package.
func (s *Server) handleGetVersion(w http.ResponseWriter, _ *http.Request) {
	versionInfo := map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.Date,
	}
	s.writeJSON(w, versionInfo)
}

// handleGetStatus returns the sampler status.
func (s *Server) handleGetStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	status := StatusView{
		RunID:           s.runID,
		StartedAt:       s.startedAt,
		Metric:          s.config.Metric,
		Top:             s.config.TopN,
		IntervalSeconds: s.config.SamplingInterval.Seconds(),
		Output:          s.config.OutputName(),
		Reports:         s.reports,
	}
	if s.latest != nil {
		ts := s.latest.Timestamp
		status.LastReport = &ts
	}
	s.mu.RUnlock()

	s.writeJSON(w, status)
}

// handleGetTop returns the latest report.
func (s *Server) handleGetTop(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		s.writeError(w, "no report yet", http.StatusNotFound)
		return
	}

	s.writeJSON(w, latest)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	}); err != nil {
		s.logger.Error("Failed to write error response", "error", err)
	}
}
