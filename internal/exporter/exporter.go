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

// Package exporter writes ranked I/O reports to the console or a file.
package exporter

import (
	"fmt"
	"log/slog"

	"github.com/erwanjouan/proc-io/internal/config"
	"github.com/erwanjouan/proc-io/pkg/metrics"
)

const naString = "N/A"

// Exporter writes one report per cycle.
type Exporter interface {
	Export(report *metrics.Report) error
	Close() error
}

// New opens the configured sink and returns the exporter for the configured format.
func New(cfg *config.Config, logger *slog.Logger) (Exporter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
	}

	sink, err := OpenSink(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	logger.Info("Report output opened", "output", sink.Name(), "format", cfg.Format, "rate", cfg.RateMode)

	switch cfg.Format {
	case config.FormatCSV:
		return NewCSVExporter(sink, loc), nil
	default:
		return NewTextExporter(sink, loc, cfg.RateMode), nil
	}
}
