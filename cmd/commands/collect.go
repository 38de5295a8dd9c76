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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/erwanjouan/proc-io/internal/collector"
	"github.com/erwanjouan/proc-io/internal/config"
	"github.com/erwanjouan/proc-io/internal/exporter"
	"github.com/erwanjouan/proc-io/internal/server"
	"github.com/erwanjouan/proc-io/pkg/version"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
)

var (
	// Collect command specific flags
	samplingInterval time.Duration
	metricName       string
	topN             int
	outputPath       string
	outputFormat     string
	rateMode         bool
	workers          int
	procRoot         string
	listenAddr       string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Start sampling per-process disk I/O",
	Long: `Start sampling the I/O counters of every running process.
Every interval the top N processes, ranked by the selected counter delta,
are written to the console or to a report file.

Counters: rchar, wchar, syscr, syscw, read_bytes, write_bytes, cancelled_write_bytes

Examples:
  # Top 10 readers every 10 seconds on the console
  proc-io collect

  # Top 5 writers every 2 seconds, as rates, into a generated file
  proc-io collect --interval 2s -m write_bytes -n 5 --rate -o auto

  # CSV report with the status API enabled
  proc-io collect --format csv -o /var/log/proc-io.csv --listen 127.0.0.1:9910`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	// Define flags specifically for collect command
	collectCmd.Flags().DurationVar(&samplingInterval, "interval", config.DefaultSamplingInterval,
		"Sampling interval (e.g., 1s, 30s, 1m)")
	collectCmd.Flags().StringVarP(&metricName, "metric", "m", config.DefaultMetric,
		"Counter used to rank processes")
	collectCmd.Flags().IntVarP(&topN, "top", "n", config.DefaultTopN,
		"Number of processes per report")
	collectCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Report file path (empty = console, 'auto' = <hostname>_<timestamp>.log)")
	collectCmd.Flags().StringVar(&outputFormat, "format", config.DefaultFormat,
		"Report format (text, csv)")
	collectCmd.Flags().BoolVar(&rateMode, "rate", false,
		"Print human readable rates instead of raw deltas (text format)")
	collectCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers,
		"Number of concurrent counter readers")
	collectCmd.Flags().StringVar(&procRoot, "proc-root", config.DefaultProcRoot,
		"Mount point of the proc filesystem")
	collectCmd.Flags().StringVar(&listenAddr, "listen", "",
		"Status API listen address (empty = disabled)")
}

// buildConfig creates a Config object from defaults, the optional config
// file and the flags explicitly set on the command line, in that order.
func buildConfig(cmd *cobra.Command, now time.Time) (*config.Config, error) {
	cfg := config.Default()

	if configFile != "" {
		if err := config.LoadFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.SamplingInterval = samplingInterval
	}
	if flags.Changed("metric") {
		cfg.Metric = metricName
	}
	if flags.Changed("top") {
		cfg.TopN = topN
	}
	if flags.Changed("output") {
		cfg.OutputPath = outputPath
	}
	if flags.Changed("format") {
		cfg.Format = outputFormat
	}
	if flags.Changed("rate") {
		cfg.RateMode = rateMode
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("proc-root") {
		cfg.ProcRoot = procRoot
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = listenAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel // Access global var from root.go
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("timezone") {
		cfg.Timezone = timezone
	}

	if cfg.OutputPath == config.AutoOutputPath {
		cfg.OutputPath = config.GetDefaultOutputPath(now)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// runCollect is the main sampling entry point.
func runCollect(cmd *cobra.Command, args []string) error {
	// Build configuration from flags
	var err error
	cfg, err = buildConfig(cmd, time.Now())
	if err != nil {
		return err
	}

	// Initialize logger
	logger := InitLogger(cfg.LogLevel, cfg.LogFile)

	runID := uuid.New().String()
	logger.Info("Starting proc-io",
		"version", version.Info(),
		"run_id", runID,
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
	)
	logger.Info("Configuration loaded", "config", cfg.String())

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkPlatform(ctx, logger)

	source, err := collector.NewProcfsSource(cfg.ProcRoot)
	if err != nil {
		logger.Error("Failed to open proc filesystem", "root", cfg.ProcRoot, "error", err)
		return err
	}

	reportExporter, err := exporter.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create report exporter", "error", err)
		return err
	}
	defer func() {
		if err := reportExporter.Close(); err != nil {
			logger.Error("Failed to close exporter", "error", err)
		}
	}()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, initiating shutdown", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var (
		opts []collector.Option
		wg   sync.WaitGroup
	)
	if cfg.ListenAddr != "" {
		statusServer := server.NewServer(runID, cfg, logger)
		opts = append(opts, collector.WithPublisher(statusServer))

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := statusServer.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
				logger.Error("Status API stopped with error", "error", err)
			}
		}()
	}

	collectorMgr := collector.NewManager(cfg, collector.NewPsLister(), source, reportExporter, logger, opts...)

	logger.Info("proc-io is running", "output", cfg.OutputName(), "interval", cfg.SamplingInterval)

	// Start collector manager (blocking until context is cancelled or a cycle fails)
	runErr := collectorMgr.Start(ctx)

	logger.Info("Shutting down...")
	cancel()
	wg.Wait()

	if runErr != nil {
		logger.Error("Collector manager stopped with error", "error", runErr)
		return runErr
	}

	logger.Info("Shutdown complete", "tracked", collectorMgr.Tracked())

	return nil
}

// checkPlatform logs the host the sampler runs on and warns when the
// per-process I/O accounting is unlikely to be available.
func checkPlatform(ctx context.Context, logger *slog.Logger) {
	if runtime.GOOS != "linux" {
		logger.Warn("Running on unsupported platform, per-process I/O counters are Linux only", "os", runtime.GOOS)
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		logger.Debug("Failed to read host information", "error", err)
		return
	}

	logger.Info("Host detected",
		"hostname", info.Hostname,
		"platform", info.Platform,
		"platform_version", info.PlatformVersion,
		"kernel", info.KernelVersion,
	)
}
