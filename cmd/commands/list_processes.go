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

	"github.com/erwanjouan/proc-io/internal/collector"
	"github.com/erwanjouan/proc-io/internal/config"
	"github.com/erwanjouan/proc-io/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	listMetric   string
	listProcRoot string
	listLimit    int
)

var listProcessesCmd = &cobra.Command{
	Use:   "list-processes",
	Short: "List cumulative I/O counters of running processes",
	Long: `List the I/O counters accumulated since start by every running process.
This is a one-shot view, useful to check that the counters are readable
before starting 'proc-io collect'.

Examples:
  # All readable processes, biggest readers first
  proc-io list-processes

  # Ten biggest writers
  proc-io list-processes -m write_bytes --limit 10`,
	RunE: runListProcesses,
}

func init() {
	rootCmd.AddCommand(listProcessesCmd)
	listProcessesCmd.Flags().StringVarP(&listMetric, "metric", "m", config.DefaultMetric,
		"Counter used to sort processes")
	listProcessesCmd.Flags().StringVar(&listProcRoot, "proc-root", config.DefaultProcRoot,
		"Mount point of the proc filesystem")
	listProcessesCmd.Flags().IntVar(&listLimit, "limit", 0,
		"Maximum number of processes to show (0 = all)")
}

func runListProcesses(cmd *cobra.Command, args []string) error {
	source, err := collector.NewProcfsSource(listProcRoot)
	if err != nil {
		return err
	}

	infos, unreadable, err := snapshot.ListProcesses(context.Background(), collector.NewPsLister(), source, listMetric)
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("\nNo readable process I/O counters found.")
		fmt.Println("Per-process I/O accounting may require root privileges.")
		return nil
	}

	if listLimit > 0 && len(infos) > listLimit {
		infos = infos[:listLimit]
	}

	fmt.Print(snapshot.FormatProcessesTable(infos, listMetric))

	if unreadable > 0 {
		fmt.Printf("\n%d process(es) skipped: I/O counters not readable (try running as root).\n", unreadable)
	}
	fmt.Println()

	return nil
}
