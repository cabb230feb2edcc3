// File: batch.go
// Title: Batch Execution
// Description: Runs command lines read from a file or stream, one per line,
//              skipping blank and comment lines.
// Author: msto63
// Version: v0.1.0
// Created: 2025-03-12
// Modified: 2025-03-12

package dispatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	derror "github.com/msto63/dcmd/foundation/core/error"
	dlog "github.com/msto63/dcmd/foundation/core/log"
)

// BatchOptions controls RunBatch
type BatchOptions struct {
	// StopOnError aborts at the first line whose outcome is not Success
	StopOnError bool
	// Echo prints every executed line prefixed with "> "
	Echo bool
}

// BatchReport summarizes a batch run
type BatchReport struct {
	Lines     int
	Executed  int
	Failed    int
	Stopped   bool
	StoppedAt int
}

// Summary renders the report as one line
func (b BatchReport) Summary() string {
	s := fmt.Sprintf("Batch finished: %d executed, %d failed", b.Executed, b.Failed)
	if b.Stopped {
		s += fmt.Sprintf(", stopped at line %d", b.StoppedAt)
	}
	return s
}

// RunBatch executes every command line of src. Failures are reported on the
// runtime's output and do not end the run unless StopOnError is set.
func (r *Runtime) RunBatch(ctx context.Context, src io.Reader, opts BatchOptions) (BatchReport, error) {
	var report BatchReport
	scanner := bufio.NewScanner(src)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if opts.Echo {
			fmt.Fprintf(r.out, "> %s\n", line)
		}
		res := r.RunLine(ctx, line)
		report.Executed++
		if res.OK() {
			if res.Value.IsValid() {
				fmt.Fprintln(r.out, res.Value)
			}
			continue
		}

		report.Failed++
		fmt.Fprintf(r.out, "line %d: %s: %v\n", report.Lines, res.Outcome, res.Err)
		r.logger.Warn("Batch line failed", dlog.Fields{
			"line":    report.Lines,
			"outcome": res.Outcome.String(),
		})
		if opts.StopOnError {
			report.Stopped = true
			report.StoppedAt = report.Lines
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return report, derror.Wrap(err, "read batch").WithCode(derror.CodeIO)
	}
	return report, nil
}

// RunBatchFile opens path on the runtime's file system and runs it
func (r *Runtime) RunBatchFile(ctx context.Context, path string, opts BatchOptions) (BatchReport, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return BatchReport{}, derror.Wrapf(err, "open batch file %s", path).
			WithCode(derror.CodeIO).
			WithDetail("file", path)
	}
	defer f.Close()

	r.logger.Info("Batch started", dlog.Fields{"file": path, "stopOnError": opts.StopOnError})
	report, err := r.RunBatch(ctx, f, opts)
	r.logger.Info("Batch finished", dlog.Fields{
		"file":     path,
		"executed": report.Executed,
		"failed":   report.Failed,
		"stopped":  report.Stopped,
	})
	return report, err
}
