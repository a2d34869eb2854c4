// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"strings"
	"time"

	"github.com/matt-FFFFFF/ffx/internal/plan"
	"github.com/matt-FFFFFF/ffx/internal/progress"
)

func batchEvent(index int, b plan.Batch, et progress.EventType, msg string) progress.Event {
	return progress.Event{
		Batch:     b.Label(),
		Tool:      b.Tool.Name,
		Index:     index,
		Files:     len(b.Files),
		Type:      et,
		Message:   msg,
		Timestamp: time.Now(),
	}
}

func reportPlanned(r progress.Reporter, p plan.ExecutionPlan) {
	for i, b := range p {
		r.Report(batchEvent(i, b, progress.EventPlanned, "waiting"))
	}
}

func reportStarted(r progress.Reporter, index int, b plan.Batch) {
	r.Report(batchEvent(index, b, progress.EventStarted, "running"))
}

func reportSkipped(r progress.Reporter, index int, b plan.Batch) {
	r.Report(batchEvent(index, b, progress.EventSkipped, "not attempted"))
}

func reportOutput(r progress.Reporter, index int, b plan.Batch, line string) {
	e := batchEvent(index, b, progress.EventOutput, "running")
	e.Data.OutputLine = line
	r.Report(e)
}

// reportFinished sends EventCompleted or EventFailed for res.
func reportFinished(r progress.Reporter, index int, res *BatchResult) {
	if !res.Failed() {
		e := batchEvent(index, res.Batch, progress.EventCompleted, "formatted")
		e.Data = progress.EventData{ExitCode: res.ExitCode, Duration: res.Duration}
		r.Report(e)

		return
	}

	msg := "failed"
	if res.Status == StatusExecutableMissing {
		msg = progress.MsgNotFound
	}

	e := batchEvent(index, res.Batch, progress.EventFailed, msg)
	e.Data = progress.EventData{
		ExitCode:   res.ExitCode,
		Error:      res.Err,
		OutputLine: firstLine(res.StdErr, res.StdOut),
		Duration:   res.Duration,
	}
	r.Report(e)
}

func firstLine(streams ...[]byte) string {
	for _, s := range streams {
		for _, line := range strings.Split(string(s), "\n") {
			if l := strings.TrimSpace(line); l != "" {
				return l
			}
		}
	}

	return ""
}
