// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package plan splits each tool's matched files into size-bounded batches
// and orders them into an execution plan.
package plan

import (
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/ffx/internal/matcher"
	"github.com/matt-FFFFFF/ffx/internal/tool"
)

// DefaultBatchSize is the file count used when no batch size is configured.
const DefaultBatchSize = 100

// ErrInvalidBatchSize is returned when the batch size is below one.
var ErrInvalidBatchSize = errors.New("batch size must be at least 1")

// Batch is one invocation's slice of a tool's files.
type Batch struct {
	Tool      tool.Spec
	ToolIndex int // position of Tool in the registry
	Index     int // position of this batch within its tool, from 0
	Files     []string
}

// Label identifies the batch in logs and progress output, e.g. "gofmt#2".
func (b Batch) Label() string {
	return fmt.Sprintf("%s#%d", b.Tool.Name, b.Index+1)
}

// ExecutionPlan is every batch, in tool declaration order then batch index.
type ExecutionPlan []Batch

// FileCount is the total number of file arguments across all batches.
func (p ExecutionPlan) FileCount() int {
	n := 0
	for _, b := range p {
		n += len(b.Files)
	}

	return n
}

// Tools returns the distinct tools present in the plan, in plan order.
func (p ExecutionPlan) Tools() []tool.Spec {
	var out []tool.Spec

	last := -1
	for _, b := range p {
		if b.ToolIndex != last {
			out = append(out, b.Tool)
			last = b.ToolIndex
		}
	}

	return out
}

// New builds the execution plan.
// Tools with no matched files contribute no batches.
func New(ms matcher.MatchSet, maxBatchSize int) (ExecutionPlan, error) {
	if maxBatchSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, maxBatchSize)
	}

	var p ExecutionPlan

	for ti, tm := range ms {
		for i, start := 0, 0; start < len(tm.Files); i, start = i+1, start+maxBatchSize {
			end := min(start+maxBatchSize, len(tm.Files))
			p = append(p, Batch{
				Tool:      tm.Tool,
				ToolIndex: ti,
				Index:     i,
				Files:     tm.Files[start:end:end],
			})
		}
	}

	return p, nil
}
