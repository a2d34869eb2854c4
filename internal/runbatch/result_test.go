// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/matt-FFFFFF/ffx/internal/plan"
	"github.com/matt-FFFFFF/ffx/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultWith(s Status) *BatchResult {
	return &BatchResult{Status: s}
}

func TestRunReport_OutcomePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		results []*BatchResult
		want    Outcome
	}{
		{"empty", nil, OutcomeSuccess},
		{"all succeeded", []*BatchResult{resultWith(StatusSucceeded), resultWith(StatusSucceeded)}, OutcomeSuccess},
		{"failed only", []*BatchResult{resultWith(StatusSucceeded), resultWith(StatusFormatterFailed)}, OutcomeFormatterFailure},
		{"missing only", []*BatchResult{resultWith(StatusExecutableMissing)}, OutcomeExecutableMissing},
		{"missing beats failed", []*BatchResult{resultWith(StatusFormatterFailed), resultWith(StatusExecutableMissing)}, OutcomeExecutableMissing},
		{"missing before failed", []*BatchResult{resultWith(StatusExecutableMissing), resultWith(StatusFormatterFailed)}, OutcomeExecutableMissing},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &RunReport{Results: tc.results}
			assert.Equal(t, tc.want, r.Outcome())
		})
	}
}

func TestStatusAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "succeeded", StatusSucceeded.String())
	assert.Equal(t, "failed", StatusFormatterFailed.String())
	assert.Equal(t, "missing", StatusExecutableMissing.String())
	assert.Equal(t, "unknown", Status(9).String())
	assert.Equal(t, "executable missing", OutcomeExecutableMissing.String())
}

func TestBatchResult_Command(t *testing.T) {
	r := &BatchResult{
		Batch: plan.Batch{Tool: tool.Spec{Cmd: "echo"}},
		Args:  []string{"hello", "my file.txt", "it's"},
	}

	assert.Equal(t, `echo hello 'my file.txt' 'it'\''s'`, r.Command())
}

func TestBinaryRoundTripKeepsErrorsAsText(t *testing.T) {
	orig := &RunReport{
		ID:       "run-1",
		Mode:     tool.ModeCheck,
		Started:  time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		Duration: time.Second,
		Planned:  3,
		Results: []*BatchResult{
			{
				Batch:    plan.Batch{Tool: tool.Spec{Name: "gofmt", Cmd: "gofmt"}, Files: []string{"a.go"}},
				Status:   StatusSucceeded,
				Path:     "/usr/bin/gofmt",
				Args:     []string{"-l", "a.go"},
				StdOut:   []byte("a.go\n"),
				Duration: 10 * time.Millisecond,
			},
			{
				Batch:    plan.Batch{Tool: tool.Spec{Name: "black", Cmd: "black"}, ToolIndex: 1, Files: []string{"x.py"}},
				Status:   StatusExecutableMissing,
				ExitCode: -1,
				Err:      errors.Join(errors.New("executable not found: black")),
			},
		},
		NotAttempted: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, orig))

	got, err := ReadBinary(&buf)
	require.NoError(t, err)

	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.Mode, got.Mode)
	assert.True(t, orig.Started.Equal(got.Started))
	assert.Equal(t, 1, got.NotAttempted)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "gofmt", got.Results[0].Batch.Tool.Name)
	assert.Equal(t, []byte("a.go\n"), got.Results[0].StdOut)
	require.NoError(t, got.Results[0].Err)
	require.EqualError(t, got.Results[1].Err, "executable not found: black")
	assert.Equal(t, OutcomeExecutableMissing, got.Outcome())
}

func TestReadBinary_Garbage(t *testing.T) {
	_, err := ReadBinary(bytes.NewBufferString("not gob"))
	require.ErrorIs(t, err, ErrReadGob)
}
