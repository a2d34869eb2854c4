// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastLineReader_PassesDataThrough(t *testing.T) {
	input := "line 1\nline 2\npartial"
	lr := New(strings.NewReader(input), 0, nil)

	data, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}

func TestLastLineReader_LastLine(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		last     string
		partial  string
		afterEOF string
	}{
		{"single line", []string{"hello world\n"}, "hello world", "", "hello world"},
		{"no newline", []string{"hello"}, "", "hello", "hello"},
		{"empty", []string{""}, "", "", ""},
		{"blank lines are skipped", []string{"real\n\n   \n"}, "real", "", "real"},
		{"split across reads", []string{"for", "matting a.go\nnext"}, "formatting a.go", "next", "next"},
		{"crlf", []string{"windows\r\n"}, "windows", "", "windows"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lr := New(strings.NewReader(""), 0, nil)
			for _, c := range tc.chunks {
				lr.process([]byte(c))
			}

			assert.Equal(t, tc.last, lr.LastLine(0))
			assert.Equal(t, tc.partial, lr.PartialLine())

			lr.Flush()
			assert.Equal(t, tc.afterEOF, lr.LastLine(0))
			assert.Empty(t, lr.PartialLine())
		})
	}
}

func TestLastLineReader_Truncation(t *testing.T) {
	lr := New(strings.NewReader("abcdefghijklmnop\n"), 0, nil)
	_, err := io.ReadAll(lr)
	require.NoError(t, err)

	assert.Equal(t, "abcdefg...", lr.LastLine(10))
	assert.Equal(t, "abcdefghijklmnop", lr.LastLine(0))
}

func TestLastLineReader_CallbackThrottled(t *testing.T) {
	var (
		mu    sync.Mutex
		lines []string
	)

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	lr := New(strings.NewReader(""), time.Second, func(l string) {
		mu.Lock()
		defer mu.Unlock()

		lines = append(lines, l)
	})
	lr.now = func() time.Time { return clock }

	lr.process([]byte("one\n"))
	lr.process([]byte("two\n"))
	lr.process([]byte("three\n"))
	assert.Equal(t, []string{"one"}, lines, "lines within the interval are coalesced")

	clock = clock.Add(2 * time.Second)
	lr.process([]byte("four\n"))
	assert.Equal(t, []string{"one", "four"}, lines)

	lr.process([]byte("five\n"))
	lr.Flush()
	assert.Equal(t, []string{"one", "four", "five"}, lines, "flush delivers the pending line")

	lr.Flush()
	assert.Len(t, lines, 3, "nothing pending, nothing delivered")
}

func TestLastLineReader_EOFFlushes(t *testing.T) {
	var got []string

	lr := New(strings.NewReader("a\nb"), time.Hour, func(l string) { got = append(got, l) })

	_, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, "b", got[len(got)-1])
}

func TestLastLineReader_PartialIsBounded(t *testing.T) {
	lr := New(strings.NewReader(""), 0, nil)
	lr.process([]byte(strings.Repeat("x", maxPartial*2)))

	assert.Len(t, lr.PartialLine(), maxPartial)
}

func TestLastLineReader_Concurrent(t *testing.T) {
	lr := New(strings.NewReader(strings.Repeat("line\n", 1000)), 0, func(string) {})

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		_, _ = io.ReadAll(lr)
	}()

	go func() {
		defer wg.Done()

		for range 100 {
			_ = lr.LastLine(10)
		}
	}()

	wg.Wait()
	assert.Equal(t, "line", lr.LastLine(0))
}
