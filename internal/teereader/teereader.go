// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"
)

// maxPartial bounds the incomplete line kept between reads.
const maxPartial = 4096

// LastLineReader wraps an io.Reader and tracks the last complete, non-blank
// line. When a callback is set it is called with that line at most once per
// interval. It is safe for concurrent use.
type LastLineReader struct {
	reader   io.Reader
	onLine   func(line string)
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	partial  []byte
	lastLine string
	notified time.Time
	pending  bool // lastLine changed since the last callback
}

// New creates a LastLineReader. onLine may be nil; an interval of zero calls
// it for every line.
func New(r io.Reader, interval time.Duration, onLine func(line string)) *LastLineReader {
	return &LastLineReader{
		reader:   r,
		onLine:   onLine,
		interval: interval,
		now:      time.Now,
	}
}

// Read implements io.Reader.
func (lt *LastLineReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		lt.process(p[:n])
	}

	if err == io.EOF {
		lt.Flush()
	}

	return n, err //nolint:wrapcheck
}

func (lt *LastLineReader) process(data []byte) {
	lt.mu.Lock()

	lt.partial = append(lt.partial, data...)

	if i := bytes.LastIndexByte(lt.partial, '\n'); i >= 0 {
		if line := lastNonBlank(lt.partial[:i]); line != "" {
			lt.lastLine = line
			lt.pending = true
		}

		lt.partial = append(lt.partial[:0], lt.partial[i+1:]...)
	}

	if len(lt.partial) > maxPartial {
		lt.partial = lt.partial[len(lt.partial)-maxPartial:]
	}

	line, ok := lt.due(false)
	lt.mu.Unlock()

	if ok {
		lt.onLine(line)
	}
}

// due reports whether the callback should fire now. Must be called with mu held.
func (lt *LastLineReader) due(force bool) (string, bool) {
	if lt.onLine == nil || !lt.pending {
		return "", false
	}

	now := lt.now()
	if !force && !lt.notified.IsZero() && now.Sub(lt.notified) < lt.interval {
		return "", false
	}

	lt.notified = now
	lt.pending = false

	return lt.lastLine, true
}

// Flush treats any trailing partial line as complete and delivers a pending
// line regardless of the interval.
func (lt *LastLineReader) Flush() {
	lt.mu.Lock()

	if line := strings.TrimSpace(string(lt.partial)); line != "" {
		lt.lastLine = line
		lt.pending = true
	}

	lt.partial = lt.partial[:0]

	line, ok := lt.due(true)
	lt.mu.Unlock()

	if ok {
		lt.onLine(line)
	}
}

// LastLine returns the last complete line read so far, trimmed. If maxLength
// is positive the line is cut to that many runes, ending in "...".
func (lt *LastLineReader) LastLine(maxLength int) string {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	r := []rune(lt.lastLine)
	if maxLength > 3 && len(r) > maxLength {
		return string(r[:maxLength-3]) + "..."
	}

	return lt.lastLine
}

// PartialLine returns data read after the last newline.
func (lt *LastLineReader) PartialLine() string {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	return string(lt.partial)
}

func lastNonBlank(b []byte) string {
	for len(b) > 0 {
		i := bytes.LastIndexByte(b, '\n')
		if line := strings.TrimSpace(string(b[i+1:])); line != "" {
			return line
		}

		if i < 0 {
			break
		}

		b = b[:i]
	}

	return ""
}
