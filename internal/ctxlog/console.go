// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/ffx/internal/color"
)

// TimeFormat is the timestamp layout of console log lines.
const TimeFormat = "[15:04:05.000]"

var (
	// ErrMarshalAttribute is returned when the record attributes cannot be rendered.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when the destination writer fails.
	ErrIoWrite = errors.New("error when writing to output")
)

// ConsoleHandler renders records as "time level message {attrs}".
// Attributes are collected by an inner JSON handler and re-rendered with colorjson.
type ConsoleHandler struct {
	inner   slog.Handler
	buf     *bytes.Buffer
	mu      *sync.Mutex
	w       io.Writer
	colour  bool
	replace func([]string, slog.Attr) slog.Attr
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Option configures a ConsoleHandler.
type Option func(h *ConsoleHandler)

// WithDestinationWriter sets where lines are written. The default is stderr.
func WithDestinationWriter(w io.Writer) Option {
	return func(h *ConsoleHandler) {
		h.w = w
	}
}

// WithColour forces coloured output.
func WithColour() Option {
	return func(h *ConsoleHandler) {
		h.colour = true
	}
}

// WithAutoColour colours output when the color package says the terminal supports it.
func WithAutoColour() Option {
	return func(h *ConsoleHandler) {
		h.colour = color.Enabled()
	}
}

// NewConsoleHandler creates a ConsoleHandler.
func NewConsoleHandler(opts *slog.HandlerOptions, options ...Option) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	buf := &bytes.Buffer{}
	h := &ConsoleHandler{
		buf: buf,
		inner: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       opts.Level,
			AddSource:   opts.AddSource,
			ReplaceAttr: dropBuiltins(opts.ReplaceAttr),
		}),
		mu:      &sync.Mutex{},
		w:       os.Stderr,
		replace: opts.ReplaceAttr,
	}

	for _, o := range options {
		o(h)
	}

	return h
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.inner = h.inner.WithAttrs(attrs)

	return &c
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.inner = h.inner.WithGroup(name)

	return &c
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs, err := h.attrs(ctx, r)
	if err != nil {
		return err
	}

	sb := strings.Builder{}

	if ts := h.builtin(slog.TimeKey, slog.StringValue(r.Time.Format(TimeFormat))); ts != "" {
		sb.WriteString(h.paint(ts, color.Faint))
		sb.WriteByte(' ')
	}

	if lvl := h.builtin(slog.LevelKey, slog.AnyValue(r.Level)); lvl != "" {
		sb.WriteString(h.paint(lvl+":", levelColour(r.Level)))
		sb.WriteByte(' ')
	}

	if msg := h.builtin(slog.MessageKey, slog.StringValue(r.Message)); msg != "" {
		sb.WriteString(h.paint(msg, color.FgHiWhite))
	}

	if len(attrs) > 0 {
		f := colorjson.NewFormatter()
		f.DisabledColor = !h.colour

		out, err := f.Marshal(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}

		sb.WriteByte(' ')
		sb.Write(out)
	}

	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.w, sb.String()); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

// attrs runs the record through the inner JSON handler and decodes the result.
func (h *ConsoleHandler) attrs(ctx context.Context, r slog.Record) (map[string]any, error) {
	h.mu.Lock()
	defer func() {
		h.buf.Reset()
		h.mu.Unlock()
	}()

	if err := h.inner.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("inner handler: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &attrs); err != nil {
		return nil, fmt.Errorf("decoding inner handler output: %w", err)
	}

	return attrs, nil
}

// builtin applies the user's ReplaceAttr to one of the built-in keys.
// An empty result means the attribute was removed.
func (h *ConsoleHandler) builtin(key string, v slog.Value) string {
	a := slog.Attr{Key: key, Value: v}
	if h.replace != nil {
		a = h.replace(nil, a)
	}

	if a.Equal(slog.Attr{}) {
		return ""
	}

	return a.Value.String()
}

func (h *ConsoleHandler) paint(s string, codes ...color.Code) string {
	if !h.colour {
		return s
	}

	return color.Sequence(codes...) + s + color.Sequence(color.Reset)
}

func levelColour(l slog.Level) color.Code {
	switch {
	case l < slog.LevelInfo:
		return color.FgWhite
	case l < slog.LevelWarn:
		return color.FgCyan
	case l < slog.LevelError:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// dropBuiltins removes time, level and message from the inner handler's output,
// they are rendered separately.
func dropBuiltins(next func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey) {
			return slog.Attr{}
		}

		if next == nil {
			return a
		}

		return next(groups, a)
	}
}
