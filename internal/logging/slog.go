// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/commitverify/pkg/errors"
)

const messageKey = "message"

// SlogConfig configures [NewSlogHandler].
type SlogConfig struct {
	DefaultLevel slog.Level
	Modules      map[string]slog.Level
}

// ParseLevels parses a level specification such as "error;mpc=debug". An
// entry without a module sets the default level.
func ParseLevels(s string) (SlogConfig, error) {
	cfg := SlogConfig{DefaultLevel: slog.LevelError, Modules: map[string]slog.Level{}}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		module, level, ok := strings.Cut(part, "=")
		if !ok {
			module, level = "", module
		}

		var l slog.Level
		err := l.UnmarshalText([]byte(level))
		if err != nil {
			return cfg, errors.BadRequest.WithFormat("invalid log level %q: %w", level, err)
		}

		if module == "" || module == "*" {
			cfg.DefaultLevel = l
		} else {
			cfg.Modules[strings.ToLower(module)] = l
		}
	}
	return cfg, nil
}

// NewSlogHandler returns a JSON handler that writes to w and filters records
// by module. Wrap w with [ConsoleSlogWriter] for human-readable output.
func NewSlogHandler(cfg SlogConfig, w io.Writer) (slog.Handler, error) {
	lowestLevel := cfg.DefaultLevel
	for _, l := range cfg.Modules {
		if l < lowestLevel {
			lowestLevel = l
		}
	}

	opts := &slog.HandlerOptions{
		Level: lowestLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 || a.Key != slog.MessageKey {
				return a
			}
			if a.Value.Kind() == slog.KindString {
				return slog.Any(messageKey, a.Value)
			}
			return slog.String(messageKey, fmt.Sprint(a.Value.Any()))
		},
	}

	modules := make(map[string]slog.Level, len(cfg.Modules))
	for m, l := range cfg.Modules {
		modules[strings.ToLower(m)] = l
	}

	return &logHandler{
		handler:      slog.NewJSONHandler(w, opts),
		defaultLevel: cfg.DefaultLevel,
		lowestLevel:  lowestLevel,
		modules:      modules,
	}, nil
}

// ConsoleSlogWriter renders JSON log lines with zerolog's console writer.
func ConsoleSlogWriter(w io.Writer, color bool) io.Writer {
	return &zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "????"
		},
		FormatMessage: func(i interface{}) string {
			s, ok := i.(string)
			if ok {
				return s
			}
			return fmt.Sprint(i)
		},
	}
}

// CheckFormat fails with [errors.BadRequest] unless format is "", "text",
// "plain" or "json".
func CheckFormat(format string) error {
	_, err := isPlain(format)
	return err
}

func isPlain(format string) (bool, error) {
	switch strings.ToLower(format) {
	case "", "text", "plain":
		return true, nil
	case "json":
		return false, nil
	}
	return false, errors.BadRequest.WithFormat("log format %q is not supported", format)
}

// New returns a logger for the given format ("text", "plain" or "json") and
// level specification.
func New(w io.Writer, format, levels string, color bool) (*slog.Logger, error) {
	cfg, err := ParseLevels(levels)
	if err != nil {
		return nil, err
	}

	plain, err := isPlain(format)
	if err != nil {
		return nil, err
	}
	if plain {
		w = ConsoleSlogWriter(w, color)
	}

	h, err := NewSlogHandler(cfg, w)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

type logHandler struct {
	handler      slog.Handler
	defaultLevel slog.Level
	lowestLevel  slog.Level
	modules      map[string]slog.Level
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	i := *h
	i.handler = h.handler.WithAttrs(attrs)
	i.defaultLevel = h.levelFor2(h.defaultLevel, attrs)
	return &i
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	i := *h
	i.handler = h.handler.WithGroup(name)
	return &i
}

func (h *logHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.lowestLevel {
		return false
	}
	return h.handler.Enabled(ctx, level)
}

func (h *logHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := Attrs(ctx)
	level := h.levelFor(h.levelFor2(h.defaultLevel, attrs), record.Attrs)
	if record.Level < level {
		return nil
	}
	if len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}
	return h.handler.Handle(ctx, record)
}

func (h *logHandler) levelFor2(level slog.Level, attrs []slog.Attr) slog.Level {
	if len(attrs) == 0 {
		return level
	}
	return h.levelFor(level, func(fn func(slog.Attr) bool) {
		for _, a := range attrs {
			if !fn(a) {
				return
			}
		}
	})
}

func (h *logHandler) levelFor(level slog.Level, fn func(func(slog.Attr) bool)) slog.Level {
	fn(func(a slog.Attr) bool {
		if a.Key != "module" {
			return true
		}
		if l, ok := h.modules[strings.ToLower(a.Value.String())]; ok {
			level = l
		}
		return false
	})
	return level
}
