// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package badger

import (
	"fmt"
	"log/slog"
	"strings"
)

// slogger adapts a slog logger to Badger's logger interface.
type slogger struct {
	logger *slog.Logger
}

func (l slogger) format(format string, args ...interface{}) string {
	s := fmt.Sprintf(format, args...)
	return strings.TrimRight(s, "\n")
}

func (l slogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(l.format(format, args...))
}

func (l slogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(l.format(format, args...))
}

func (l slogger) Infof(format string, args ...interface{}) {
	l.logger.Info(l.format(format, args...))
}

func (l slogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(l.format(format, args...))
}
