/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package trace is the leveled logger used throughout the runtime. The
// call-site shape (trace.Trace, trace.Error, trace.Init) matches the
// teacher's hand-rolled jacobin/log package; underneath, it's a thin
// wrapper over logrus rather than a home-grown level/format scheme.
package trace

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once   sync.Once
	logger = logrus.New()
)

// Init configures the shared logger. Safe to call multiple times; only the
// first call takes effect, matching the teacher's one-shot log.Init().
func Init() {
	once.Do(func() {
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			DisableColors:   true,
		})
		logger.SetLevel(logrus.InfoLevel)
	})
}

// SetVerbose raises the logger to trace level, so that Trace messages are
// emitted, or lowers it back to info level.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.TraceLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// Trace logs a message at trace level, which is suppressed unless
// SetVerbose(true) has been called. The classpath lookup reports each class
// file it loads through here.
func Trace(msg string) {
	logger.Trace(msg)
}

// Error logs a message at error level. It does not itself construct an
// error value — callers still return/wrap an error with pkg/errors; this
// only records the diagnostic.
func Error(msg string) {
	logger.Error(msg)
}

// Warning logs a message at warning level.
func Warning(msg string) {
	logger.Warn(msg)
}
