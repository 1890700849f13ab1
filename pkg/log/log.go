// Package log provides the logger used throughout the emulation core.
// Components receive a Logger at construction time; there is no package
// level logger.
package log

import (
	"github.com/sirupsen/logrus"
)

// Logger is the interface components log through.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// New returns a logrus backed Logger with plain output.
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return l
}
