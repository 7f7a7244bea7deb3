package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	std     = newLogger(os.Stderr)
	logFile *os.File
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// InitLogger sends output to stderr and, when filename is set, appends it to
// that file as well. Stdout is left to the job's own output. level is a logrus
// level name; empty means info.
func InitLogger(filename string, level string) error {
	out := io.Writer(os.Stderr)
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		logFile = f
		out = io.MultiWriter(os.Stderr, f)
	}
	l := newLogger(out)
	if level != "" {
		lvl, err := logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			return err
		}
		l.SetLevel(lvl)
	}
	std = l
	return nil
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) { std.SetOutput(w) }

// Close releases the log file opened by InitLogger and falls back to stderr.
func Close() {
	if logFile != nil {
		std.SetOutput(os.Stderr)
		logFile.Close()
		logFile = nil
	}
}

// WithFields returns an entry carrying structured job fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return std.WithFields(fields)
}

func Debugf(format string, v ...interface{}) { std.Debugf(format, v...) }

func Info(v ...interface{}) { std.Info(v...) }

func Infof(format string, v ...interface{}) { std.Infof(format, v...) }

func Warn(v ...interface{}) { std.Warn(v...) }

func Warnf(format string, v ...interface{}) { std.Warnf(format, v...) }

func Error(v ...interface{}) { std.Error(v...) }

func Errorf(format string, v ...interface{}) { std.Errorf(format, v...) }
