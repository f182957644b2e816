package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

type Fields = logrus.Fields

// Options controls the process-wide logger. File is optional; an empty value
// keeps output on stderr only.
type Options struct {
	Level string
	File  string
}

// NewLogger configures the shared logger once and returns it. Later calls
// return the already configured instance.
func NewLogger(opts Options) *logrus.Logger {
	once.Do(func() {
		logger = build(opts)
	})
	return logger
}

// Logger returns the shared logger, building a stderr-only one on first use.
func Logger() *logrus.Logger {
	return NewLogger(Options{Level: "info"})
}

func build(opts Options) *logrus.Logger {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	l.SetFormatter(&formatter.Formatter{
		NoColors:        false,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
		},
	})

	writers := []io.Writer{os.Stderr}
	if opts.File != "" && os.Getenv("APP_ENV") != "test" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    50,
			MaxAge:     14,
			MaxBackups: 3,
		})
	}
	l.SetOutput(io.MultiWriter(writers...))
	l.SetReportCaller(true)
	return l
}

func Debug(fields Fields, msg string) {
	Logger().WithFields(orEmpty(fields)).Debug(msg)
}

func Info(fields Fields, msg string) {
	Logger().WithFields(orEmpty(fields)).Info(msg)
}

func Warn(fields Fields, msg string) {
	Logger().WithFields(orEmpty(fields)).Warn(msg)
}

func Error(fields Fields, msg string) {
	Logger().WithFields(orEmpty(fields)).Error(msg)
}

func Fatal(fields Fields, msg string) {
	Logger().WithFields(orEmpty(fields)).Fatal(msg)
}

// With returns an entry carrying fields, for callers that log repeatedly with
// the same context (one image, one worker).
func With(fields Fields) *logrus.Entry {
	return Logger().WithFields(orEmpty(fields))
}

func orEmpty(fields Fields) Fields {
	if fields == nil {
		return Fields{}
	}
	return fields
}
