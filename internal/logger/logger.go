package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger("info", "json", os.Stdout)

// Init настраивает глобальный логгер.
// level: debug|info|warn|error (неизвестное значение -> info),
// format: json|text (по умолчанию json).
func Init(level, format string) {
	InitWithOutput(level, format, os.Stdout)
}

// InitWithOutput то же, что Init, но с произвольным writer'ом (нужно тестам).
func InitWithOutput(level, format string, out io.Writer) {
	log = newLogger(level, format, out)
}

func newLogger(level, format string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
		l.Warnf("invalid log level %q, defaulting to info", level)
	}
	l.SetLevel(lvl)
	return l
}

// GetLogger возвращает глобальный логгер (до Init: info/json в stdout).
func GetLogger() *logrus.Logger {
	return log
}

func Debugf(format string, args ...any) { GetLogger().Debugf(format, args...) }
func Infof(format string, args ...any)  { GetLogger().Infof(format, args...) }
func Warnf(format string, args ...any)  { GetLogger().Warnf(format, args...) }
func Errorf(format string, args ...any) { GetLogger().Errorf(format, args...) }
func Fatalf(format string, args ...any) { GetLogger().Fatalf(format, args...) }

func WithField(key string, value any) *logrus.Entry {
	return GetLogger().WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

func WithError(err error) *logrus.Entry {
	return GetLogger().WithError(err)
}
