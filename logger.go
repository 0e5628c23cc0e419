package opb

import (
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the codec's log sink. The original C library calls a single
// global function pointer on every error; here the logger is session
// configuration instead, with a package default so callers that don't
// care can omit it.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type charmLogger struct {
	l *charmlog.Logger
}

func (c *charmLogger) Warnf(format string, args ...any)  { c.l.Warnf(format, args...) }
func (c *charmLogger) Errorf(format string, args ...any) { c.l.Errorf(format, args...) }

var (
	defaultLoggerOnce sync.Once
	defaultLoggerInst Logger
)

func defaultLogger() Logger {
	defaultLoggerOnce.Do(func() {
		defaultLoggerInst = &charmLogger{l: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Prefix:          "opb",
			ReportTimestamp: true,
		})}
	})
	return defaultLoggerInst
}

func resolveLogger(l Logger) Logger {
	if l != nil {
		return l
	}
	return defaultLogger()
}
