package launcher

import (
	"io"
	"time"

	"github.com/evalphobia/logrus_sentry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// newLogger builds the process logger. Errors and worse are also sent to
// Sentry when a DSN is configured.
func newLogger(cfg LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = out

	if cfg.Verbosity < int(logrus.PanicLevel) || cfg.Verbosity > int(logrus.TraceLevel) {
		return nil, errors.Errorf("invalid log verbosity %d", cfg.Verbosity)
	}
	log.SetLevel(logrus.Level(cfg.Verbosity))

	switch cfg.Format {
	case "", "text":
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		log.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return nil, errors.Wrap(err, "sentry hook")
		}
		hook.Timeout = 5 * time.Second
		hook.StacktraceConfiguration.Enable = true
		log.Hooks.Add(hook)
	}
	return log, nil
}
