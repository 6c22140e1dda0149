package logging

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// New builds the process logger. JSON output is used outside of dev so log
// shippers can index the fields.
func New(level string, json bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if json {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

// WithEntry stores a request scoped entry in ctx.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the request scoped entry, or a bare entry on the
// standard logger when none was attached.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok && entry != nil {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
