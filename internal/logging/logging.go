// Package logging configures the structured JSON logger shared by the service.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// locationFormatter renders entry timestamps in a fixed location before delegating.
type locationFormatter struct {
	loc   *time.Location
	inner logrus.Formatter
}

func (f *locationFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.inner.Format(e)
}

// New returns a logger writing one JSON object per line to w.
// Keys are ts, level and msg; unknown levels fall back to info.
func New(w io.Writer, loc *time.Location, level string) *logrus.Logger {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&locationFormatter{
		loc: loc,
		inner: &logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Discard returns a logger that drops everything; handy for tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
