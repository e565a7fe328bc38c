package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger from the log section. When File is set
// the logger writes there instead of w; the returned closer releases it.
func NewLogger(c LogConfig, w io.Writer) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level := c.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	log.SetLevel(lvl)

	switch c.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q (text, json)", c.Format)
	}

	var closer io.Closer = nopCloser{}
	if c.File != "" {
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f
	}
	log.SetOutput(w)
	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
