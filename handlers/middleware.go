package handlers

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs each API request with its status and duration.
func RequestLogger(logger *logrus.Logger) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()
		err := e.Next()

		fields := logrus.Fields{
			"method":   e.Request.Method,
			"path":     e.Request.URL.Path,
			"duration": time.Since(start).String(),
		}
		if sw, ok := e.Response.(interface{ Status() int }); ok {
			fields["status"] = sw.Status()
		}
		entry := logger.WithFields(fields)
		if err != nil {
			entry.WithError(err).Error("request failed")
			return err
		}
		entry.Debug("request")
		return nil
	}
}
