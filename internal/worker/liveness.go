package worker

import (
	"time"

	"github.com/sirupsen/logrus"
)

// checkin emits the periodic liveness log line.
func (w *Worker) checkin(now time.Time) {
	w.logger.WithFields(logrus.Fields{
		"uptime":    now.Sub(w.startedAt).Round(time.Second).String(),
		"ticks":     w.ticks,
		"skipped":   w.skipped,
		"sent":      w.sent,
		"connected": w.stream.Connected(),
	}).Info("agent alive")
}
