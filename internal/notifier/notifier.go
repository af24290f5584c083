// Package notifier simulates the demo's email alerts. Nothing is delivered:
// an alert is a structured log event, emitted asynchronously after a fixed
// delay, never blocking the operation that raised it and never retried.
package notifier

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// AlertType distinguishes transfer notifications from receipts (OTP codes,
// confirmations).
type AlertType string

const (
	AlertTransfer AlertType = "transfer"
	AlertReceipt  AlertType = "receipt"
)

// Notifier is what usecases depend on; tests substitute a recording fake.
type Notifier interface {
	Send(email string, alert AlertType, details map[string]interface{})
}

// EmailNotifier logs simulated email alerts.
type EmailNotifier struct {
	logger *zap.Logger
	delay  time.Duration
	wg     sync.WaitGroup
}

func NewEmailNotifier(logger *zap.Logger, delay time.Duration) *EmailNotifier {
	return &EmailNotifier{logger: logger, delay: delay}
}

// Send queues one alert. The "delivery" is a second log line after the
// configured delay, mirroring the send/delivered pair of the simulation.
func (n *EmailNotifier) Send(email string, alert AlertType, details map[string]interface{}) {
	n.logger.Info("email alert sent",
		zap.String("recipient", email),
		zap.String("alert_type", string(alert)),
		zap.Any("details", details))

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		time.Sleep(n.delay)
		n.logger.Info("email delivered",
			zap.String("recipient", email),
			zap.String("alert_type", string(alert)))
	}()
}

// Flush waits for in-flight deliveries; used on shutdown and in tests.
func (n *EmailNotifier) Flush() {
	n.wg.Wait()
}
