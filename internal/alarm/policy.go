// Package alarm raises threshold-based low-moisture alerts.
package alarm

import (
	"fmt"
	"sync"

	"github.com/jiahewang/smart-irrigation/internal/logger"
)

// Notifier fans a triggered alarm out to notification channels. The default
// implementation only logs; mail/SMS/push integrations plug in here.
type Notifier interface {
	Notify(message string)
}

// LogNotifier writes triggered alarms to the log at error level.
type LogNotifier struct{}

func (LogNotifier) Notify(message string) {
	logger.Errorf("ALARM TRIGGERED: %s", message)
}

// Policy evaluates soil moisture against a mutable threshold. Safe for
// concurrent use by the scheduled loop and interactive commands.
type Policy struct {
	mu        sync.Mutex
	enabled   bool
	threshold float64
	notifier  Notifier
}

func NewPolicy(threshold float64, enabled bool, notifier Notifier) *Policy {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Policy{enabled: enabled, threshold: threshold, notifier: notifier}
}

// Check reports whether soilMoisture is below the current threshold,
// regardless of whether alarms are enabled.
func (p *Policy) Check(soilMoisture float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return soilMoisture < p.threshold
}

// Handle evaluates the alarm rule and, when enabled and triggered, notifies
// and returns the alarm message. Returns "" otherwise.
func (p *Policy) Handle(soilMoisture float64) string {
	p.mu.Lock()
	enabled, threshold := p.enabled, p.threshold
	p.mu.Unlock()

	if !enabled {
		logger.Debugf("alarm: disabled, skipping evaluation")
		return ""
	}
	if soilMoisture >= threshold {
		logger.Debugf("alarm: moisture %.1f%% above threshold %.1f%%, no alarm", soilMoisture, threshold)
		return ""
	}

	message := fmt.Sprintf("low soil moisture: current %.1f%%, threshold %.1f%%", soilMoisture, threshold)
	p.notifier.Notify(message)
	return message
}

// SetThreshold accepts only values in [0,100]. Out-of-range values are
// rejected with an error and the previous threshold is kept.
func (p *Policy) SetThreshold(value float64) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("alarm threshold %.1f out of range [0,100]", value)
	}
	p.mu.Lock()
	prev := p.threshold
	p.threshold = value
	p.mu.Unlock()
	logger.Infof("alarm: threshold changed from %.1f%% to %.1f%%", prev, value)
	return nil
}

func (p *Policy) Threshold() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.threshold
}

func (p *Policy) Enable() {
	p.mu.Lock()
	p.enabled = true
	p.mu.Unlock()
	logger.Infof("alarm: enabled")
}

func (p *Policy) Disable() {
	p.mu.Lock()
	p.enabled = false
	p.mu.Unlock()
	logger.Infof("alarm: disabled")
}

func (p *Policy) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}
