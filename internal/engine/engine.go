// Package engine turns moisture readings into irrigation directives.
package engine

import (
	"fmt"

	"github.com/jiahewang/smart-irrigation/internal/alarm"
	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/model"
)

// Engine applies the decision policy. It holds no mutable state of its own:
// identical inputs always yield identical decisions, whether invoked from
// the scheduled loop or an interactive command.
type Engine struct {
	alarm *alarm.Policy
}

func NewEngine(alarmPolicy *alarm.Policy) *Engine {
	return &Engine{alarm: alarmPolicy}
}

// Decide evaluates, in order: current moisture below threshold, then
// predicted moisture below threshold, then no action. The current value
// always wins over the prediction because it reflects ground truth. The
// alarm is evaluated on the current value afterwards, independent of the
// command, and attached when it fires.
func (e *Engine) Decide(current float64, predicted *float64, threshold float64) model.Decision {
	decision := model.Decision{
		Command: model.CommandNoAction,
		Reason:  "moisture sufficient",
	}

	switch {
	case current < threshold:
		decision.Command = model.CommandStartIrrigation
		decision.Reason = fmt.Sprintf("current moisture %.1f%% below threshold %.1f%%", current, threshold)
	case predicted != nil && *predicted < threshold:
		decision.Command = model.CommandStartIrrigation
		decision.Reason = fmt.Sprintf("predicted moisture %.1f%% below threshold %.1f%%", *predicted, threshold)
	}

	if decision.Command == model.CommandStartIrrigation {
		logger.Infof("engine: start irrigation: %s", decision.Reason)
	} else {
		logger.Debugf("engine: no action: %s", decision.Reason)
	}

	if e.alarm != nil {
		decision.Alarm = e.alarm.Handle(current)
	}
	return decision
}
