// Package dispatcher turns classified user commands into calls on the
// controller, alarm policy and scheduler, and renders a one-line reply.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/jiahewang/smart-irrigation/internal/alarm"
	"github.com/jiahewang/smart-irrigation/internal/device"
	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/model"
	"github.com/jiahewang/smart-irrigation/internal/scheduler"
)

const unknownReply = "sorry, I did not understand that. Try: start, stop, status, predict, or 'set threshold to 35'."

type Dispatcher struct {
	controller *device.Controller
	alarm      *alarm.Policy
	scheduler  *scheduler.Scheduler
}

func New(controller *device.Controller, policy *alarm.Policy, sched *scheduler.Scheduler) *Dispatcher {
	return &Dispatcher{controller: controller, alarm: policy, scheduler: sched}
}

// DispatchText classifies free-form text and executes the result.
func (d *Dispatcher) DispatchText(ctx context.Context, text string) string {
	return d.Dispatch(ctx, Classify(text))
}

// Dispatch executes one command and returns the reply to show the user.
// Execution errors are rendered into the reply, never returned; the
// interactive loop must survive any single bad command.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) string {
	logger.Debugf("dispatcher: intent=%s raw=%q", cmd.Intent, cmd.Raw)

	switch cmd.Intent {
	case IntentStartIrrigation:
		return d.startIrrigation(ctx, cmd.DurationMinutes)
	case IntentStopIrrigation:
		return d.stopIrrigation(ctx)
	case IntentQueryStatus:
		return d.renderStatus()
	case IntentSetThreshold:
		return d.setThreshold(cmd.Threshold)
	case IntentEnableAlarm:
		d.alarm.Enable()
		return fmt.Sprintf("alarm enabled, threshold %.1f%%", d.alarm.Threshold())
	case IntentDisableAlarm:
		d.alarm.Disable()
		return "alarm disabled"
	case IntentPredict:
		return d.predict(ctx)
	default:
		return unknownReply
	}
}

func (d *Dispatcher) startIrrigation(ctx context.Context, durationMinutes int) string {
	res, err := d.controller.Start(ctx, durationMinutes)
	if err != nil {
		return fmt.Sprintf("failed to start irrigation: %v", err)
	}
	if res.Status == device.StatusWarning {
		return "note: " + res.Message
	}
	view := d.controller.Status()
	return fmt.Sprintf("irrigation started for %d minutes (ticket %s)", view.PlannedDurationMinutes, res.Ticket)
}

func (d *Dispatcher) stopIrrigation(ctx context.Context) string {
	res, err := d.controller.Stop(ctx)
	if err != nil {
		return fmt.Sprintf("failed to stop irrigation: %v", err)
	}
	if res.Status == device.StatusWarning {
		return "note: " + res.Message
	}
	return "irrigation stopped"
}

func (d *Dispatcher) renderStatus() string {
	view := d.controller.Status()
	switch view.Status {
	case model.DeviceRunning:
		return fmt.Sprintf("irrigation running for %.1f of %d minutes, %.1f remaining",
			view.ElapsedMinutes, view.PlannedDurationMinutes, view.RemainingMinutes)
	case model.DeviceError:
		return "device is in error state; a stop command will reset it"
	default:
		return "irrigation is stopped"
	}
}

func (d *Dispatcher) setThreshold(value float64) string {
	if err := d.alarm.SetThreshold(value); err != nil {
		return fmt.Sprintf("cannot set threshold: %v (still %.1f%%)", err, d.alarm.Threshold())
	}
	return fmt.Sprintf("alarm threshold set to %.1f%%", value)
}

func (d *Dispatcher) predict(ctx context.Context) string {
	decision, err := d.scheduler.RunCycleNow(ctx)
	if err != nil {
		return fmt.Sprintf("check failed: %v", err)
	}
	reply := fmt.Sprintf("decision: %s (%s)", decision.Command, decision.Reason)
	if decision.Alarm != "" {
		reply += "\nALARM: " + decision.Alarm
	}
	return reply
}
