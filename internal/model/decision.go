package model

// ControlCommand is the directive produced by the decision engine.
type ControlCommand string

const (
	CommandStartIrrigation ControlCommand = "start_irrigation"
	CommandStopIrrigation  ControlCommand = "stop_irrigation"
	CommandNoAction        ControlCommand = "no_action"
)

// Decision is the outcome of one evaluation: a command, the reason it was
// chosen, and an alarm message when the alarm policy fired. Produced once
// per cycle and immediately consumed.
type Decision struct {
	Command ControlCommand `json:"control_command"`
	Reason  string         `json:"reason"`
	Alarm   string         `json:"alarm,omitempty"`
}
