package dispatcher

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is a recognized user request category.
type Intent string

const (
	IntentStartIrrigation Intent = "start_irrigation"
	IntentStopIrrigation  Intent = "stop_irrigation"
	IntentQueryStatus     Intent = "query_status"
	IntentSetThreshold    Intent = "set_threshold"
	IntentEnableAlarm     Intent = "enable_alarm"
	IntentDisableAlarm    Intent = "disable_alarm"
	IntentPredict         Intent = "predict"
	IntentUnknown         Intent = "unknown"
)

// Command is a classified request plus any extracted parameters.
type Command struct {
	Intent          Intent
	DurationMinutes int     // 0 when unspecified
	Threshold       float64 // valid only for IntentSetThreshold
	Raw             string
}

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Classify maps free-form text to a Command with plain keyword matching.
// Order matters: "stop" is checked before "start" so "stop starting the
// pump" does not start anything, and threshold before status so "set
// threshold" is not swallowed by a bare "threshold" status query.
func Classify(text string) Command {
	cmd := Command{Intent: IntentUnknown, Raw: text}
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return cmd
	}

	switch {
	case containsAny(lower, "stop", "turn off", "shut off", "halt"):
		cmd.Intent = IntentStopIrrigation
	case containsAny(lower, "threshold", "set the limit"):
		cmd.Intent = IntentSetThreshold
		if v, ok := firstNumber(lower); ok {
			cmd.Threshold = v
		} else {
			cmd.Intent = IntentUnknown
		}
	case containsAny(lower, "start", "turn on", "water", "irrigate"):
		cmd.Intent = IntentStartIrrigation
		if v, ok := firstNumber(lower); ok && v > 0 {
			cmd.DurationMinutes = int(v)
		}
	case containsAny(lower, "disable alarm", "alarm off", "mute"):
		cmd.Intent = IntentDisableAlarm
	case containsAny(lower, "enable alarm", "alarm on", "unmute"):
		cmd.Intent = IntentEnableAlarm
	case containsAny(lower, "predict", "forecast", "check now", "will it need"):
		cmd.Intent = IntentPredict
	case containsAny(lower, "status", "state", "running", "how is", "report"):
		cmd.Intent = IntentQueryStatus
	}
	return cmd
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
