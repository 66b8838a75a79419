// Package sensor supplies soil/environment readings to the control loop,
// either from a stateful simulator or from probes publishing over MQTT.
package sensor

import (
	"context"

	"github.com/jiahewang/smart-irrigation/internal/model"
)

// Source produces one reading per call. Implementations return a
// *model.SensorError when no usable reading is available.
type Source interface {
	Read(ctx context.Context) (model.SensorReading, error)
}
