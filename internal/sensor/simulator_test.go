package sensor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiahewang/smart-irrigation/internal/model"
	"github.com/jiahewang/smart-irrigation/internal/sensor"
)

func TestSimulatorRotatesSensors(t *testing.T) {
	sim := sensor.NewSimulatorSeeded([]string{"a", "b"}, 1)

	r1, err := sim.Read(context.Background())
	require.NoError(t, err)
	r2, err := sim.Read(context.Background())
	require.NoError(t, err)
	r3, err := sim.Read(context.Background())
	require.NoError(t, err)

	require.Equal(t, "a", r1.SensorID)
	require.Equal(t, "b", r2.SensorID)
	require.Equal(t, "a", r3.SensorID)
}

func TestSimulatorReadingsStayInRange(t *testing.T) {
	sim := sensor.NewSimulatorSeeded([]string{"a"}, 7)

	for i := 0; i < 500; i++ {
		r, err := sim.Read(context.Background())
		require.NoError(t, err)
		require.GreaterOrEqual(t, r.SoilMoisture, 10.0)
		require.LessOrEqual(t, r.SoilMoisture, 90.0)
		require.GreaterOrEqual(t, r.Temperature, 5.0)
		require.LessOrEqual(t, r.Temperature, 35.0)
		require.GreaterOrEqual(t, r.LightIntensity, 100.0)
		require.LessOrEqual(t, r.LightIntensity, 900.0)
		require.GreaterOrEqual(t, r.Rainfall, 0.0)
		require.LessOrEqual(t, r.Rainfall, 5.0)
		require.False(t, r.Timestamp.IsZero())
	}
}

func TestSimulatorDriftsBetweenReads(t *testing.T) {
	sim := sensor.NewSimulatorSeeded([]string{"a"}, 3)

	r1, err := sim.Read(context.Background())
	require.NoError(t, err)
	r2, err := sim.Read(context.Background())
	require.NoError(t, err)

	// consecutive reads move by small steps, not fresh random draws
	require.InDelta(t, r1.SoilMoisture, r2.SoilMoisture, 8.0)
	require.InDelta(t, r1.Temperature, r2.Temperature, 2.0)
}

func TestSimulatorWithoutSensors(t *testing.T) {
	sim := sensor.NewSimulatorSeeded(nil, 1)

	_, err := sim.Read(context.Background())
	var sensorErr *model.SensorError
	require.ErrorAs(t, err, &sensorErr)
}
