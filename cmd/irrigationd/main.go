// irrigationd runs the irrigation decision and device-control loop: it reads
// soil probes, predicts near-term moisture, decides, and drives the valve,
// while exposing health and Prometheus metrics over HTTP.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/spf13/cobra"

	"github.com/jiahewang/smart-irrigation/internal/alarm"
	"github.com/jiahewang/smart-irrigation/internal/config"
	"github.com/jiahewang/smart-irrigation/internal/device"
	"github.com/jiahewang/smart-irrigation/internal/dispatcher"
	"github.com/jiahewang/smart-irrigation/internal/engine"
	"github.com/jiahewang/smart-irrigation/internal/logger"
	"github.com/jiahewang/smart-irrigation/internal/metrics"
	"github.com/jiahewang/smart-irrigation/internal/model"
	"github.com/jiahewang/smart-irrigation/internal/predictor"
	"github.com/jiahewang/smart-irrigation/internal/scheduler"
	"github.com/jiahewang/smart-irrigation/internal/sensor"
	"github.com/jiahewang/smart-irrigation/internal/sink"
	"github.com/jiahewang/smart-irrigation/internal/weather"
	"github.com/jiahewang/smart-irrigation/pkg/mqttclient"
)

func main() {
	var (
		configPath  string
		interactive bool
	)

	root := &cobra.Command{
		Use:           "irrigationd",
		Short:         "smart irrigation decision and device-control daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(configPath, interactive)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config (optional)")
	root.Flags().BoolVarP(&interactive, "interactive", "i", false, "accept commands on stdin")

	if err := root.Execute(); err != nil {
		logger.Errorf("irrigationd: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(configPath string, interactive bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()

	var broker mqtt.Client
	if cfg.NeedsMQTT() {
		broker, err = mqttclient.NewConn(ctx, &mqttclient.Config{
			Host:     cfg.MQTT.Host,
			Port:     cfg.MQTT.Port,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			ClientID: cfg.MQTT.ClientID,
		})
		if err != nil {
			return err
		}
	}

	var sinks sink.Multi
	var influxSink *sink.InfluxSink
	if cfg.Influx.URL != "" {
		influxClient := influxdb2.NewClient(cfg.Influx.URL, cfg.Influx.Token)
		defer influxClient.Close()
		influxSink = sink.NewInfluxSink(influxClient.WriteAPI(cfg.Influx.Org, cfg.Influx.Bucket))
		defer influxSink.Flush()
		sinks = append(sinks, influxSink)
	}
	if broker != nil && strings.TrimSpace(cfg.EventTopic) != "" {
		sinks = append(sinks, sink.NewMQTTSink(broker, cfg.EventTopic))
	}
	var events sink.EventSink = sinks
	if len(sinks) == 0 {
		events = sink.Nop{}
	}

	deviceID := "device_001"
	if len(cfg.Sensor.IDs) > 0 {
		deviceID = cfg.Sensor.IDs[0]
	}
	var actuator device.Actuator = device.SimulatedActuator{}
	if cfg.Actuator.Kind == "mqtt" {
		topic := strings.ReplaceAll(cfg.Actuator.Topic, "{sensor}", deviceID)
		actuator = device.NewMQTTActuator(mqttclient.NewPublisher(broker, topic), deviceID)
	}

	policy := alarm.NewPolicy(cfg.Alarm.SoilMoistureThreshold, cfg.Alarm.Enabled, nil)
	controller := device.NewController(actuator, events, m, cfg.Irrigation.DefaultDurationMinutes)

	var readings sensor.Source
	if cfg.Sensor.Source == "mqtt" {
		mqttReadings := sensor.NewMQTTSource(broker, cfg.Sensor.Topic,
			time.Duration(cfg.Sensor.StaleAfterMinutes)*time.Minute)
		go mqttReadings.Start(ctx)
		readings = mqttReadings
	} else {
		readings = sensor.NewSimulator(cfg.Sensor.IDs)
	}

	var conditions weather.Source
	if cfg.Weather.APIKey != "" {
		conditions = weather.NewBreakerSource(weather.NewOpenWeatherClient(
			cfg.Weather.APIKey, cfg.Weather.BaseURL,
			time.Duration(cfg.Weather.TimeoutMS)*time.Millisecond))
	} else {
		logger.Warnf("irrigationd: no weather api key, running without weather data")
	}

	sched := scheduler.New(scheduler.Options{
		Interval:   time.Duration(cfg.Irrigation.CollectionIntervalMinutes) * time.Minute,
		Threshold:  cfg.Irrigation.SoilMoistureThreshold,
		Location:   cfg.Weather.Location,
		Sensors:    readings,
		Weather:    conditions,
		Predictor:  predictor.NewHeuristic(),
		Engine:     engine.NewEngine(policy),
		Controller: controller,
		Events:     events,
		Metrics:    m,
	})

	srv := serveHTTP(cfg.HTTPPort, m, influxSink, broker)
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if interactive {
		go runPrompt(ctx, cancel, dispatcher.New(controller, policy, sched))
	}

	sched.Run(ctx)

	// leave the valve closed on the way out
	if controller.Status().Status != model.DeviceStopped {
		stopCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if _, err := controller.Stop(stopCtx); err != nil {
			logger.Errorf("irrigationd: stop on shutdown: %v", err)
		}
	}
	logger.Infof("irrigationd: shutdown complete")
	return nil
}

func serveHTTP(port int, m *metrics.Metrics, influxSink *sink.InfluxSink, broker mqtt.Client) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if broker != nil && !broker.IsConnected() {
			http.Error(w, "mqtt disconnected", http.StatusServiceUnavailable)
			return
		}
		if influxSink != nil && influxSink.LastErrorAge() < 30*time.Second {
			http.Error(w, "event sink degraded", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		logger.Infof("irrigationd: http listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("irrigationd: http server: %v", err)
		}
	}()
	return srv
}

// runPrompt reads commands from stdin until EOF or quit.
func runPrompt(ctx context.Context, cancel context.CancelFunc, disp *dispatcher.Dispatcher) {
	fmt.Println("type a command (start, stop, status, predict, set threshold to N, quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			cancel()
			return
		}
		fmt.Println(disp.DispatchText(ctx, line))
	}
}
