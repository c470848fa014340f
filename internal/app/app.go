package app

import (
	"context"
	"dronetracker/internal/config"
	"dronetracker/internal/drone"
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"dronetracker/internal/repository/sqlite"
	"dronetracker/internal/route"
	"dronetracker/internal/service"
	"dronetracker/internal/service/ai"
	"dronetracker/internal/service/camera"
	"dronetracker/internal/service/storage"
	"dronetracker/internal/service/tracking"
	"dronetracker/internal/service/websocket"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

const shutdownTimeout = 5 * time.Second

// App owns every long-lived component of one tracking session.
type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	flights  *sqlite.FlightRepository
	ticks    *sqlite.TickRepository
	detector ai.Detector
	drone    *drone.Tello
	source   *camera.Source
	window   *camera.Window
	hub      *websocket.HubService
}

// NewApp loads the configuration and brings up the detector, the drone link
// and the video stream. Any failure here is fatal; nothing has taken off yet.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &App{config: cfg, logger: log}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.config

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open flight log: %w", err)
	}
	a.db = db
	a.flights = sqlite.NewFlightRepository(db)
	a.ticks = sqlite.NewTickRepository(db)

	detector, err := ai.NewDetector(cfg, a.logger)
	if err != nil {
		return err
	}
	a.detector = detector

	a.drone, err = drone.NewTello(drone.Options{
		Addr:      cfg.DroneAddr,
		LocalAddr: cfg.DroneLocalAddr,
		VideoPort: cfg.VideoPort,
		RelayAddr: cfg.VideoRelayAddr,
		Timeout:   cfg.CommandTimeout,
	}, a.logger)
	if err != nil {
		return err
	}
	if err := a.drone.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to drone: %w", err)
	}
	if err := a.drone.Send(ctx, model.ActuationCommand{}); err != nil {
		a.logger.Warning("Failed to zero velocities: %v", err)
	}

	// The relay must be running before the capture opens its URL.
	if err := a.drone.StreamOn(ctx); err != nil {
		return fmt.Errorf("failed to start video stream: %w", err)
	}

	source, err := camera.Open(cfg.VideoURL, cfg.FrameWidth, cfg.FrameHeight, a.logger)
	if err != nil {
		return err
	}
	a.source = source

	if cfg.ShowWindow {
		a.window = camera.NewWindow("dronetracker")
	}
	a.hub = websocket.NewHubService(a.logger)
	return nil
}

// Run flies one tracking session: it records the flight, serves the HTTP
// API and runs the control loop until a stop signal or a fault.
func (a *App) Run(ctx context.Context) error {
	cfg := a.config

	battery, err := a.drone.Battery(ctx)
	if err != nil {
		a.logger.Warning("Battery query failed: %v", err)
		battery = -1
	} else {
		a.logger.Info("Battery: %d%%", battery)
	}

	flight := &model.Flight{
		UUID:      uuid.NewString(),
		Backend:   cfg.Backend,
		Battery:   battery,
		StartedAt: time.Now(),
	}
	if _, err := a.flights.Insert(flight); err != nil {
		return fmt.Errorf("failed to record flight: %w", err)
	}
	a.logger.Info("Flight %d (%s) using %s detector at %dx%d", flight.ID, flight.UUID, cfg.Backend, cfg.FrameWidth, cfg.FrameHeight)

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	stopCtx, cancel := context.WithCancel(stopCtx)
	defer cancel()

	bgCtx, bgCancel := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup

	recorder := storage.NewRecorder(cfg, a.logger, a.ticks, flight.ID)
	wg.Add(2)
	go func() {
		defer wg.Done()
		recorder.Run(bgCtx)
	}()
	go func() {
		defer wg.Done()
		a.hub.Run(bgCtx)
	}()

	var server *http.Server
	if cfg.Port > 0 {
		server = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: route.SetupRoutes(a.hub, cancel, a.logger, a.flights, a.ticks, cfg.StaticDir),
		}
		go func() {
			a.logger.Info("HTTP API listening on http://localhost:%d", cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("HTTP server failed: %v", err)
			}
		}()
	}

	a.logger.Info("PID gains kp=%.2f kd=%.2f ki=%.2f, integral %s", cfg.Kp, cfg.Kd, cfg.Ki, cfg.PIDIntegral)
	selector, err := tracking.NewSelector(cfg.Backend, cfg.Confidence)
	if err != nil {
		bgCancel()
		wg.Wait()
		return err
	}

	loop := service.NewControlLoop(service.LoopConfig{
		Source:   a.source,
		Detector: a.detector,
		Selector: selector,
		Controller: tracking.PID{
			Gains:    tracking.Gains{Kp: cfg.Kp, Kd: cfg.Kd, Ki: cfg.Ki},
			Integral: cfg.PIDIntegral == config.IntegralOn,
		},
		Drone:            a.drone,
		MaxFrameFailures: cfg.MaxFrameFailures,
	}, a.logger)

	loop.AddObserver(service.ObserverFunc(func(_ model.Frame, result service.TickResult) {
		recorder.Add(result.Record)
	}))
	loop.AddObserver(newTelemetryPublisher(a.hub, flight.UUID, loop.Phase, a.logger))
	if a.window != nil {
		loop.AddObserver(newWindowObserver(a.window, cancel, a.logger))
	}

	runErr := loop.Run(stopCtx)

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Warning("HTTP server shutdown: %v", err)
		}
		shutdownCancel()
	}
	bgCancel()
	wg.Wait()

	if err := a.flights.Finish(flight.ID, time.Now(), recorder.Total()); err != nil {
		a.logger.Error("Failed to finish flight %d: %v", flight.ID, err)
	}
	a.logger.Info("Flight %d finished after %d ticks", flight.ID, recorder.Total())
	return runErr
}

// Close releases every component that was brought up, in reverse order.
func (a *App) Close() {
	if a.window != nil {
		a.window.Close()
	}
	if a.source != nil {
		a.source.Close()
	}
	if a.drone != nil {
		if err := a.drone.StreamOff(context.Background()); err != nil {
			a.logger.Warning("streamoff failed: %v", err)
		}
		a.drone.Close()
	}
	if a.detector != nil {
		a.detector.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	a.logger.Close()
}
