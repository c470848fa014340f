package drone

import (
	"context"
	"dronetracker/internal/logger"
	"dronetracker/internal/model"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/SMerrony/tello"
)

var (
	// ErrNotConnected is returned when a command is issued before Connect.
	ErrNotConnected = errors.New("drone not connected")
	// ErrTimeout is returned when the drone state does not confirm a command in time.
	ErrTimeout = errors.New("timeout waiting for drone state")
)

const (
	// stickScale converts a [-100, 100] velocity to the driver's int16 stick range.
	stickScale   = 327
	pollInterval = 50 * time.Millisecond
)

// Link is the part of the tello driver the adapter drives.
type Link interface {
	ControlConnect(udpAddr string, droneUDPPort int, localUDPPort int) error
	ControlConnected() bool
	ControlDisconnect()
	TakeOff()
	Land()
	UpdateSticks(sm tello.StickMessage)
	GetFlightData() tello.FlightData
	VideoConnect(udpAddr string, droneUDPPort int) (<-chan []byte, error)
	VideoDisconnect()
	StartVideo()
}

// Tello adapts the tello driver to the control loop. Commands are
// confirmed by the flight state the drone streams back, never by replies.
type Tello struct {
	mu        sync.Mutex
	link      Link
	host      string
	port      int
	localPort int
	videoPort int
	relayAddr string
	timeout   time.Duration
	connected bool
	relay     *videoRelay
	logger    *logger.Logger
}

// Options locates the drone and the local video relay.
type Options struct {
	Addr      string // drone control endpoint, host:port
	LocalAddr string // local control bind, [host]:port
	VideoPort int    // local port the drone streams H.264 to
	RelayAddr string // where raw H.264 is forwarded for the frame source
	Timeout   time.Duration
}

// NewTello creates an adapter over a fresh tello driver. Nothing is sent until Connect.
func NewTello(opts Options, logger *logger.Logger) (*Tello, error) {
	return newTello(&tello.Tello{}, opts, logger)
}

func newTello(link Link, opts Options, logger *logger.Logger) (*Tello, error) {
	host, port, err := splitHostPort(opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid drone address %q: %w", opts.Addr, err)
	}
	_, localPort, err := splitHostPort(opts.LocalAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid local address %q: %w", opts.LocalAddr, err)
	}
	return &Tello{
		link:      link,
		host:      host,
		port:      port,
		localPort: localPort,
		videoPort: opts.VideoPort,
		relayAddr: opts.RelayAddr,
		timeout:   opts.Timeout,
		logger:    logger,
	}, nil
}

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

// Connect opens the control connection.
func (t *Tello) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.link.ControlConnect(t.host, t.port, t.localPort); err != nil {
		return fmt.Errorf("failed to connect to drone at %s:%d: %w", t.host, t.port, err)
	}

	t.mu.Lock()
	t.connected = true
	t.mu.Unlock()
	t.logger.Info("Connected to drone at %s:%d", t.host, t.port)
	return nil
}

// Close stops the video relay and the control connection.
func (t *Tello) Close() error {
	t.stopVideo()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connected && t.link.ControlConnected() {
		t.link.ControlDisconnect()
	}
	t.connected = false
	return nil
}

// Battery waits for the first flight data report and returns the battery percentage.
func (t *Tello) Battery(ctx context.Context) (int, error) {
	if !t.isConnected() {
		return 0, ErrNotConnected
	}
	fd, err := t.waitFor(ctx, "battery report", func(fd tello.FlightData) bool {
		return fd.BatteryPercentage > 0
	})
	if err != nil {
		return 0, err
	}
	return int(fd.BatteryPercentage), nil
}

// StreamOn starts the drone video and forwards it to the relay address.
func (t *Tello) StreamOn(ctx context.Context) error {
	if !t.isConnected() {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.relay != nil {
		return nil
	}

	frames, err := t.link.VideoConnect(t.host, t.videoPort)
	if err != nil {
		return fmt.Errorf("failed to open video channel: %w", err)
	}
	relay, err := startVideoRelay(frames, t.relayAddr, t.link.StartVideo, t.logger)
	if err != nil {
		t.link.VideoDisconnect()
		return err
	}
	t.relay = relay
	t.logger.Info("Video relayed to %s", t.relayAddr)
	return nil
}

// StreamOff stops the video relay. It is a no-op when no stream is running.
func (t *Tello) StreamOff(ctx context.Context) error {
	t.stopVideo()
	return nil
}

func (t *Tello) stopVideo() {
	t.mu.Lock()
	relay := t.relay
	t.relay = nil
	t.mu.Unlock()

	if relay == nil {
		return
	}
	relay.Close()
	t.link.VideoDisconnect()
}

// TakeOff returns once the drone reports it is flying. On ErrTimeout the
// drone may still lift off late, so callers must treat it as airborne.
func (t *Tello) TakeOff(ctx context.Context) error {
	if !t.isConnected() {
		return ErrNotConnected
	}
	t.link.TakeOff()
	_, err := t.waitFor(ctx, "takeoff", func(fd tello.FlightData) bool {
		return fd.Flying
	})
	return err
}

// Land returns once the drone reports it is no longer flying.
func (t *Tello) Land(ctx context.Context) error {
	if !t.isConnected() {
		return ErrNotConnected
	}
	t.link.Land()
	_, err := t.waitFor(ctx, "landing", func(fd tello.FlightData) bool {
		return !fd.Flying
	})
	return err
}

// Send sets the stick positions. The driver keeps transmitting them until
// the next Send, so a zero command holds a hover.
func (t *Tello) Send(ctx context.Context, cmd model.ActuationCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.isConnected() {
		return ErrNotConnected
	}
	t.link.UpdateSticks(Sticks(cmd))
	return nil
}

// Sticks maps a velocity command onto the driver's stick axes:
// right stick for lateral and longitudinal, left stick for yaw and vertical.
func Sticks(cmd model.ActuationCommand) tello.StickMessage {
	cmd = cmd.Clamped()
	return tello.StickMessage{
		Rx: int16(cmd.Lateral * stickScale),
		Ry: int16(cmd.Longitudinal * stickScale),
		Lx: int16(cmd.Yaw * stickScale),
		Ly: int16(cmd.Vertical * stickScale),
	}
}

func (t *Tello) isConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// waitFor polls flight data until cond holds, the command timeout passes or ctx ends.
func (t *Tello) waitFor(ctx context.Context, what string, cond func(tello.FlightData) bool) (tello.FlightData, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		fd := t.link.GetFlightData()
		if cond(fd) {
			return fd, nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fd, fmt.Errorf("%w: %s", ErrTimeout, what)
			}
			return fd, ctx.Err()
		case <-ticker.C:
		}
	}
}
