package drone

import (
	"dronetracker/internal/logger"
	"fmt"
	"net"
	"sync"
	"time"
)

// keyframeInterval is how often the drone is asked to resend its stream headers,
// so a decoder that joins late can start.
const keyframeInterval = time.Second

// videoRelay forwards raw H.264 datagrams from the driver to a local UDP
// address that the frame source opens with OpenVideoCapture.
type videoRelay struct {
	conn   *net.UDPConn
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	logger *logger.Logger
}

func startVideoRelay(frames <-chan []byte, target string, requestKeyframe func(), logger *logger.Logger) (*videoRelay, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("invalid video relay address %q: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open video relay: %w", err)
	}

	r := &videoRelay{conn: conn, done: make(chan struct{}), logger: logger}
	r.wg.Add(1)
	go r.run(frames, requestKeyframe)
	return r, nil
}

func (r *videoRelay) run(frames <-chan []byte, requestKeyframe func()) {
	defer r.wg.Done()

	ticker := time.NewTicker(keyframeInterval)
	defer ticker.Stop()
	requestKeyframe()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			requestKeyframe()
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if len(frame) == 0 {
				continue
			}
			if _, err := r.conn.Write(frame); err != nil {
				r.logger.Warning("Video relay write failed: %v", err)
			}
		}
	}
}

// Close stops forwarding and waits for the relay goroutine.
func (r *videoRelay) Close() {
	r.once.Do(func() {
		close(r.done)
		r.wg.Wait()
		r.conn.Close()
	})
}
