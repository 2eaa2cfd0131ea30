package events

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/pipeline"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEventName is the socket.io event progress payloads are emitted on.
const DefaultEventName = "pipeline_event"

// SocketIOConfig configures the socket.io publisher.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	EventName          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// emitter is the part of *socket.Socket the publisher needs.
type emitter interface {
	Emit(ev string, args ...any) error
}

// SocketIOPublisher emits every pipeline event as a Payload to a socket.io
// server.
type SocketIOPublisher struct {
	client    emitter
	eventName string
	close     func()
}

// DialSocketIO connects to the configured server and returns a publisher
// once the connection is established.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIOPublisher, error) {
	logger := ctxlog.FromContext(ctx).With("observer", "socketio", "url", cfg.URL)
	logger.Debug("Connecting event publisher...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socket.io URL %q must include scheme and host", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Event publisher connected.", "sid", io.Id())
		notifyConnect(connectChan, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		notifyConnect(connectChan, err)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	return newSocketIOPublisher(io, cfg.EventName, func() { io.Disconnect() }), nil
}

// notifyConnect reports the first connection outcome. Later outcomes, such
// as a reconnect after connect_error, are dropped.
func notifyConnect(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func newSocketIOPublisher(client emitter, eventName string, closeFn func()) *SocketIOPublisher {
	if eventName == "" {
		eventName = DefaultEventName
	}
	if closeFn == nil {
		closeFn = func() {}
	}
	return &SocketIOPublisher{client: client, eventName: eventName, close: closeFn}
}

// OnEvent implements pipeline.Observer. Emit failures are logged and never
// affect the run.
func (p *SocketIOPublisher) OnEvent(ctx context.Context, ev pipeline.Event) {
	if err := p.client.Emit(p.eventName, NewPayload(ev)); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to publish pipeline event.", "event", ev.Type, "error", err)
	}
}

// Close disconnects from the server.
func (p *SocketIOPublisher) Close() error {
	p.close()
	return nil
}
