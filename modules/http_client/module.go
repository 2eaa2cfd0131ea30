// Package http_client provides the "http" generator, which downloads an
// image from a URL and hands it to the pipeline as an artifact.
package http_client

import (
	"net/http"
	"sync"
	"time"

	"github.com/vk/mediagrid/internal/registry"
)

// DefaultTimeout bounds a single download when the module sets none.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBytes caps the size of a downloaded image.
const DefaultMaxBytes = 32 << 20

// Module implements the registry.Module interface for this package. One
// *http.Client is shared by every step so connections are reused.
type Module struct {
	Timeout  time.Duration
	MaxBytes int64
	// Client overrides the shared client.
	Client *http.Client

	once sync.Once
}

// client returns the shared client, creating it on first use.
func (m *Module) client() *http.Client {
	m.once.Do(func() {
		if m.Client != nil {
			return
		}
		timeout := m.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		m.Client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	})
	return m.Client
}

// Close releases idle connections of the shared client.
func (m *Module) Close() error {
	if m.Client != nil {
		m.Client.CloseIdleConnections()
	}
	return nil
}

// Register registers the generator with the registry. Downloads are
// cacheable since a URL with the same params is expected to serve the same
// image for the lifetime of the cache.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator("http", &registry.RegisteredGenerator{
		Fn:        m.Generate,
		Cacheable: true,
	})
}
