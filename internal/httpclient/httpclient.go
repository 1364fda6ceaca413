package httpclient

import (
	"net/http"
	"time"

	"github.com/finquill/finchat/internal/config"
)

var sharedTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// New returns a pooled client. Download and search clients share the
// transport so repeated fetches against the same host reuse connections.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
