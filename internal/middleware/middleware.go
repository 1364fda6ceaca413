// Package middleware is the per-request wrapper chain: trace injection,
// bearer auth, per-IP rate limiting and status metrics.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

type Chain struct {
	authToken    string
	noAuthBypass bool
	limiter      *IPRateLimiter
	logger       *flog.Logger
}

func NewChain(cfg *config.Config) *Chain {
	return &Chain{
		authToken:    cfg.AuthToken,
		noAuthBypass: cfg.NoAuthBypass,
		limiter:      NewIPRateLimiter(config.RATE_LIMIT_PER_SECOND, config.BURST_RATE_LIMIT_PER_SECOND),
		logger:       flog.NewLogger("middleware"),
	}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
		}()

		r, logger := c.injectTrace(r)
		logger.Info("New request received", "path", r.URL.Path)

		if !c.authenticate(rec, r, logger) {
			return
		}
		if !c.rateLimit(rec, r, logger) {
			return
		}

		next(rec, r)
	}
}
