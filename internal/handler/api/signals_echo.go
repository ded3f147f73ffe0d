package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "ChartSignals/internal/domain/models"
	domrepo "ChartSignals/internal/domain/repository"
	icache "ChartSignals/internal/service/cache"
	apimetrics "ChartSignals/internal/service/metrics"
	"ChartSignals/internal/service/ratelimit"
	"ChartSignals/internal/usecase"
	xhttp "ChartSignals/pkg/http"
	xlogger "ChartSignals/pkg/logger"
	xutil "ChartSignals/pkg/util"
)

// SignalsEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type SignalsEchoHandler struct {
	logger    *xlogger.Logger
	query     *usecase.SignalQuery
	collector *usecase.BarCollector
	symbols   []string
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
}

func NewSignalsEchoHandler(logger *xlogger.Logger, query *usecase.SignalQuery, collector *usecase.BarCollector, symbols []string) *SignalsEchoHandler {
	apimetrics.Register()
	return &SignalsEchoHandler{
		logger:    logger,
		query:     query,
		collector: collector,
		symbols:   symbols,
		rl:        ratelimit.New(),
	}
}

// SetCache enables short-TTL response caching.
func (h *SignalsEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/candles", h.Candles)
	g.GET("/watchlist", h.Watchlist)
	g.GET("/status", h.Status)
}

func (h *SignalsEchoHandler) Signals(c echo.Context) error {
	start := time.Now()
	defer func() {
		apimetrics.APILatency.WithLabelValues("signals").Observe(time.Since(start).Seconds())
	}()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	if !h.rl.Allow(c.RealIP()+":signals", 10, 5) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	cacheKey := "signals:" + req.Symbol + ":" + string(tf)
	if b, ok := h.cached(cacheKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	snap, notReady := h.query.Signals(c.Request().Context(), req.Symbol, tf)
	var payload interface{} = snap
	if notReady != nil {
		payload = notReady
	}

	b, err := json.Marshal(payload)
	if err != nil {
		apimetrics.APIErrors.WithLabelValues("signals").Inc()
		h.logger.Error("signals marshal error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	h.store(cacheKey, b, 5*time.Second)
	return xhttp.SuccessResponse(c, json.RawMessage(b))
}

func (h *SignalsEchoHandler) Candles(c echo.Context) error {
	start := time.Now()
	defer func() {
		apimetrics.APILatency.WithLabelValues("candles").Observe(time.Since(start).Seconds())
	}()

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	if !h.rl.Allow(c.RealIP()+":candles", 10, 5) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	from := xutil.ParseTimeDefault(req.From, time.Time{})
	to := xutil.ParseTimeDefault(req.To, time.Time{})
	bars := h.query.CandlesRange(c.Request().Context(), req.Symbol, tf, req.N, from, to)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol": req.Symbol,
		"tf":     string(tf),
		"count":  len(bars),
		"bars":   bars,
	})
}

func (h *SignalsEchoHandler) Watchlist(c echo.Context) error {
	start := time.Now()
	defer func() {
		apimetrics.APILatency.WithLabelValues("watchlist").Observe(time.Since(start).Seconds())
	}()

	const cacheKey = "watchlist"
	if b, ok := h.cached(cacheKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(b))
	}

	wl := h.query.Watchlist(c.Request().Context())
	b, err := json.Marshal(wl)
	if err != nil {
		apimetrics.APIErrors.WithLabelValues("watchlist").Inc()
		h.logger.Error("watchlist marshal error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	h.store(cacheKey, b, 10*time.Second)
	return xhttp.SuccessResponse(c, json.RawMessage(b))
}

func (h *SignalsEchoHandler) Status(c echo.Context) error {
	connected := false
	if h.collector != nil {
		connected = h.collector.IsConnected()
	}
	st := h.query.Status(c.Request().Context(), connected, h.symbols)
	return xhttp.SuccessResponse(c, st)
}

func (h *SignalsEchoHandler) cached(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("cache get error", xlogger.String("key", key), xlogger.Error(err))
		return nil, false
	}
	return b, ok
}

func (h *SignalsEchoHandler) store(key string, b []byte, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil {
		h.logger.Warn("cache set error", xlogger.String("key", key), xlogger.Error(err))
	}
}
