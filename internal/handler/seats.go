package handler // handler package contains the seat allocation HTTP handlers

import (
    "context"  // provides context with cancellation for store calls
    "errors"   // errors inspects service and repository failures
    "net/http" // HTTP status codes
    "strings"  // string normalization of flags
    "time"     // timeouts for store calls

    "github.com/labstack/echo/v4"  // Echo framework for HTTP routing
    "github.com/redis/go-redis/v9" // Redis client used to purge cached lookups

    "github.com/iliyamo/exam-seat-allocation/internal/config"     // cache settings
    "github.com/iliyamo/exam-seat-allocation/internal/middleware" // cache purge helper
    "github.com/iliyamo/exam-seat-allocation/internal/repository" // not-found sentinel
    "github.com/iliyamo/exam-seat-allocation/internal/service"    // reconciliation and lookup
)

// StatusFlags are the configuration facts reported by GET /api/seats/status.
// They are resolved once at startup.
type StatusFlags struct {
    DBConfigured        bool
    AdminAuthConfigured bool
    BrokerConfigured    bool
}

// SeatHandler bundles dependencies for the /api/seats endpoints.
type SeatHandler struct {
    Seats *service.Seats
    Flags StatusFlags
    Cache config.CacheConfig
    Redis *redis.Client // optional; nil disables cache purging and the redis status probe
}

// NewSeatHandler constructs a SeatHandler and panics if the service is nil.
func NewSeatHandler(seats *service.Seats, flags StatusFlags, cache config.CacheConfig, rdb *redis.Client) *SeatHandler {
    if seats == nil {
        panic("nil service passed to NewSeatHandler")
    }
    return &SeatHandler{Seats: seats, Flags: flags, Cache: cache, Redis: rdb}
}

// ----- DTOs -----

// addRangeReq accepts numbers either as JSON numbers or numeric strings, as
// the admin form sends whatever its inputs hold.
type addRangeReq struct {
    Prefix   string `json:"prefix" validate:"max=32"`
    Start    any    `json:"start"`
    End      any    `json:"end"`
    Branch   string `json:"branch" validate:"required,max=32"`
    Year     any    `json:"year"`
    Room     string `json:"room" validate:"required,max=128"`
    Location string `json:"location" validate:"required,max=255"`
    Preview  any    `json:"preview"`
}

type messageResp struct {
    Message string `json:"message"`
}

type clearResp struct {
    Message string `json:"message"`
    Deleted int64  `json:"deleted"`
}

type statusResp struct {
    DBConfigured        bool   `json:"db_configured"`
    DBConnected         bool   `json:"db_connected"`
    AdminAuthConfigured bool   `json:"admin_auth_configured"`
    RedisConnected      bool   `json:"redis_connected"`
    BrokerConfigured    bool   `json:"broker_configured"`
    IdentityMode        string `json:"identity_mode"`
    RollFormat          string `json:"roll_format"`
}

// AddRange handles POST /api/seats/add-range.  It validates the whole body
// before the store is touched, then previews or applies the range.
func (h *SeatHandler) AddRange(c echo.Context) error {
    var req addRangeReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, messageResp{Message: "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return h.fail(c, err, "invalid request body")
    }
    start, err := service.ParseInt("start", req.Start)
    if err != nil {
        return h.fail(c, err, "")
    }
    end, err := service.ParseInt("end", req.End)
    if err != nil {
        return h.fail(c, err, "")
    }
    year, err := service.ParseInt("year", req.Year)
    if err != nil {
        return h.fail(c, err, "")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    rep, err := h.Seats.Reconcile(ctx, service.RangeRequest{
        Prefix:   req.Prefix,
        Start:    start,
        End:      end,
        Branch:   req.Branch,
        Year:     year,
        Room:     req.Room,
        Location: req.Location,
        Preview:  isTrue(req.Preview),
    })
    if !rep.Preview && rep.Modified > 0 {
        h.purge(c)
    }
    if err != nil {
        return h.fail(c, err, "Server error while processing range")
    }
    return c.JSON(http.StatusOK, rep)
}

// Search handles GET /api/seats/search?roll=&branch=&year=.
func (h *SeatHandler) Search(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    seat, err := h.Seats.Lookup(ctx, service.LookupRequest{
        Roll:   c.QueryParam("roll"),
        Branch: c.QueryParam("branch"),
        Year:   c.QueryParam("year"),
    })
    if err != nil {
        return h.fail(c, err, "Server error")
    }
    return c.JSON(http.StatusOK, seat)
}

// Status handles GET /api/seats/status.  It reports configuration flags and
// probes the database and Redis with a short timeout.
func (h *SeatHandler) Status(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()

    resp := statusResp{
        DBConfigured:        h.Flags.DBConfigured,
        AdminAuthConfigured: h.Flags.AdminAuthConfigured,
        BrokerConfigured:    h.Flags.BrokerConfigured,
        IdentityMode:        string(h.Seats.IdentityMode()),
        RollFormat:          h.Seats.RollFormat(),
    }
    resp.DBConnected = h.Seats.Ping(ctx) == nil
    if h.Redis != nil {
        resp.RedisConnected = h.Redis.Ping(ctx).Err() == nil
    }
    return c.JSON(http.StatusOK, resp)
}

// Clear handles POST /api/seats/clear and deletes every assignment.
func (h *SeatHandler) Clear(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    n, err := h.Seats.Clear(ctx)
    if err != nil {
        return h.fail(c, err, "Failed to clear database")
    }
    h.purge(c)
    return c.JSON(http.StatusOK, clearResp{Message: "Database cleared", Deleted: n})
}

// fail maps an error onto the HTTP taxonomy: validation problems are 400
// with their message, lookup misses 404, and anything else is logged and
// answered with the generic serverMsg so store internals never leak.
func (h *SeatHandler) fail(c echo.Context, err error, serverMsg string) error {
    var ve *service.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, messageResp{Message: ve.Message})
    case repository.IsNotFound(err):
        return c.JSON(http.StatusNotFound, messageResp{Message: "Seat not found"})
    }
    c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    if serverMsg == "" {
        serverMsg = "Server error"
    }
    return c.JSON(http.StatusInternalServerError, messageResp{Message: serverMsg})
}

// purge drops cached lookups after stored assignments changed.
func (h *SeatHandler) purge(c echo.Context) {
    if h.Redis == nil {
        return
    }
    ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
    defer cancel()
    if _, err := middleware.PurgeCache(ctx, h.Cache, h.Redis); err != nil {
        c.Logger().Warnf("cache purge failed: %v", err)
    }
}

// isTrue accepts a JSON true or the string "true" for preview.
func isTrue(v any) bool {
    switch t := v.(type) {
    case bool:
        return t
    case string:
        return strings.EqualFold(strings.TrimSpace(t), "true")
    }
    return false
}
