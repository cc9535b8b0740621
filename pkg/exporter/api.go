package exporter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rxtx-hosting/playercount/pkg/chart"
	"github.com/rxtx-hosting/playercount/pkg/series"
	"github.com/rxtx-hosting/playercount/pkg/tracker"
)

const (
	StatsPath  = "/api/update_monke_count"
	ChartPath  = "/api/monke_count"
	HealthPath = "/healthz"

	maxBodyBytes = 1 << 20
)

// allowedMethods backs the Allow header on 405 responses.
var allowedMethods = map[string][]string{
	StatsPath:  {http.MethodGet, http.MethodPost, http.MethodOptions},
	ChartPath:  {http.MethodGet, http.MethodPost},
	HealthPath: {http.MethodGet},
}

type APIServer struct {
	tracker  *tracker.Tracker
	renderer chart.Renderer
	location *time.Location
	server   *http.Server
}

type statsResponse struct {
	Current any             `json:"current"`
	Peak    int             `json:"peak_24h"`
	Last    []series.Sample `json:"last_24h"`
}

func NewAPIServer(tr *tracker.Tracker, renderer chart.Renderer, location *time.Location) *APIServer {
	if location == nil {
		location = time.Local
	}
	return &APIServer{
		tracker:  tr,
		renderer: renderer,
		location: location,
	}
}

func (a *APIServer) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.NoMethod(methodNotAllowed)

	r.GET(StatsPath, a.handleStats)
	r.POST(StatsPath, a.handleIngest("ok"))
	r.OPTIONS(StatsPath, a.handlePreflight)

	r.GET(ChartPath, a.handleChart)
	r.POST(ChartPath, a.handleIngest("success"))

	r.GET(HealthPath, a.handleHealth)

	return r
}

func (a *APIServer) StartServer(addr string) error {
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// methodNotAllowed runs for any verb not routed on a known path, including
// verbs gin has no tree for.
func methodNotAllowed(c *gin.Context) {
	if allowed, ok := allowedMethods[c.Request.URL.Path]; ok {
		c.Header("Allow", strings.Join(allowed, ", "))
	}
	c.String(http.StatusMethodNotAllowed, "Method %s Not Allowed", c.Request.Method)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Handled request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (a *APIServer) handleIngest(ackKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.tracker.Authorize(c.GetHeader("X-API-Key")); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		fields, err := readFields(c)
		if err != nil {
			a.tracker.RejectInvalid()
			c.JSON(http.StatusBadRequest, gin.H{"error": tracker.ErrInvalidBody.Error()})
			return
		}

		sub, err := tracker.ParseSubmission(fields)
		if err != nil {
			a.tracker.RejectInvalid()
			c.JSON(http.StatusBadRequest, gin.H{"error": tracker.ErrValidation.Error()})
			return
		}

		if _, err := a.tracker.Ingest(c.Request.Context(), sub); err != nil {
			slog.Error("Error recording player count", "count", sub.PlayerCount, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, gin.H{ackKey: true})
	}
}

// readFields accepts JSON, multipart, or urlencoded bodies; urlencoded is the default.
// Bodies over maxBodyBytes are rejected.
func readFields(c *gin.Context) (map[string]any, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	switch c.ContentType() {
	case gin.MIMEJSON:
		body, err := c.GetRawData()
		if err != nil {
			return nil, err
		}
		return tracker.DecodeJSON(body)
	case gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
		return tracker.DecodeForm(c.Request.MultipartForm.Value), nil
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		return tracker.DecodeForm(c.Request.PostForm), nil
	}
}

func (a *APIServer) handleStats(c *gin.Context) {
	stats, err := a.tracker.Stats(c.Request.Context())
	if err != nil {
		slog.Error("Error reading stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := statsResponse{
		Current: gin.H{},
		Peak:    stats.Peak,
		Last:    stats.Samples,
	}
	if stats.Current != nil {
		resp.Current = stats.Current
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, resp)
}

func (a *APIServer) handleChart(c *gin.Context) {
	stats, err := a.tracker.Stats(c.Request.Context())
	if err != nil {
		slog.Error("Error reading stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	img, err := a.renderer.Render(chart.PlayerCounts(stats.Samples, stats.Latest(), stats.Peak, a.location))
	if err != nil {
		slog.Error("Error rendering chart", "samples", len(stats.Samples), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", img)
}

func (a *APIServer) handlePreflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type,X-API-Key")
	c.Status(http.StatusNoContent)
}

func (a *APIServer) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := a.tracker.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
