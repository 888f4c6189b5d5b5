package api

import (
	"bytes"
	"net/http"
	"strconv"
	"sync"
	"time"

	"graphite/backend/internal/graph"
	"graphite/backend/internal/layout"
	"graphite/backend/internal/metrics"
	"graphite/backend/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultRenderFrames = 300
	maxRenderFrames     = 5000
	renderSettle        = 1e-3
	writeWait           = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
}

// layoutConfig sizes a canvas from the query, falling back to the configured size
func (s *Server) layoutConfig(c *gin.Context) layout.Config {
	cfg := layout.Config{Width: s.cfg.LayoutWidth, Height: s.cfg.LayoutHeight}
	if w, err := strconv.ParseFloat(c.Query("width"), 64); err == nil && w > 0 {
		cfg.Width = w
	}
	if h, err := strconv.ParseFloat(c.Query("height"), 64); err == nil && h > 0 {
		cfg.Height = h
	}
	if seed, err := strconv.ParseUint(c.Query("seed"), 10, 64); err == nil {
		cfg.Seed = seed
	}
	return cfg
}

// layoutSVG relaxes the event graph server side and returns the final frame
func (s *Server) layoutSVG(c *gin.Context) {
	data, err := graph.GetEventGraph(c.Request.Context(), s.store, c.Param("eventId"), s.viewerID(c))
	if err != nil {
		s.respondError(c, "build event graph", err)
		return
	}

	frames := defaultRenderFrames
	if n, err := strconv.Atoi(c.Query("frames")); err == nil && n >= 0 {
		frames = min(n, maxRenderFrames)
	}

	var buf bytes.Buffer
	steps, err := layout.RenderSVG(&buf, data, s.layoutConfig(c), layout.RenderOptions{
		Frames:    frames,
		Settle:    renderSettle,
		Highlight: c.Query("highlight"),
		Query:     c.Query("q"),
	})
	if err != nil {
		s.respondError(c, "render layout", err)
		return
	}
	metrics.LayoutFrames.WithLabelValues(metrics.OutputSVG).Add(float64(steps))

	c.Header("X-Layout-Steps", strconv.Itoa(steps))
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// layoutSession streams a live layout over a websocket. The loop goroutine
// owns the simulator; client input is queued onto it between frames.
func (s *Server) layoutSession(c *gin.Context) {
	data, err := graph.GetEventGraph(c.Request.Context(), s.store, c.Param("eventId"), s.viewerID(c))
	if err != nil {
		s.respondError(c, "build event graph", err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade layout session", zap.Error(err))
		return
	}
	defer ws.Close()

	sessionID := uuid.New().String()
	log := s.logger.With(zap.String("session_id", sessionID), zap.String("event_id", c.Param("eventId")))

	metrics.LayoutSessions.Inc()
	defer metrics.LayoutSessions.Dec()

	// gorilla allows one concurrent writer
	var writeMu sync.Mutex
	send := func(msg state.ServerMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		return ws.WriteJSON(msg)
	}

	if err := send(state.NewReady(sessionID, data)); err != nil {
		log.Warn("Failed to announce layout session", zap.Error(err))
		return
	}

	sim := layout.NewSimulator(s.layoutConfig(c), layout.DefaultParams())
	sim.Mount(data)
	sim.OnNodeClick(func(node graph.GraphNode) {
		if err := send(state.NewClick(node)); err != nil {
			log.Debug("Failed to report click", zap.Error(err))
		}
	})

	loop := layout.NewLoop(sim, s.cfg.LayoutFPS, func(sim *layout.Simulator) error {
		metrics.LayoutFrames.WithLabelValues(metrics.OutputWebsocket).Inc()
		return send(state.NewFrame(sim.State()))
	})
	loop.Start(c.Request.Context())
	log.Info("Layout session started", zap.Int("nodes", len(data.Nodes)), zap.Int("links", len(data.Links)))

	go func() {
		<-loop.Done()
		// unblocks ReadJSON once frames can no longer be delivered
		_ = ws.Close()
	}()

	for {
		var msg state.ClientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			log.Debug("Layout client disconnected", zap.Error(err))
			break
		}
		if err := msg.Validate(); err != nil {
			if err := send(state.NewError(err)); err != nil {
				break
			}
			continue
		}
		if !loop.Do(msg.Apply) {
			break
		}
	}

	if err := loop.Stop(); err != nil {
		log.Debug("Layout loop ended with error", zap.Error(err))
	}
	log.Info("Layout session closed")
}
