package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"graphite/backend/internal/demo"
	"graphite/backend/internal/graph"
	"graphite/backend/internal/recommend"
	"graphite/backend/internal/state"
	"graphite/backend/pkg/config"
	"graphite/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		StoreBackend:     config.StoreMemory,
		DefaultViewerID:  "vc-1",
		AutoConnectScope: config.ConnectScopeFull,
		LayoutWidth:      800,
		LayoutHeight:     600,
		LayoutFPS:        60,
	}
}

func newTestServer(t *testing.T) (*gin.Engine, *graph.MemoryStore) {
	t.Helper()
	store := graph.NewMemoryStore()
	require.NoError(t, demo.Seed(context.Background(), store))
	return NewServer(testConfig(), store).Router(), store
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	router, store := newTestServer(t)

	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])

	require.NoError(t, store.Close(context.Background()))
	w = do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	decode(t, w, &body)
	assert.Equal(t, "degraded", body["status"])
}

func TestAddAttendees_RejectsMalformedRoster(t *testing.T) {
	router, store := newTestServer(t)
	before, err := store.Snapshot(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
	}{
		{"absent", `{}`},
		{"null", `{"attendees": null}`},
		{"object", `{"attendees": {"name": "Ada"}}`},
		{"string", `{"attendees": "Ada"}`},
		{"not json", `attendees`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/events/event-9/attendees", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Invalid attendees data")
		})
	}

	after, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddAttendees(t *testing.T) {
	router, _ := newTestServer(t)

	body := `{"attendees": [
		{"name": "Ada Park", "title": "Engineer", "currentCompany": "Stripe", "workHistory": "Stripe:Engineer:2021,Google:Intern:2019:2020"},
		{"name": "Ben Ode", "currentCompany": "Google"},
		{"name": "  "}
	]}`
	w := do(router, http.MethodPost, "/api/events/new-event/attendees", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Success            bool     `json:"success"`
		Count              int      `json:"count"`
		Skipped            int      `json:"skipped"`
		ConnectionsCreated int      `json:"connectionsCreated"`
		AttendeeCount      int      `json:"attendeeCount"`
		PersonIDs          []string `json:"personIds"`
	}
	decode(t, w, &result)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.AttendeeCount)
	assert.Len(t, result.PersonIDs, 2)
	// Ada and Ben share Google; full scope also reaches seeded Google alumni
	assert.GreaterOrEqual(t, result.ConnectionsCreated, 1)

	w = do(router, http.MethodGet, "/api/events/new-event", "")
	require.Equal(t, http.StatusOK, w.Code)
	var event graph.Event
	decode(t, w, &event)
	assert.Equal(t, 2, event.AttendeeCount)
}

func TestAddAttendees_SkipsBadRows(t *testing.T) {
	router, _ := newTestServer(t)

	tests := []struct {
		name    string
		event   string
		body    string
		added   int
		skipped int
	}{
		{
			name:    "wrongly typed field",
			event:   "rows-typed",
			body:    `{"attendees": [{"name": "Ada Park", "currentCompany": "Stripe"}, {"name": "Ben Ode", "currentCompany": "Google", "title": 42}]}`,
			added:   1,
			skipped: 1,
		},
		{
			name:    "null and non-object rows",
			event:   "rows-shapes",
			body:    `{"attendees": [{"name": "Ada Park"}, null, "Ben"]}`,
			added:   1,
			skipped: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/events/"+tt.event+"/attendees", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var result struct {
				Count   int `json:"count"`
				Skipped int `json:"skipped"`
			}
			decode(t, w, &result)
			assert.Equal(t, tt.added, result.Count)
			assert.Equal(t, tt.skipped, result.Skipped)
		})
	}
}

func TestEventsCRUD(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(router, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	var events []graph.Event
	decode(t, w, &events)
	require.Len(t, events, 3)
	assert.Equal(t, "GitHub Galaxy Hackathon", events[0].Name)

	w = do(router, http.MethodPost, "/api/events", `{"name": "Launch Party", "date": "Mar 1, 2026"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created graph.Event
	decode(t, w, &created)
	assert.Len(t, created.ID, 36)
	assert.Equal(t, "Launch Party", created.Name)

	w = do(router, http.MethodPost, "/api/events", `{"date": "Mar 1, 2026"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodDelete, "/api/events/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodGet, "/api/events/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(router, http.MethodDelete, "/api/events/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventGraph(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(router, http.MethodGet, "/api/events/event-1/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	var data graph.GraphData
	decode(t, w, &data)

	people, targets := 0, 0
	for _, n := range data.Nodes {
		switch n.Type {
		case graph.NodePerson:
			people++
		case graph.NodeCompany:
			if n.IsTarget {
				targets++
			}
		}
	}
	assert.Equal(t, 14, people)
	assert.Greater(t, targets, 0)

	// unknown events have an empty graph rather than a 404
	w = do(router, http.MethodGet, "/api/events/nope/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &data)
	assert.Empty(t, data.Nodes)
}

func TestRecommendations(t *testing.T) {
	router, store := newTestServer(t)

	w := do(router, http.MethodGet, "/api/events/event-1/recommendations?vcId=vc-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var recs []recommend.Recommendation
	decode(t, w, &recs)
	require.NotEmpty(t, recs)
	assert.Equal(t, recommend.ReasonWorksAtTarget, recs[0].ReasonType)

	w = do(router, http.MethodGet, "/api/events/event-1/recommendations?vcId=nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	require.NoError(t, store.Close(context.Background()))
	w = do(router, http.MethodGet, "/api/events/event-1/recommendations", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "degraded", body["status"])
}

func TestOverview(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(router, http.MethodGet, "/api/events/event-3/overview?vcId=vc-3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Event           graph.Event                `json:"event"`
		ViewerID        string                     `json:"viewerId"`
		Graph           graph.GraphData            `json:"graph"`
		Recommendations []recommend.Recommendation `json:"recommendations"`
	}
	decode(t, w, &body)
	assert.Equal(t, "YC Demo Day", body.Event.Name)
	assert.Equal(t, "vc-3", body.ViewerID)
	assert.NotEmpty(t, body.Graph.Nodes)
	assert.NotNil(t, body.Recommendations)

	w = do(router, http.MethodGet, "/api/events/nope/overview", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(router, http.MethodGet, "/api/events/event-1/search?q=stripe", "")
	require.Equal(t, http.StatusOK, w.Code)
	var people []graph.Person
	decode(t, w, &people)
	require.NotEmpty(t, people)
	for _, p := range people {
		assert.True(t, graph.MatchesQuery(p, "stripe"), p.Name)
	}

	w = do(router, http.MethodGet, "/api/events/event-1/search", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPortfolioAndPerson(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(router, http.MethodGet, "/api/portfolio", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/portfolio", `{"userId": "vc-9", "companies": ["Acme", "Globex"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "count": 2}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/portfolio", `{"userId": "vc-9", "companies": "Acme"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/portfolio?userId=vc-9", "")
	require.Equal(t, http.StatusOK, w.Code)
	var portfolio struct {
		Companies []string `json:"companies"`
	}
	decode(t, w, &portfolio)
	assert.ElementsMatch(t, []string{"Acme", "Globex"}, portfolio.Companies)

	w = do(router, http.MethodGet, "/api/person/p-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var person graph.PersonDetail
	decode(t, w, &person)
	assert.Equal(t, "Alex Rivera", person.Name)
	assert.Len(t, person.WorkHistory, 2)
	assert.NotEmpty(t, person.Connections)

	w = do(router, http.MethodGet, "/api/person/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLayoutSVG(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(router, http.MethodGet, "/api/events/event-2/layout.svg?frames=20&seed=3&highlight=p-2&q=figma", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Layout-Steps"))

	out := w.Body.String()
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
	assert.Contains(t, out, ">Jordan Lee<")
}

func TestLayoutSession(t *testing.T) {
	router, _ := newTestServer(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/event-1/layout/ws?seed=5"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ready state.ServerMessage
	require.NoError(t, ws.ReadJSON(&ready))
	assert.Equal(t, state.OutputReady, ready.Type)
	assert.NotEmpty(t, ready.SessionID)
	require.NotNil(t, ready.Graph)
	assert.NotEmpty(t, ready.Graph.Nodes)

	require.NoError(t, ws.WriteJSON(state.ClientMessage{Type: "teleport"}))
	require.NoError(t, ws.WriteJSON(state.ClientMessage{Type: state.InputZoomIn}))

	sawError, zoomed := false, false
	for !(sawError && zoomed) {
		var msg state.ServerMessage
		require.NoError(t, ws.ReadJSON(&msg))
		switch msg.Type {
		case state.OutputError:
			sawError = true
			assert.Contains(t, msg.Error, "teleport")
		case state.OutputFrame:
			require.NotNil(t, msg.Frame)
			assert.Len(t, msg.Frame.Nodes, len(ready.Graph.Nodes))
			if msg.Frame.Viewport.Scale > 1.1 {
				zoomed = true
			}
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/events", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	router, _ := newTestServer(t)
	do(router, http.MethodGet, "/api/events/event-1/search?q=alex", "")

	requests := logs.FilterMessage("HTTP Request").All()
	require.Len(t, requests, 1)
	fields := requests[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "/api/events/event-1/search?q=alex", fields["path"])
	assert.Equal(t, "api", requests[0].LoggerName)
}
