package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"graphite/backend/internal/graph"
	"graphite/backend/internal/ingest"
	"graphite/backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.store.ListEvents(c.Request.Context())
	if err != nil {
		s.respondError(c, "list events", err)
		return
	}
	if events == nil {
		events = []graph.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) createEvent(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	event := graph.Event{
		ID:   uuid.New().String(),
		Name: strings.TrimSpace(req.Name),
		Date: strings.TrimSpace(req.Date),
	}
	if err := s.store.UpsertEvent(c.Request.Context(), event); err != nil {
		s.respondError(c, "create event", err)
		return
	}

	s.logger.Info("Event created", zap.String("event_id", event.ID), zap.String("name", event.Name))
	c.JSON(http.StatusCreated, event)
}

func (s *Server) getEvent(c *gin.Context) {
	event, err := s.store.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		s.respondError(c, "fetch event", err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (s *Server) deleteEvent(c *gin.Context) {
	if err := s.store.DeleteEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		s.respondError(c, "delete event", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// addAttendees ingests a roster. The body must carry an attendees list;
// anything else is rejected before a single write. Bad rows inside the
// list are skipped.
func (s *Server) addAttendees(c *gin.Context) {
	var req struct {
		Attendees json.RawMessage `json:"attendees"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid attendees data")
		return
	}

	raw := bytes.TrimSpace(req.Attendees)
	if len(raw) == 0 || raw[0] != '[' {
		badRequest(c, "Invalid attendees data")
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		badRequest(c, "Invalid attendees data")
		return
	}

	// A record that does not decode is skipped like one without a name
	records := make([]ingest.Record, 0, len(items))
	undecodable := 0
	for _, item := range items {
		var record ingest.Record
		if err := json.Unmarshal(item, &record); err != nil {
			undecodable++
			continue
		}
		records = append(records, record)
	}
	if undecodable > 0 {
		metrics.AttendeesIngested.WithLabelValues(metrics.OutcomeSkipped).Add(float64(undecodable))
		s.logger.Warn("Skipped undecodable attendee records",
			zap.String("event_id", c.Param("eventId")),
			zap.Int("count", undecodable),
		)
	}

	result, err := s.builder.BuildGraph(c.Request.Context(), c.Param("eventId"), records)
	if err != nil {
		s.respondError(c, "add attendees", err)
		return
	}
	result.Skipped += undecodable

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"count":              result.Added,
		"skipped":            result.Skipped,
		"connectionsCreated": result.ConnectionsCreated,
		"attendeeCount":      result.AttendeeCount,
		"personIds":          result.PersonIDs,
	})
}
