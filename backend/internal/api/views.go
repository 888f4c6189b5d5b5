package api

import (
	"net/http"
	"strconv"
	"strings"

	"graphite/backend/internal/graph"
	"graphite/backend/internal/recommend"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func (s *Server) eventGraph(c *gin.Context) {
	data, err := graph.GetEventGraph(c.Request.Context(), s.store, c.Param("eventId"), s.viewerID(c))
	if err != nil {
		s.respondError(c, "build event graph", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) recommendations(c *gin.Context) {
	recs, err := s.engine.GetRecommendations(c.Request.Context(), c.Param("eventId"), s.viewerID(c))
	if err != nil {
		s.respondError(c, "rank recommendations", err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// overview returns the graph and the recommendations of one event in a
// single response, loading both at once
func (s *Server) overview(c *gin.Context) {
	eventID, viewerID := c.Param("eventId"), s.viewerID(c)

	var (
		event *graph.Event
		data  graph.GraphData
		recs  []recommend.Recommendation
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		event, err = s.store.GetEvent(ctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		data, err = graph.GetEventGraph(ctx, s.store, eventID, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = s.engine.GetRecommendations(ctx, eventID, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondError(c, "build event overview", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":           event,
		"viewerId":        viewerID,
		"graph":           data,
		"recommendations": recs,
	})
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, []graph.Person{})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	people, err := s.store.SearchPeople(c.Request.Context(), c.Param("eventId"), query, limit)
	if err != nil {
		s.respondError(c, "search attendees", err)
		return
	}
	if people == nil {
		people = []graph.Person{}
	}
	c.JSON(http.StatusOK, people)
}

func (s *Server) getPerson(c *gin.Context) {
	person, err := s.store.GetPerson(c.Request.Context(), c.Param("personId"))
	if err != nil {
		s.respondError(c, "fetch person", err)
		return
	}
	c.JSON(http.StatusOK, person)
}

func (s *Server) getPortfolio(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = c.Query("vcId")
	}
	if userID == "" {
		badRequest(c, "Missing userId")
		return
	}

	companies, err := s.store.ListPortfolio(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, "fetch portfolio", err)
		return
	}
	if companies == nil {
		companies = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "companies": companies})
}

func (s *Server) setPortfolio(c *gin.Context) {
	var req struct {
		UserID    string   `json:"userId" binding:"required"`
		Companies []string `json:"companies" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}

	if err := s.store.SetPortfolio(c.Request.Context(), req.UserID, req.Companies); err != nil {
		s.respondError(c, "upload portfolio", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(req.Companies)})
}
