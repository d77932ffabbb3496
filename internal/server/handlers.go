// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/history"
	"github.com/pdiddy/research-assistant/internal/normalize"
	"github.com/pdiddy/research-assistant/internal/pipeline"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// QueryRequest is the POST /query body.
type QueryRequest struct {
	Query string `json:"query"`
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := s.handler.Handle(c.Request.Context(), req.Query)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("query failed", zap.String("request_id", requestID(c)), zap.Error(err))
		}
		c.JSON(status, types.ErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// errorStatus maps a pipeline error to an HTTP status and client message.
func errorStatus(err error) (int, string) {
	var schemaErr *normalize.SchemaError
	switch {
	case errors.Is(err, pipeline.ErrEmptyQuery):
		return http.StatusBadRequest, "Query cannot be empty"
	case errors.Is(err, pipeline.ErrUpstream), errors.Is(err, normalize.ErrEmptyOutput):
		return http.StatusInternalServerError, "Agent did not produce a valid output"
	case errors.Is(err, normalize.ErrMalformedJSON):
		return http.StatusInternalServerError, "Failed to decode JSON output"
	case errors.As(err, &schemaErr):
		return http.StatusInternalServerError, "Error parsing response: " + schemaErr.Error()
	default:
		return http.StatusInternalServerError, "Server error processing request: " + err.Error()
	}
}

func (s *Server) listHistory(c *gin.Context) {
	opts := history.ListOptions{Contains: c.Query("q")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		opts.Limit = n
	}

	entries, err := s.history.Recent(c.Request.Context(), opts)
	if err != nil {
		s.logger.Error("listing history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Server error reading history: " + err.Error()})
		return
	}
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) getHistory(c *gin.Context) {
	entry, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "History entry not found"})
		return
	}
	if err != nil {
		s.logger.Error("reading history entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Server error reading history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}
