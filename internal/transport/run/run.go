package run

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alanyang/ticket-router/internal/adapter/dataset"
	"github.com/alanyang/ticket-router/internal/domain/assignment"
	portrun "github.com/alanyang/ticket-router/internal/port/run"
	runsvc "github.com/alanyang/ticket-router/internal/service/run"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Register mounts the run routes. submitMW runs before the submit handler
// only, so reads are never rate limited.
func Register(rg *gin.RouterGroup, svc *runsvc.Service, submitMW ...gin.HandlerFunc) {
	rg.POST("", append(submitMW, submitRun(svc))...)
	rg.GET("", listRuns(svc))
	rg.GET("/:id", getRun(svc))
	rg.GET("/:id/export.xlsx", exportRun(svc))
}

func submitRun(svc *runsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ds, err := dataset.Decode(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		r, err := svc.Submit(c.Request.Context(), c.GetHeader(IdempotencyHeader), ds.Agents, ds.Tickets)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func listRuns(svc *runsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = n
		}

		runs, err := svc.List(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if runs == nil {
			runs = []assignment.Run{}
		}
		c.JSON(http.StatusOK, runs)
	}
}

func getRun(svc *runsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := lookup(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func exportRun(svc *runsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := lookup(c, svc)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := dataset.WriteXLSX(&buf, r.Records); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.xlsx"`, r.ID))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

// lookup resolves :id and writes the error response itself when it fails.
func lookup(c *gin.Context, svc *runsvc.Service) (assignment.Run, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return assignment.Run{}, false
	}

	r, err := svc.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, portrun.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return assignment.Run{}, false
	}
	return r, true
}
