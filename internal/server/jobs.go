package server

import (
	"context"
	"net/http"

	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

// jobRunner is the part of the scheduler the admin endpoints need.
type jobRunner interface {
	RunByName(ctx context.Context, name string) error
	Names() []string
}

type jobHandler struct {
	jobs jobRunner
}

func newJobHandler(jobs jobRunner) *jobHandler {
	return &jobHandler{jobs: jobs}
}

func (h *jobHandler) List(c *gin.Context) {
	response.OK(c, h.jobs.Names())
}

// Run executes a background job now, including jobs registered with an
// empty schedule.
func (h *jobHandler) Run(c *gin.Context) {
	name := c.Param("name")
	if err := h.jobs.RunByName(c.Request.Context(), name); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": name, "status": "completed"})
}
