package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// PlacementHandler manages placement endpoints: the catalog of placeable
// groups, conflict checks and commits.
type PlacementHandler struct {
	placements *service.PlacementService
	queries    *service.ScheduleQueryService
	metrics    *service.MetricsService
}

// NewPlacementHandler constructs handler.
func NewPlacementHandler(placements *service.PlacementService, queries *service.ScheduleQueryService, metrics *service.MetricsService) *PlacementHandler {
	return &PlacementHandler{placements: placements, queries: queries, metrics: metrics}
}

// AvailableGroups godoc
// @Summary List groups still placeable for a department and level
// @Tags Placements
// @Produce json
// @Param department query string true "Department"
// @Param level query string true "Level"
// @Success 200 {object} response.Envelope
// @Router /groups/available [get]
func (h *PlacementHandler) AvailableGroups(c *gin.Context) {
	filter := models.GroupFilter{
		Department: c.Query("department"),
		Level:      c.Query("level"),
	}

	groups, err := h.placements.AvailableGroups(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// DepartmentsFor godoc
// @Summary Resolve the fan-out departments of a group
// @Tags Placements
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/departments [get]
func (h *PlacementHandler) DepartmentsFor(c *gin.Context) {
	departments, err := h.placements.DepartmentsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// Departments godoc
// @Summary List every department known to the catalog
// @Tags Placements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *PlacementHandler) Departments(c *gin.Context) {
	departments, err := h.placements.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// Get godoc
// @Summary Get a committed placement and its fan-out replicas
// @Tags Placements
// @Produce json
// @Param id path string true "Placement ID"
// @Success 200 {object} response.Envelope
// @Router /placements/{id} [get]
func (h *PlacementHandler) Get(c *gin.Context) {
	appointments, err := h.placements.Placement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointments, nil)
}

// Check godoc
// @Summary Evaluate a placement proposal without committing it
// @Tags Placements
// @Accept json
// @Produce json
// @Param payload body service.PlaceRequest true "Placement proposal"
// @Success 200 {object} response.Envelope
// @Router /placements/check [post]
func (h *PlacementHandler) Check(c *gin.Context) {
	req, ok := h.bindProposal(c)
	if !ok {
		return
	}

	result, err := h.placements.CheckConflict(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Place godoc
// @Summary Commit a placement
// @Tags Placements
// @Accept json
// @Produce json
// @Param payload body service.PlaceRequest true "Placement proposal"
// @Success 201 {object} response.Envelope
// @Router /placements [post]
func (h *PlacementHandler) Place(c *gin.Context) {
	req, ok := h.bindProposal(c)
	if !ok {
		return
	}

	result, err := h.placements.Place(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordPlacement(false)
		response.Error(c, err)
		return
	}

	h.metrics.RecordPlacement(true)
	h.queries.Invalidate(c.Request.Context())
	response.Created(c, result)
}

// Unplace godoc
// @Summary Remove a placement and all of its fan-out replicas
// @Tags Placements
// @Produce json
// @Param id path string true "Placement ID"
// @Success 200 {object} response.Envelope
// @Router /placements/{id} [delete]
func (h *PlacementHandler) Unplace(c *gin.Context) {
	removed, err := h.placements.Unplace(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.queries.Invalidate(c.Request.Context())
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}

func (h *PlacementHandler) bindProposal(c *gin.Context) (service.PlaceRequest, bool) {
	var req service.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return req, false
	}
	req.Day = models.Weekday(strings.ToUpper(string(req.Day)))
	return req, true
}
