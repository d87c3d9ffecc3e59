package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/response"
)

// ScheduleHandler serves read-only timetable views and exports.
type ScheduleHandler struct {
	queries *service.ScheduleQueryService
	exports *service.ExportService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(queries *service.ScheduleQueryService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{queries: queries, exports: exports}
}

// Week godoc
// @Summary Get the committed week of one department and level
// @Tags Schedules
// @Produce json
// @Param department query string true "Department"
// @Param level query string true "Level"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	view, err := h.queries.Week(c.Request.Context(), c.Query("department"), c.Query("level"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Instructor godoc
// @Summary Get an instructor's committed week across departments
// @Tags Schedules
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/schedule [get]
func (h *ScheduleHandler) Instructor(c *gin.Context) {
	view, err := h.queries.Instructor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Room godoc
// @Summary Get a room's committed week
// @Tags Schedules
// @Produce json
// @Param name path string true "Room name"
// @Success 200 {object} response.Envelope
// @Router /rooms/{name}/schedule [get]
func (h *ScheduleHandler) Room(c *gin.Context) {
	view, err := h.queries.Room(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Rooms godoc
// @Summary List the room inventory
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *ScheduleHandler) Rooms(c *gin.Context) {
	rooms, err := h.queries.Rooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Export godoc
// @Summary Download the weekly timetable of one department and level as PDF
// @Tags Schedules
// @Produce application/pdf
// @Param department query string true "Department"
// @Param level query string true "Level"
// @Success 200 {file} binary
// @Router /schedules/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	payload, filename, err := h.exports.WeeklyPDF(c.Request.Context(), c.Query("department"), c.Query("level"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
