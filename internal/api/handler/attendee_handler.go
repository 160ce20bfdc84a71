package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eventhub/events-api/internal/core/ports"
)

// AttendeeHandler exposes the attendance registry.
type AttendeeHandler struct {
	service ports.AttendanceService
}

func NewAttendeeHandler(service ports.AttendanceService) *AttendeeHandler {
	return &AttendeeHandler{service: service}
}

// ListForEvent handles GET /attendees/:eventId.
//
// @Summary      List attendees of an event
// @Tags         attendees
// @Produce      json
// @Param        eventId  path      string  true  "Event id"
// @Success      200      {array}   eventAttendeeResponse
// @Failure      404      {object}  errorResponse
// @Router       /attendees/{eventId} [get]
func (h *AttendeeHandler) ListForEvent(c echo.Context) error {
	list, err := h.service.ListForEvent(c.Request().Context(), c.Param("eventId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventAttendeeResponses(list))
}

// ListForUser handles GET /attendees/user/:userId.
//
// @Summary      List attendances of a user
// @Tags         attendees
// @Produce      json
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  attendancesResponse
// @Failure      400     {object}  errorResponse
// @Router       /attendees/user/{userId} [get]
func (h *AttendeeHandler) ListForUser(c echo.Context) error {
	list, err := h.service.ListForUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attendancesResponse{Attendances: toAttendeeResponses(list)})
}

// Register handles POST /attendees/:eventId. The body userId defaults to
// the caller.
//
// @Summary      Register for an event
// @Tags         attendees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        eventId  path      string                   true   "Event id"
// @Param        body     body      registerAttendeeRequest  false  "Target user"
// @Success      200      {object}  registerAttendeeResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /attendees/{eventId} [post]
func (h *AttendeeHandler) Register(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	var req registerAttendeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	attendee, err := h.service.Register(c.Request().Context(), c.Param("eventId"), req.UserID, caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, registerAttendeeResponse{
		Message:  "Attendee registered successfully",
		Attendee: toAttendeeResponse(attendee),
	})
}

// Cancel handles DELETE /attendees/event/:eventId.
//
// @Summary      Cancel own registration
// @Tags         attendees
// @Produce      json
// @Security     BearerAuth
// @Param        eventId  path      string  true  "Event id"
// @Success      200      {object}  cancelAttendanceResponse
// @Failure      401      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /attendees/event/{eventId} [delete]
func (h *AttendeeHandler) Cancel(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	remaining, err := h.service.Cancel(c.Request().Context(), c.Param("eventId"), caller)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cancelAttendanceResponse{
		Message:   "Attendance cancelled",
		Attendees: orEmpty(remaining),
	})
}

// Reconcile handles POST /attendees/:eventId/reconcile (admin only).
//
// @Summary      Repair attendance links of an event
// @Tags         attendees
// @Produce      json
// @Security     BearerAuth
// @Param        eventId  path      string  true  "Event id"
// @Success      200      {object}  reconcileResponse
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /attendees/{eventId}/reconcile [post]
func (h *AttendeeHandler) Reconcile(c echo.Context) error {
	res, err := h.service.Reconcile(c.Request().Context(), c.Param("eventId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reconcileResponse{
		Message:           "Attendance reconciled",
		EventID:           res.EventID,
		Attendees:         res.Attendees,
		EventLinksAdded:   res.EventLinksAdded,
		EventLinksRemoved: res.EventLinksRemoved,
		UserLinksAdded:    res.UserLinksAdded,
		UserLinksRemoved:  res.UserLinksRemoved,
	})
}
