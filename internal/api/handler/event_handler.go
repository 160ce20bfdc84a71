package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eventhub/events-api/internal/core/ports"
)

// EventHandler serves the event catalogue.
type EventHandler struct {
	service ports.EventService
}

func NewEventHandler(service ports.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// List handles GET /events.
//
// @Summary      List events
// @Tags         events
// @Produce      json
// @Param        title     query     string  false  "Title substring"
// @Param        location  query     string  false  "Exact location"
// @Param        category  query     string  false  "Category"
// @Param        minPrice  query     number  false  "Minimum price"
// @Param        maxPrice  query     number  false  "Maximum price"
// @Param        minDate   query     string  false  "Earliest date"
// @Param        maxDate   query     string  false  "Latest date"
// @Param        page      query     int     false  "Page (default 1)"
// @Param        limit     query     int     false  "Page size (default 10, max 100)"
// @Success      200       {object}  eventListResponse
// @Failure      400       {object}  errorResponse
// @Router       /events [get]
func (h *EventHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context(), ports.ListEventsInput{
		Title:    c.QueryParam("title"),
		Location: c.QueryParam("location"),
		Category: c.QueryParam("category"),
		MinPrice: c.QueryParam("minPrice"),
		MaxPrice: c.QueryParam("maxPrice"),
		MinDate:  c.QueryParam("minDate"),
		MaxDate:  c.QueryParam("maxDate"),
		Page:     c.QueryParam("page"),
		Limit:    c.QueryParam("limit"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, eventListResponse{
		Events:     toEventResponses(list.Items),
		Total:      list.Total,
		Page:       list.Page,
		Limit:      list.Limit,
		TotalPages: list.TotalPages,
	})
}

// Get handles GET /events/:id.
//
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event id"
// @Success      200  {object}  eventResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponse(view))
}

// SearchByTitle handles GET /events/search/title/:title.
//
// @Summary      Search events by title
// @Tags         events
// @Produce      json
// @Param        title  path      string  true  "Title substring"
// @Success      200    {array}   eventResponse
// @Failure      400    {object}  errorResponse
// @Router       /events/search/title/{title} [get]
func (h *EventHandler) SearchByTitle(c echo.Context) error {
	views, err := h.service.SearchByTitle(c.Request().Context(), c.Param("title"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponses(views))
}

// SearchByDate handles GET /events/search/date/:date.
//
// @Summary      Search events on a calendar day
// @Tags         events
// @Produce      json
// @Param        date  path      string  true  "Date (YYYY-MM-DD)"
// @Success      200   {array}   eventResponse
// @Failure      400   {object}  errorResponse
// @Router       /events/search/date/{date} [get]
func (h *EventHandler) SearchByDate(c echo.Context) error {
	views, err := h.service.SearchByDate(c.Request().Context(), c.Param("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponses(views))
}

// Create handles POST /events/create. Accepts JSON or a multipart form with
// an optional "img" file.
//
// @Summary      Create an event
// @Tags         events
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      eventRequest  true  "Event fields"
// @Success      201   {object}  createEventResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /events/create [post]
func (h *EventHandler) Create(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	req, img, closeImg, err := readEventRequest(c)
	if err != nil {
		return err
	}
	defer closeImg()

	view, err := h.service.Create(c.Request().Context(), ports.CreateEventInput{
		Title:       deref(req.Title),
		Category:    deref(req.Category),
		Date:        deref(req.Date),
		Location:    deref(req.Location),
		Description: deref(req.Description),
		Price:       derefNumber(req.Price),
		ImgURL:      deref(req.Img),
		Image:       img,
		Caller:      caller,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createEventResponse{
		Message: "Event created successfully",
		Event:   toEventResponse(view),
	})
}

// Update handles PUT /events/:id. Only the creator or an admin may update.
//
// @Summary      Update an event
// @Tags         events
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Event id"
// @Param        body  body      eventRequest  true  "Fields to change"
// @Success      200   {object}  updateEventResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}

	req, img, closeImg, err := readEventRequest(c)
	if err != nil {
		return err
	}
	defer closeImg()

	in := ports.UpdateEventInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Category:    req.Category,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
		ImgURL:      req.Img,
		Image:       img,
		Caller:      caller,
	}
	if req.Price != nil {
		p := req.Price.String()
		in.Price = &p
	}

	view, err := h.service.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateEventResponse{
		Message:      "Event updated successfully",
		UpdatedEvent: toEventViewFor(view, caller),
	})
}

// Delete handles DELETE /events/:id.
//
// @Summary      Delete an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Event id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), caller); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Event deleted successfully"})
}

// readEventRequest decodes the event fields from JSON or multipart form
// data. The returned close func is always safe to call.
func readEventRequest(c echo.Context) (eventRequest, *ports.ImageUpload, func(), error) {
	noop := func() {}
	var req eventRequest

	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := c.Bind(&req); err != nil {
			return req, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		return req, nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	req.Title = formValue(form, "title")
	req.Category = formValue(form, "category")
	req.Date = formValue(form, "date")
	req.Location = formValue(form, "location")
	req.Description = formValue(form, "description")
	req.Img = formValue(form, "img")
	if p := formValue(form, "price"); p != nil {
		n := json.Number(strings.TrimSpace(*p))
		req.Price = &n
	}

	img, closeImg, err := openImage(form, "img")
	if err != nil {
		return req, nil, noop, err
	}
	return req, img, closeImg, nil
}

func formValue(form *multipart.Form, name string) *string {
	vals, ok := form.Value[name]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}

// openImage opens the first file of field name, or returns nil when none
// was sent.
func openImage(form *multipart.Form, name string) (*ports.ImageUpload, func(), error) {
	files := form.File[name]
	if len(files) == 0 {
		return nil, func() {}, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return &ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefNumber(n *json.Number) string {
	if n == nil {
		return ""
	}
	return n.String()
}
