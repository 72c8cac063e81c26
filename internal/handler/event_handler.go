package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Samuel1505/Event-Ticketing/internal/dto"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	ledgerService service.LedgerService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(ledgerService service.LedgerService) *EventHandler {
	return &EventHandler{
		ledgerService: ledgerService,
	}
}

// Create handles POST /events - creates a new event organized by the caller
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	organizer, ok := requireIdentity(c)
	if !ok {
		return
	}

	event, err := h.ledgerService.CreateEvent(c.Request.Context(), organizer, req.ToParams())
	if err != nil {
		writeError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.FromEvent(event)))
}

// List handles GET /events - lists events after a cursor
func (h *EventHandler) List(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	filter.SetDefaults()

	events, err := h.ledgerService.ListEvents(c.Request.Context(), filter.After, filter.Limit)
	if err != nil {
		writeError(c, err, "Failed to list events")
		return
	}

	eventResponses := make([]*dto.EventResponse, len(events))
	next := filter.After
	for i, event := range events {
		eventResponses[i] = dto.FromEvent(event)
		next = event.ID
	}

	hasMore := next < h.ledgerService.EventCount(c.Request.Context())
	c.JSON(http.StatusOK, response.Page(eventResponses, filter.Limit, next, hasMore))
}

// Count handles GET /events/count - returns the id of the latest event
func (h *EventHandler) Count(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(dto.EventCountResponse{
		EventCount: h.ledgerService.EventCount(c.Request.Context()),
	}))
}

// GetByID handles GET /events/:id - retrieves an event by id
func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	event, err := h.ledgerService.GetEvent(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.FromEvent(event)))
}

// Register handles POST /events/:id/register - registers the caller and mints a ticket
func (h *EventHandler) Register(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
			return
		}
	}

	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	ticket, err := h.ledgerService.RegisterForEvent(c.Request.Context(), caller, id, req.Payment)
	if err != nil {
		writeError(c, err, "Failed to register for event")
		return
	}

	c.JSON(http.StatusCreated, response.Success(dto.FromTicket(ticket)))
}

// GetRegistration handles GET /events/:id/registrations/:identity
func (h *EventHandler) GetRegistration(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	identity := c.Param("identity")

	registered, err := h.ledgerService.GetHasRegistered(c.Request.Context(), id, identity)
	if err != nil {
		writeError(c, err, "Failed to get registration")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.RegistrationStatusResponse{
		EventID:    id,
		Identity:   identity,
		Registered: registered,
	}))
}

// GetLedger handles GET /events/:id/ledger - returns ticket ledger metadata
func (h *EventHandler) GetLedger(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	info, err := h.ledgerService.GetLedger(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to get ticket ledger")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.FromLedgerInfo(info)))
}

// GetBalance handles GET /events/:id/ledger/balances/:identity
func (h *EventHandler) GetBalance(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	identity := c.Param("identity")

	balance, err := h.ledgerService.BalanceOf(c.Request.Context(), id, identity)
	if err != nil {
		writeError(c, err, "Failed to get balance")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.BalanceResponse{
		EventID:  id,
		Identity: identity,
		Balance:  balance,
	}))
}
