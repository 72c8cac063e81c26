package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Samuel1505/Event-Ticketing/internal/dto"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/pkg/response"
)

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	ledgerService service.LedgerService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ledgerService service.LedgerService) *TicketHandler {
	return &TicketHandler{
		ledgerService: ledgerService,
	}
}

// GetByID handles GET /events/:id/tickets/:ticketId
func (h *TicketHandler) GetByID(c *gin.Context) {
	eventID, ticketID, ok := ticketParams(c)
	if !ok {
		return
	}

	ticket, err := h.ledgerService.GetTicket(c.Request.Context(), eventID, ticketID)
	if err != nil {
		writeError(c, err, "Failed to get ticket")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.FromTicket(ticket)))
}

// IsVerified handles GET /events/:id/tickets/:ticketId/verified
func (h *TicketHandler) IsVerified(c *gin.Context) {
	eventID, ticketID, ok := ticketParams(c)
	if !ok {
		return
	}

	verified, err := h.ledgerService.IsVerifiedTicket(c.Request.Context(), eventID, ticketID)
	if err != nil {
		writeError(c, err, "Failed to get ticket status")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.TicketVerifiedResponse{
		EventID:  eventID,
		TicketID: ticketID,
		Verified: verified,
	}))
}

// Verify handles POST /events/:id/tickets/:ticketId/verify - organizer only
func (h *TicketHandler) Verify(c *gin.Context) {
	eventID, ticketID, ok := ticketParams(c)
	if !ok {
		return
	}

	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	ticket, first, err := h.ledgerService.VerifyAttendance(c.Request.Context(), caller, eventID, ticketID)
	if err != nil {
		writeError(c, err, "Failed to verify ticket")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.VerifyTicketResponse{
		Ticket:          dto.FromTicket(ticket),
		AlreadyVerified: !first,
	}))
}

// Transfer handles POST /events/:id/tickets/:ticketId/transfer - holder only
func (h *TicketHandler) Transfer(c *gin.Context) {
	eventID, ticketID, ok := ticketParams(c)
	if !ok {
		return
	}

	var req dto.TransferTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	ticket, err := h.ledgerService.TransferTicket(c.Request.Context(), caller, eventID, ticketID, req.Recipient)
	if err != nil {
		writeError(c, err, "Failed to transfer ticket")
		return
	}

	c.JSON(http.StatusOK, response.Success(dto.FromTicket(ticket)))
}

func ticketParams(c *gin.Context) (eventID, ticketID uint64, ok bool) {
	if eventID, ok = uintParam(c, "id"); !ok {
		return 0, 0, false
	}
	if ticketID, ok = uintParam(c, "ticketId"); !ok {
		return 0, 0, false
	}
	return eventID, ticketID, true
}
