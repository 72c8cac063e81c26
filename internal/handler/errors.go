package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/pkg/middleware"
	"github.com/Samuel1505/Event-Ticketing/pkg/response"
)

// rejectionStatus maps each rejection kind to its HTTP status and error code
var rejectionStatus = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrInvalidSchedule, http.StatusBadRequest, response.ErrCodeBadRequest},
	{domain.ErrInvalidFeePolicy, http.StatusBadRequest, response.ErrCodeBadRequest},
	{domain.ErrInvalidCapacity, http.StatusBadRequest, response.ErrCodeBadRequest},
	{domain.ErrInvalidTransfer, http.StatusBadRequest, response.ErrCodeBadRequest},
	{domain.ErrPaymentError, http.StatusPaymentRequired, response.ErrCodePaymentRequired},
	{domain.ErrUnauthorized, http.StatusForbidden, response.ErrCodeForbidden},
	{domain.ErrNotFound, http.StatusNotFound, response.ErrCodeNotFound},
	{domain.ErrAlreadyRegistered, http.StatusConflict, response.ErrCodeConflict},
	{domain.ErrCapacityExceeded, http.StatusConflict, response.ErrCodeConflict},
	{domain.ErrExpired, http.StatusGone, response.ErrCodeGone},
}

// writeError writes a ledger rejection with its reason, or a generic
// internal error for anything else
func writeError(c *gin.Context, err error, fallback string) {
	for _, r := range rejectionStatus {
		if errors.Is(err, r.kind) {
			c.JSON(r.status, response.Rejection(r.code, domain.KindName(r.kind), err.Error()))
			return
		}
	}
	c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
}

// requireIdentity returns the caller identity or aborts with 401
func requireIdentity(c *gin.Context) (string, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Unauthorized("Caller identity not found in token"))
		return "", false
	}
	return identity, true
}

// uintParam parses an unsigned integer path parameter or writes 400. Zero
// parses fine; the ledger reports it as a missing event or ticket.
func uintParam(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid "+name))
		return 0, false
	}
	return v, true
}
