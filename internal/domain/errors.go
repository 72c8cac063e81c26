package domain

import "errors"

// Rejection kinds. Every ledger rejection wraps exactly one of these.
var (
	ErrInvalidSchedule   = errors.New("invalid schedule")
	ErrInvalidFeePolicy  = errors.New("invalid fee policy")
	ErrInvalidCapacity   = errors.New("invalid capacity")
	ErrNotFound          = errors.New("not found")
	ErrExpired           = errors.New("expired")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPaymentError      = errors.New("payment error")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrInvalidTransfer   = errors.New("invalid transfer")
)

// Rejection reasons surfaced to callers
const (
	ReasonStartNotInFuture  = "START DATE MUST BE IN FUTURE"
	ReasonEndBeforeStart    = "ENDDATE MUST BE GREATER"
	ReasonFeeRequired       = "Fee Required For a Paid Event"
	ReasonNoFeeRequired     = "NO Fee Required!!"
	ReasonCapacityZero      = "CAPACITY MUST BE GREATER THAN ZERO"
	ReasonEventNotFound     = "EVENT DOESNT EXIST"
	ReasonTicketNotFound    = "TICKET DOESNT EXIST"
	ReasonEventEnded        = "EVENT HAS ENDED"
	ReasonRegistrationFull  = "REGISTRATION CLOSED"
	ReasonOnlyOrganizer     = "ONLY ORGANIZER CAN VERIFY"
	ReasonOnlyHolder        = "ONLY HOLDER CAN TRANSFER"
	ReasonInsufficientFunds = "INSUFFICIENT PAYMENT"
	ReasonAlreadyRegistered = "ALREADY REGISTERED"
	ReasonInvalidRecipient  = "INVALID RECIPIENT"
)

// LedgerError is a rejection of a whole ledger operation. Error returns the
// reason; errors.Is matches the kind.
type LedgerError struct {
	Kind   error
	Reason string
}

func (e *LedgerError) Error() string {
	return e.Reason
}

func (e *LedgerError) Unwrap() error {
	return e.Kind
}

// Reject builds a LedgerError of the given kind
func Reject(kind error, reason string) error {
	return &LedgerError{Kind: kind, Reason: reason}
}

// KindOf returns the rejection kind of err, or nil if err is not a ledger rejection
func KindOf(err error) error {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return nil
}

// KindName returns the stable name of a rejection kind, as used in API
// error bodies and metric labels
func KindName(kind error) string {
	switch kind {
	case ErrInvalidSchedule:
		return "InvalidSchedule"
	case ErrInvalidFeePolicy:
		return "InvalidFeePolicy"
	case ErrInvalidCapacity:
		return "InvalidCapacity"
	case ErrNotFound:
		return "NotFound"
	case ErrExpired:
		return "Expired"
	case ErrCapacityExceeded:
		return "CapacityExceeded"
	case ErrUnauthorized:
		return "Unauthorized"
	case ErrPaymentError:
		return "PaymentError"
	case ErrAlreadyRegistered:
		return "AlreadyRegistered"
	case ErrInvalidTransfer:
		return "InvalidTransfer"
	}
	return "Unknown"
}
