package allocation

import "errors"

// Edit errors returned by the engine when a user-driven change is refused.
var (
	ErrEntryNotFound       = errors.New("allocation entry not found")
	ErrNegativeAmount      = errors.New("allocated amount cannot be negative")
	ErrInvalidExchangeRate = errors.New("exchange rate must be greater than zero")
	ErrRatePinned          = errors.New("exchange rate is fixed to 1 for invoices in the payment currency")
	ErrUnknownCurrency     = errors.New("unknown currency")
)
