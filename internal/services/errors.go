package services

import "errors"

// Domain errors. Each one means the operation's transaction was rolled back
// cleanly; callers match with errors.Is. Anything else coming out of a
// service is an infrastructure fault.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrOutOfStock         = errors.New("out of stock")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrPinInvalid         = errors.New("unknown pin")
	ErrPinAlreadyUsed     = errors.New("pin already used")
	ErrDuplicateName      = errors.New("product name already exists")
	ErrDuplicatePin       = errors.New("pin already exists")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
