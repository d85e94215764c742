package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a request is rejected before any write.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCustomerIDRequired is returned when customer id is empty.
	ErrCustomerIDRequired = fmt.Errorf("%w: customerId is required", ErrInvalidArgument)
	// ErrItemRequired is returned when item is empty.
	ErrItemRequired = fmt.Errorf("%w: item is required", ErrInvalidArgument)
	// ErrWriteFailed is returned when the command log did not acknowledge an append.
	ErrWriteFailed = errors.New("write failed")
	// ErrVisibilityTimeout is returned under the strict policy when the view did not show a write in time.
	ErrVisibilityTimeout = errors.New("write not visible before deadline")
	// ErrOrderNotFound is returned when the view has no entry for an order.
	ErrOrderNotFound = errors.New("order not found")
)
