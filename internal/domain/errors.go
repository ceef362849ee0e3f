package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Purchase flow errors
	ErrAuthRequired        = errors.New("authentication required")
	ErrAttemptInFlight     = errors.New("payment attempt already in flight")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrOrderCreationFailed = errors.New("failed to create payment order")
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrInvalidSignature    = errors.New("invalid payment signature")
	ErrPaymentDeclined     = errors.New("payment declined by gateway")
	ErrOrderNotPending     = errors.New("order is not pending")
)
