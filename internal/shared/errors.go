package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrUnauthenticated = fmt.Errorf("authentication required")
	ErrInvalidToken    = fmt.Errorf("invalid or expired token")

	// Domain errors, mapped to HTTP status codes by the server package
	ErrNotFound         = fmt.Errorf("not found")
	ErrPermissionDenied = fmt.Errorf("permission denied")
	ErrInvalidRequest   = fmt.Errorf("invalid request")
	ErrConflict         = fmt.Errorf("conflict")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
