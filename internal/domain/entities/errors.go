package entities

import "errors"

// Error taxonomy shared by every layer. Adapters wrap these with %w.
var (
	ErrConfigNotFound   = errors.New("configuration file not found")
	ErrUnauthorizedPath = errors.New("path outside allowed directories")
	ErrOracleTransport  = errors.New("oracle transport failure")
	ErrResponseParse    = errors.New("oracle response could not be parsed")
	ErrFileSystem       = errors.New("filesystem operation failed")
	ErrModuleDisabled   = errors.New("module disabled")
	ErrNotFound         = errors.New("not found")
)
