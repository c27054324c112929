package contract

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnknownTool     = errors.New("tool is not available on the active agent")
	ErrUnknownAgent    = errors.New("agent is not registered")
	ErrIllegalTransfer = errors.New("transfer target is not a declared downstream agent")
	ErrUnknownSession  = errors.New("session not found")
)
