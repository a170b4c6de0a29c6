package signal

import "errors"

var (
	ErrTooManySignals = errors.New("signal: config exceeds static maximum")
	ErrNotInitialized = errors.New("signal: bus not initialized")
	ErrUnknownSignal  = errors.New("signal: id not present in configured table")
)
