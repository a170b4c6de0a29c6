package platform

import "errors"

var (
	ErrIllegalArgument   = errors.New("platform: illegal argument")
	ErrMailboxUnset      = errors.New("platform: mailbox has no subscription")
	ErrMailboxExhausted  = errors.New("platform: no free mailbox slots")
	ErrNoSuchBlock       = errors.New("platform: no such NVM block id")
	ErrBlockSizeMismatch = errors.New("platform: buffer does not match NVM block size")
	ErrBusOff            = errors.New("platform: bus is off, transmit refused")
)
