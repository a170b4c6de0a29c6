package scheduler

import "errors"

var (
	ErrTooManyRunnables = errors.New("scheduler: config exceeds static maximum")
	ErrUnhealthy        = errors.New("scheduler: a runnable previously failed, dispatch halted")
)
