package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWindow          = errors.New("invalid time window")
	ErrEventExpired           = errors.New("event expired")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNotFound               = errors.New("not found")
	ErrInvalidPolicy          = errors.New("invalid slot policy")
	ErrInvalidEvent           = errors.New("invalid event")
)

// WindowError 指出提交中第几个时间段不合法
type WindowError struct {
	Index  int
	Window TimeWindow
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window %d [%d, %d): start must be before end", e.Index, e.Window.Start, e.Window.End)
}

func (e *WindowError) Unwrap() error {
	return ErrInvalidWindow
}
