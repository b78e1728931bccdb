package controller

import "errors"

var (
	ErrNilBody        = errors.New("controller body is nil")
	ErrNilRaycaster   = errors.New("controller raycaster is nil")
	ErrNilView        = errors.New("controller view source is nil")
	ErrNilLookTarget  = errors.New("controller look target is nil")
	ErrNilInput       = errors.New("controller input map is nil")
	ErrInvalidParams  = errors.New("invalid controller parameters")
	ErrAlreadyStarted = errors.New("controller already started")
	ErrNotStarted     = errors.New("controller not started")
)
