package accordion

import "errors"

var (
	ErrAlreadyMounted  = errors.New("accordion anchor already mounted")
	ErrUnknownInstance = errors.New("unknown accordion instance")
	ErrUnknownItem     = errors.New("unknown accordion item")
	ErrNotExpandable   = errors.New("accordion item has no answer")
)
