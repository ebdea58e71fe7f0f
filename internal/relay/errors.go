package relay

import "errors"

var (
	ErrSpawn             = errors.New("relay: spawn producer failed")
	ErrShortRead         = errors.New("relay: short read from producer")
	ErrShortWrite        = errors.New("relay: short write to output")
	ErrUnsupportedFormat = errors.New("relay: unsupported pixel format")
	ErrFrameTooLarge     = errors.New("relay: frame too large for wire header")
)
