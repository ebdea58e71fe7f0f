package transport

import (
	"io"
	"sync"
)

// Channel is the client end of one relay response: the header and payload
// are written to it, then it is closed. Closing twice must be harmless.
type Channel interface {
	io.Writer
	io.Closer
}

// Source is the viewer end of a relay response.
type Source interface {
	io.Reader
	io.Closer
}

// CloseOnce wraps c so that only the first Close reaches it. Later calls
// return the first call's result.
func CloseOnce(c io.WriteCloser) Channel {
	return &onceCloser{WriteCloser: c}
}

type onceCloser struct {
	io.WriteCloser
	once sync.Once
	err  error
}

func (o *onceCloser) Close() error {
	o.once.Do(func() { o.err = o.WriteCloser.Close() })
	return o.err
}
