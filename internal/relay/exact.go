package relay

import (
	"fmt"
	"io"
)

// readExact fills buf from r or fails with ErrShortRead.
func readExact(r io.Reader, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if n, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: got %d of %d bytes: %v", ErrShortRead, n, len(buf), err)
	}
	return nil
}

// writeExact writes all of buf to w or fails with ErrShortWrite.
func writeExact(w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		written += n
		if err != nil {
			return fmt.Errorf("%w: wrote %d of %d bytes: %v", ErrShortWrite, written, len(buf), err)
		}
		if n == 0 {
			return fmt.Errorf("%w: wrote %d of %d bytes: %v", ErrShortWrite, written, len(buf), io.ErrShortWrite)
		}
	}
	return nil
}
