package capture

import (
	"fmt"
	"time"

	"github.com/kbinani/screenshot"
)

// Grab captures one frame of the given display (0 = primary).
func Grab(displayIndex int) (*Frame, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if displayIndex < 0 || displayIndex >= n {
		return nil, fmt.Errorf("display index %d out of range (have %d displays)", displayIndex, n)
	}

	img, err := screenshot.CaptureDisplay(displayIndex)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", displayIndex, err)
	}
	return &Frame{Image: img, Timestamp: time.Now()}, nil
}
