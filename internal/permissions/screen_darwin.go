//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework CoreGraphics
#include <CoreGraphics/CoreGraphics.h>

// Available since macOS 10.15.
int hasScreenRecordingPermission() {
    return CGPreflightScreenCaptureAccess();
}

int requestScreenRecordingPermission() {
    return CGRequestScreenCaptureAccess();
}
*/
import "C"

// HasScreenRecording reports whether the process may capture the screen.
func HasScreenRecording() bool {
	return C.hasScreenRecordingPermission() != 0
}

// RequestScreenRecording asks macOS for Screen Recording permission. It
// returns true if already granted; otherwise the system shows a dialog and
// the producer must be restarted after the user grants it.
func RequestScreenRecording() bool {
	return C.requestScreenRecordingPermission() != 0
}
