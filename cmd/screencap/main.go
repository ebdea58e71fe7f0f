// Command screencap is a capture producer: it writes one preamble and one
// RGBA_8888 frame of the selected display to stdout, then exits.
package main

import (
	"bufio"
	"log"
	"os"

	"github.com/junsooki/fbrelay/internal/capture"
	"github.com/junsooki/fbrelay/internal/config"
	"github.com/junsooki/fbrelay/internal/permissions"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("screencap: ")

	cfg, err := config.ParseScreencapFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if !permissions.HasScreenRecording() {
		permissions.RequestScreenRecording()
		log.Fatal("Screen Recording permission not granted. Grant it in System Settings and retry.")
	}

	frame, err := capture.Grab(cfg.DisplayIndex)
	if err != nil {
		log.Fatalf("grab: %v", err)
	}

	out := bufio.NewWriterSize(os.Stdout, 1<<20)
	if _, err := frame.WriteTo(out); err != nil {
		log.Fatalf("write frame: %v", err)
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("flush: %v", err)
	}
}
