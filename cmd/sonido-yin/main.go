// Command sonido-yin estimates the pitch of audio files with the YIN
// algorithm.
//
// Usage:
//
//	sonido-yin [flags] <command> [args]
//
// Commands:
//
//	analyze - per-frame pitch estimates for an audio file
//	note    - map frequencies to the nearest note
//	tune    - run the tuner loop over an audio file
package main

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/sonido-yin/cmd/sonido-yin/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
