// detect-markers transcribes a Japanese audio file and prints the times at
// which the speaker asks for the next slide, as a JSON array of seconds.
//
// Usage: detect-markers <audio_path> [--model <name>]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"slidemark/internal/asr"
	"slidemark/internal/marker"
)

func main() {
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(stderr, "Usage: detect-markers <audio_path> [--model <name>] [--transcript-out <path>]")
		fmt.Fprintln(stderr, "Models: tiny, base, small (default), medium, reazonspeech")
		return 1
	}

	audioPath := args[0]

	fs := flag.NewFlagSet("detect-markers", flag.ContinueOnError)
	fs.SetOutput(stderr)
	model := fs.String("model", asr.DefaultModel, "speech recognition model")
	transcriptOut := fs.String("transcript-out", "", "write the full transcription JSON to this file")
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		printError(stdout, fmt.Sprintf("File not found: %s", audioPath))
		return 1
	}

	config := asr.DefaultConfig(*model)

	provider, err := asr.NewProvider(config)
	if err != nil {
		printError(stdout, err.Error())
		return 1
	}
	defer provider.Close()

	// Progress goes to stderr so stdout stays machine-readable
	result, err := provider.Transcribe(audioPath, func(progress int, step string) {
		if step != "" {
			fmt.Fprintf(stderr, "[%3d%%] %s\n", progress, step)
		}
	})
	if err != nil {
		printError(stdout, err.Error())
		return 1
	}

	if *transcriptOut != "" {
		transcript, err := result.FormatAsJSON()
		if err == nil {
			err = os.WriteFile(*transcriptOut, []byte(transcript), 0644)
		}
		if err != nil {
			fmt.Fprintf(stderr, "failed to write transcript: %v\n", err)
		}
	}

	transitions := marker.Detect(result.Segments)

	output, err := json.Marshal(transitions)
	if err != nil {
		printError(stdout, err.Error())
		return 1
	}
	fmt.Fprintln(stdout, string(output))
	return 0
}

// printError writes a JSON error object to stdout so callers parsing the
// output always get valid JSON
func printError(w io.Writer, message string) {
	output, _ := json.Marshal(map[string]string{"error": message})
	fmt.Fprintln(w, string(output))
}
