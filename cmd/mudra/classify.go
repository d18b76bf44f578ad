package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// maxLineSize bounds one JSON frame on stdin.
const maxLineSize = 1 << 20

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify hand landmark frames read as JSON lines from stdin",
		Long: `Reads one frame per line in the detector's format,
{"hands":[{"handedness":"Left","score":0.9,"points":[{"x":0.5,"y":0.8,"z":0}, ...]}]},
and prints {"left_hand":...,"right_hand":...,"command":...} for each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classifyStream(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func classifyStream(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(out)

	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		hands, err := detector.ParseHands(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %d: %v\n", line, err)
			continue
		}
		if err := enc.Encode(gesture.ClassifyFrame(hands)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
