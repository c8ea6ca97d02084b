package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

func readInputText(text string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(b))
	if input == "" {
		return "", fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return input, nil
}

// readInputLines returns the non-blank lines of text, or of stdin when text is empty.
func readInputLines(text string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if strings.TrimSpace(text) != "" {
		r = strings.NewReader(text)
	}

	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("either provide --text or pipe text on stdin")
	}
	return lines, nil
}

func writeOutput(outPath string, data []byte, stdout io.Writer) error {
	if outPath == "-" {
		if stdout == nil {
			return fmt.Errorf("stdout writer is nil")
		}
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
