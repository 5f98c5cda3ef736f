// Package usagefile reads meter readings written down by hand, one
// "YYYY-MM-DD <usage>" pair per line.
package usagefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
)

const dateLayout = "2006-01-02"

var ErrMalformedLine = errors.New("malformed reading")

type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *LineError) Is(target error) bool {
	return target == ErrMalformedLine
}

// Parse reads readings in file order. Blank lines and lines starting with
// '#' are skipped.
func Parse(r io.Reader) ([]types.DatedReading, error) {
	var readings []types.DatedReading
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, &LineError{Line: lineNo, Text: line, Reason: "expected a date and a usage value"}
		}
		date, err := time.Parse(dateLayout, fields[0])
		if err != nil {
			return nil, &LineError{Line: lineNo, Text: line, Reason: "date must be YYYY-MM-DD"}
		}
		usage, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, &LineError{Line: lineNo, Text: line, Reason: "usage is not a number"}
		}
		readings = append(readings, types.DatedReading{Date: date, Usage: usage})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading usage data: %w", err)
	}
	return readings, nil
}

// ReadFile parses the readings stored at path.
func ReadFile(path string) ([]types.DatedReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	readings, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readings, nil
}
