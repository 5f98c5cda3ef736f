package usagefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `# gas meter, m³
2024-01-03 10234.5

2024-03-17 10690
2024-07-01	10912.25
`
	readings, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []types.DatedReading{
		{Date: time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), Usage: 10234.5},
		{Date: time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC), Usage: 10690},
		{Date: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), Usage: 10912.25},
	}, readings)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		reason string
	}{
		{name: "missing usage", input: "2024-01-03\n", line: 1, reason: "expected a date"},
		{name: "bad date", input: "2024-01-03 1\n03.01.2024 2\n", line: 2, reason: "YYYY-MM-DD"},
		{name: "bad usage", input: "# header\n2024-01-03 12,5\n", line: 2, reason: "not a number"},
		{name: "extra field", input: "2024-01-03 1 m3\n", line: 1, reason: "expected a date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedLine)
			var lineErr *LineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.line, lineErr.Line)
			assert.Contains(t, lineErr.Reason, tt.reason)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage_data.txt")
	require.NoError(t, os.WriteFile(path, []byte("2023-12-30 100\n2024-01-02 104\n"), 0644))

	readings, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 104.0, readings[1].Usage)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
