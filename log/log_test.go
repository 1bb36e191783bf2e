package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	defer SetOutput(&bytes.Buffer{}, false)
	defer SetLevel(InfoLevel)

	SetLevel(InfoLevel)
	Debug.Printf("hidden %d", 1)
	Info.Printf("shown %d", 2)
	Error.Print("failure")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "shown 2", entry["message"])

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestFatalBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	defer SetOutput(&bytes.Buffer{}, false)
	defer SetLevel(InfoLevel)

	SetLevel(InfoLevel)
	Debug.Fatalf("hidden %d", 1)
	Debug.Fatal("hidden")

	SetLevel(DisabledLevel)
	Error.Fatal("hidden")
	assert.Empty(t, buf.String())
}

func TestSetLevelByName(t *testing.T) {
	defer SetLevel(InfoLevel)

	testCases := []struct {
		name  string
		level Level
		ok    bool
	}{
		{"debug", DebugLevel, true},
		{"ERROR", ErrorLevel, true},
		{"disabled", DisabledLevel, true},
		{"verbose", DisabledLevel, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, SetLevelByName(tc.name))
			assert.Equal(t, tc.level, CurrentLevel())
		})
	}
}
