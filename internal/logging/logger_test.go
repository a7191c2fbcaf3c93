package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Debug().Msg("hidden")
	l.Info().Str("folder_id", "abc").Msg("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug message logged at info level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "abc") {
		t.Errorf("info message missing: %q", buf.String())
	}

	buf.Reset()
	l.SetVerbose(true)
	l.Debug().Msg("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug message not logged in verbose mode: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("discarded")
	l.SetVerbose(true)
	l.Debug().Msg("discarded")
}
