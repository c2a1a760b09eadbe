package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("stage", "cleaning").Msg("stage started")

	out := buf.String()
	if !strings.Contains(out, `"stage":"cleaning"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, "stage started") {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), log)
	got := FromContext(ctx)

	got.Info().Msg("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("logger from context did not write to the original writer")
	}
}
