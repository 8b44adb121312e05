package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/warp/budget-engine/logger"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	log.Info().Str("user", "local").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"user":"local"`) || !strings.Contains(out, "hello") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	ctx := logger.WithContext(context.Background(), log)
	ctxLog := logger.FromContext(ctx)
	ctxLog.Info().Msg("from context")

	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("expected the context logger to write to the original buffer")
	}
}
