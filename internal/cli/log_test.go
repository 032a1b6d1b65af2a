package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, LogInfo)
	l.Debug("grid searched", "cells", 120)
	assert.Empty(t, buf.String())

	l.SetLevel(LogDebug)
	l.Debug("grid searched", "cells", 120)
	assert.Contains(t, buf.String(), "cells=120")
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("routed scenes", "count", 2)

	out := buf.String()
	assert.Contains(t, out, "routed scenes")
	assert.Contains(t, out, "count=2")
	assert.Contains(t, out, "elapsed=")
}
