package buildinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLdflagsWin(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02T03:04:05Z"
	i := Get()
	assert.Equal(t, "v1.2.3", i.Version)
	assert.Equal(t, "abc123", i.Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", i.Date)
	assert.True(t, strings.HasPrefix(i.GoVersion, "go"))

	assert.Contains(t, String(), "version: v1.2.3\ncommit: abc123")
	assert.Equal(t, "{{.Name}} version v1.2.3\ncommit: abc123\nbuilt: 2026-01-02T03:04:05Z\n", Template())
}
