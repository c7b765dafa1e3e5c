package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cricket-live/internal/infrastructure/source/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--source", "memory"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"live", "schedules", "match", "watch"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "schedules")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLive_ListText(t *testing.T) {
	out, err := execute(t, "live")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "MATCH"))
	assert.True(t, strings.HasPrefix(lines[1], "101"))
}

func TestLive_NotLive(t *testing.T) {
	_, err := execute(t, "live", "102")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "not live")
}

func TestSchedules_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "schedules")
	require.NoError(t, err)

	var items []map[string]any
	require.NoError(t, sonic.Unmarshal([]byte(out), &items))
	require.Len(t, items, 3)
	assert.Contains(t, items[0], "match_id")
}

func TestMatch_Resolution(t *testing.T) {
	tests := []struct {
		id     string
		source string
	}{
		{id: "101", source: "live"},
		{id: "102", source: "schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			out, err := execute(t, "--format", "yaml", "match", tt.id)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, yaml.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.source, got["source"])
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	_, err := execute(t, "match", "abc")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "match", "999")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "999\tabsent")
}

func TestWatch_Count(t *testing.T) {
	out, err := execute(t, "--format", "json", "watch", "101", "--count", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first, second resolutionOutput
	require.NoError(t, sonic.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, sonic.Unmarshal([]byte(lines[1]), &second))
	assert.True(t, first.Resolving)
	assert.Equal(t, "live", second.Source)
	require.NotNil(t, second.Live)
	assert.EqualValues(t, memory.MatchIDIndAus, second.Live.MatchID)
}
