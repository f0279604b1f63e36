package cmdexec

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_RunsCommand(t *testing.T) {
	executor := New()

	res, err := executor.Execute(context.Background(), "echo hello")

	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Output)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.EndTime.Before(res.StartTime))
}

func TestExecute_CapturesStderr(t *testing.T) {
	executor := New()

	res, err := executor.Execute(context.Background(), "echo out; echo err 1>&2")

	require.NoError(t, err)
	assert.Equal(t, "out\nerr\n", res.Output)
}

func TestExecute_NonZeroExitIsAResult(t *testing.T) {
	executor := New()

	res, err := executor.Execute(context.Background(), "command_that_does_not_exist_12345")

	require.NoError(t, err)
	assert.Equal(t, 127, res.ExitCode)
	assert.Contains(t, res.Output, "command_that_does_not_exist_12345")
}

func TestExecute_Timeout(t *testing.T) {
	executor := New(WithTimeout(50 * time.Millisecond))

	res, err := executor.Execute(context.Background(), "sleep 5")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecute_TimeoutKillsChildProcesses(t *testing.T) {
	executor := New(WithTimeout(200 * time.Millisecond))

	start := time.Now()
	res, err := executor.Execute(context.Background(), "echo started; sleep 3; echo done")
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Contains(t, res.Output, "started")
	assert.NotContains(t, res.Output, "done")
}

func TestExecute_RespectsContext(t *testing.T) {
	executor := New()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := executor.Execute(ctx, "sleep 5")

	assert.Error(t, err)
}

func TestExecute_MissingShell(t *testing.T) {
	executor := New(WithShell("/nonexistent/shell"))

	_, err := executor.Execute(context.Background(), "echo hi")

	assert.Error(t, err)
}
