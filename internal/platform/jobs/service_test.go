package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineRunsSynchronously(t *testing.T) {
	var runner Runner = Inline{}
	calls := 0

	out, err := runner.RunNow(context.Background(), JobPayrollGenerate, "u-1", func(context.Context) (any, error) {
		calls++
		return map[string]int{"generated": 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]int{"generated": 2}, out)

	boom := errors.New("boom")
	_, err = runner.RunNow(context.Background(), JobPayrollGenerate, "", func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestInlinePassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	_, err := Inline{}.RunNow(ctx, JobPayrollGenerate, "", func(got context.Context) (any, error) {
		assert.Equal(t, "v", got.Value(key{}))
		return nil, nil
	})
	require.NoError(t, err)
}
