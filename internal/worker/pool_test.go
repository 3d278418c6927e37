package worker

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteKeepsInputOrder(t *testing.T) {
	t.Parallel()

	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}
	pool := NewPool(8, func(_ context.Context, n int) (string, error) {
		return strconv.Itoa(n * 2), nil
	})

	tasks := pool.Execute(context.Background(), inputs)
	require.Len(t, tasks, len(inputs))
	for i, task := range tasks {
		assert.Equal(t, i, task.Input)
		assert.Equal(t, strconv.Itoa(i*2), task.Result)
		assert.NoError(t, task.Err)
	}
}

func TestExecuteRecordsPerTaskErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	pool := NewPool(3, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})

	tasks := pool.Execute(context.Background(), []int{0, 1, 2, 3, 4})
	for i, task := range tasks {
		if i == 2 {
			assert.ErrorIs(t, task.Err, boom)
			continue
		}
		assert.NoError(t, task.Err)
		assert.Equal(t, i, task.Result)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(2, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	tasks := pool.Execute(ctx, []int{1, 2, 3})
	for _, task := range tasks {
		assert.ErrorIs(t, task.Err, context.Canceled)
	}
	assert.Zero(t, calls.Load())
}

func TestExecuteEmpty(t *testing.T) {
	t.Parallel()

	pool := NewPool(0, func(_ context.Context, n int) (int, error) { return n, nil })
	assert.Empty(t, pool.Execute(context.Background(), nil))
}

func TestBatch(t *testing.T) {
	t.Parallel()

	got := Batch([]int{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)
	assert.Nil(t, Batch([]int{}, 3))
	assert.Len(t, Batch([]int{1, 2}, 0), 2)
}
