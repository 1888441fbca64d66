package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "mosaic-backend/pkg/errors"
	"mosaic-backend/pkg/observability"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(zap.NewNop(), observability.NewMetrics(prometheus.NewRegistry()))
}

func TestRunner_Execute_RunsStepsInOrder(t *testing.T) {
	// Arrange
	ctx := context.Background()
	r := newRunner(t)
	var order []string
	step := func(name string) Step {
		return Step{Name: name, Run: func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	// Act
	err := r.Execute(ctx, Workflow{
		Name:  "ordered",
		Steps: []Step{step("one"), step("two"), step("three")},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, order)
}

func TestRunner_Execute_FirstErrorAborts(t *testing.T) {
	// Arrange
	ctx := context.Background()
	r := newRunner(t)
	boom := pkgerrors.NewStateError("already exists")
	var ranAfterFailure bool

	// Act
	err := r.Execute(ctx, Workflow{
		Name: "aborting",
		Steps: []Step{
			{Name: "ok", Run: func(ctx context.Context) error { return nil }},
			{Name: "fails", Run: func(ctx context.Context) error { return boom }},
			{Name: "skipped", Run: func(ctx context.Context) error {
				ranAfterFailure = true
				return nil
			}},
		},
	})

	// Assert: the step error comes back verbatim and later steps never run
	assert.Same(t, boom, pkgerrors.GetAppError(err))
	assert.False(t, ranAfterFailure)
}

func TestRunner_Execute_NoRollback(t *testing.T) {
	// Arrange: the first step mutates state, the second fails
	ctx := context.Background()
	r := newRunner(t)
	committed := false

	// Act
	err := r.Execute(ctx, Workflow{
		Name: "partial",
		Steps: []Step{
			{Name: "commit", Run: func(ctx context.Context) error {
				committed = true
				return nil
			}},
			{Name: "fail", Run: func(ctx context.Context) error {
				return errors.New("later failure")
			}},
		},
	})

	// Assert: the committed effect is left in place
	require.Error(t, err)
	assert.True(t, committed)
}

func TestRunner_Execute_EmptyWorkflow(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)

	assert.NoError(t, r.Execute(ctx, Workflow{Name: "empty"}))
}
