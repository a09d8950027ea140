package trip

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadmax/planwise/internal/ai"
)

var lyon = Request{City: "Lyon", State: "Rhône", Country: "France", Days: 3}

func TestPlan_Success(t *testing.T) {
	var prompt string
	p := NewPlanner(ai.CompleterFunc(func(_ context.Context, in string) (string, error) {
		prompt = in
		return "Day 1: Vieux Lyon", nil
	}), nil)

	plan, err := p.Plan(context.Background(), lyon)

	require.NoError(t, err)
	assert.Equal(t, "Day 1: Vieux Lyon", plan)
	assert.Contains(t, prompt, "Lyon, Rhône, France for 3 days")
	assert.False(t, p.Busy())
}

func TestPlan_InvalidRequest(t *testing.T) {
	p := NewPlanner(ai.CompleterFunc(func(context.Context, string) (string, error) {
		t.Fatal("completer must not be called")
		return "", nil
	}), nil)

	for _, req := range []Request{{}, {City: "Lyon", Country: "France"}, {City: " ", Country: "France", Days: 2}} {
		_, err := p.Plan(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

func TestPlan_RejectsConcurrentRequest(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	p := NewPlanner(ai.CompleterFunc(func(context.Context, string) (string, error) {
		close(entered)
		<-release
		return "plan", nil
	}), nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Plan(context.Background(), lyon)
		done <- err
	}()

	<-entered
	assert.True(t, p.Busy())

	_, err := p.Plan(context.Background(), lyon)
	assert.ErrorIs(t, err, ErrRequestInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, p.Busy())
}

func TestPlan_ReleasesFlagOnError(t *testing.T) {
	calls := 0
	p := NewPlanner(ai.CompleterFunc(func(context.Context, string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("quota exceeded")
		}
		return "second try", nil
	}), nil)

	_, err := p.Plan(context.Background(), lyon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.False(t, p.Busy())

	plan, err := p.Plan(context.Background(), lyon)
	require.NoError(t, err)
	assert.Equal(t, "second try", plan)
}

func TestPlan_ReleasesFlagOnPanic(t *testing.T) {
	p := NewPlanner(ai.CompleterFunc(func(context.Context, string) (string, error) {
		panic("boom")
	}), nil)

	assert.Panics(t, func() { _, _ = p.Plan(context.Background(), lyon) })
	assert.False(t, p.Busy())
}
