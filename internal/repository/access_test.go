package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource records how often it was invoked.
type countingSource[T any] struct {
	calls  int
	result T
	err    error
}

func (s *countingSource[T]) Call(context.Context) (T, error) {
	s.calls++
	return s.result, s.err
}

func healthyGate() *HealthGate {
	return NewHealthGate(func(context.Context) error { return nil }, time.Minute)
}

func unhealthyGate() *HealthGate {
	return NewHealthGate(func(context.Context) error { return errors.New("down") }, time.Minute)
}

func TestRead_PrimarySucceeds(t *testing.T) {
	primary := &countingSource[string]{result: "primary"}
	fallback := &countingSource[string]{result: "fallback"}

	got, path := ReadServed(context.Background(), healthyGate(), "test.read", primary.Call, fallback.Call, "default")

	assert.Equal(t, "primary", got)
	assert.Equal(t, PathPrimary, path)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestRead_PrimaryFailsFallbackServes(t *testing.T) {
	primary := &countingSource[string]{err: errors.New("connection reset")}
	fallback := &countingSource[string]{result: "fallback"}

	got, path := ReadServed(context.Background(), healthyGate(), "test.read", primary.Call, fallback.Call, "default")

	assert.Equal(t, "fallback", got)
	assert.Equal(t, PathFallback, path)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestRead_BothFailReturnsDefault(t *testing.T) {
	primary := &countingSource[[]string]{err: errors.New("connection reset")}
	fallback := &countingSource[[]string]{err: errors.New("503")}

	got, path := ReadServed(context.Background(), healthyGate(), "test.read", primary.Call, fallback.Call, []string{})

	assert.Equal(t, []string{}, got)
	assert.Equal(t, PathDefault, path)
}

func TestRead_DefinitiveErrorStillFallsBack(t *testing.T) {
	primary := &countingSource[int]{err: apperrors.NotFoundError("row")}
	fallback := &countingSource[int]{result: 7}

	got := Read(context.Background(), healthyGate(), "test.read", primary.Call, fallback.Call, -1)

	assert.Equal(t, 7, got)
}

func TestRead_UnhealthyGateSkipsPrimary(t *testing.T) {
	primary := &countingSource[string]{result: "primary"}
	fallback := &countingSource[string]{result: "fallback"}

	got := Read(context.Background(), unhealthyGate(), "test.read", primary.Call, fallback.Call, "default")

	assert.Equal(t, "fallback", got)
	assert.Equal(t, 0, primary.calls)
}

func TestRead_PrimaryFailureLeavesGateHealthy(t *testing.T) {
	probe := &fakeProbe{}
	gate := NewHealthGate(probe.Probe, time.Minute)
	primary := &countingSource[string]{err: errors.New("timeout")}
	fallback := &countingSource[string]{result: "fallback"}

	for i := 0; i < 3; i++ {
		Read(context.Background(), gate, "test.read", primary.Call, fallback.Call, "default")
	}

	healthy, _ := gate.Snapshot()
	assert.True(t, healthy)
	assert.Equal(t, 3, primary.calls)
	assert.Equal(t, 1, probe.Calls())
}

func TestExec_BothFailReturnsUnavailable(t *testing.T) {
	boom := errors.New("503 from fallback")
	primary := &countingSource[string]{err: errors.New("connection reset")}
	fallback := &countingSource[string]{err: boom}

	_, err := Exec(context.Background(), healthyGate(), "test.write", primary.Call, fallback.Call)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "test.write")
}

func TestExec_DefinitivePrimaryErrorSkipsFallback(t *testing.T) {
	primary := &countingSource[string]{err: apperrors.ConflictError("request token")}
	fallback := &countingSource[string]{result: "fallback"}

	_, err := Exec(context.Background(), healthyGate(), "test.write", primary.Call, fallback.Call)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NotErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Equal(t, 0, fallback.calls)
}

func TestExec_DefinitiveFallbackErrorIsReturnedAsIs(t *testing.T) {
	primary := &countingSource[string]{}
	fallback := &countingSource[string]{err: apperrors.NotFoundError("testimonial")}

	_, err := Exec(context.Background(), unhealthyGate(), "test.write", primary.Call, fallback.Call)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestExec_FallbackServesAfterPrimaryFailure(t *testing.T) {
	primary := &countingSource[string]{err: errors.New("connection reset")}
	fallback := &countingSource[string]{result: "written"}

	got, err := Exec(context.Background(), healthyGate(), "test.write", primary.Call, fallback.Call)

	require.NoError(t, err)
	assert.Equal(t, "written", got)
}

func TestExecErr(t *testing.T) {
	calls := 0
	err := ExecErr(context.Background(), healthyGate(), "test.delete",
		func(context.Context) error { calls++; return errors.New("down") },
		func(context.Context) error { calls++; return nil },
	)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRead_PrimaryPanicFallsBack(t *testing.T) {
	primary := func(context.Context) (string, error) { panic(errors.New("nil row")) }
	fallback := &countingSource[string]{result: "fallback"}

	var got string
	var path Path
	require.NotPanics(t, func() {
		got, path = ReadServed(context.Background(), healthyGate(), "test.read", primary, fallback.Call, "default")
	})

	assert.Equal(t, "fallback", got)
	assert.Equal(t, PathFallback, path)
	assert.Equal(t, 1, fallback.calls)
}

func TestExec_PanicOnBothPathsIsUnavailable(t *testing.T) {
	panicking := func(context.Context) (int, error) { panic("mapping bug") }

	var err error
	require.NotPanics(t, func() {
		_, err = Exec(context.Background(), healthyGate(), "test.write", panicking, panicking)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Contains(t, err.Error(), "fallback path panicked: mapping bug")
}
