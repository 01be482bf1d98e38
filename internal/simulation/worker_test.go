// internal/simulation/worker_test.go
package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfs-target-uploader/internal/common/logger"
)

func TestWorker_ProcessesQueuedSubmission(t *testing.T) {
	q, _ := newTestQueue(t)
	store := &fakeStore{}
	reg := &fakeRegistry{}
	svc := newTestService(&fakePlanner{}, store, reg, nil, nil)
	worker := NewWorker(q, svc, nil, logger.NewTestLogger(t))

	job := NewJob("targets.csv", "csv", validListCSV(), "2026-08-01", "2027-01-31", true)
	require.NoError(t, q.Enqueue(context.Background(), job))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		return reg.lastInserted() != nil
	}, 5*time.Second, 20*time.Millisecond, "job was not processed")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}

	assert.NotNil(t, store.lastWritten())
	assert.Equal(t, "targets.csv", reg.lastInserted().OriginalFilename)
}

func TestWorker_SkipsInvalidPayloads(t *testing.T) {
	q, mr := newTestQueue(t)
	reg := &fakeRegistry{}
	svc := newTestService(&fakePlanner{}, &fakeStore{}, reg, nil, nil)
	worker := NewWorker(q, svc, nil, logger.NewTestLogger(t))

	// a broken payload ahead of a valid job must not stall the worker
	_, err := mr.Lpush("uploader:simulation:jobs", `{"garbage": true}`)
	require.NoError(t, err)
	job := NewJob("targets.csv", "csv", validListCSV(), "2026-08-01", "2027-01-31", true)
	require.NoError(t, q.Enqueue(context.Background(), job))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		return reg.lastInserted() != nil
	}, 5*time.Second, 20*time.Millisecond, "valid job behind invalid payload was not processed")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}

func TestWorker_StopsImmediatelyWhenIdle(t *testing.T) {
	q, _ := newTestQueue(t)
	svc := newTestService(&fakePlanner{}, &fakeStore{}, &fakeRegistry{}, nil, nil)
	worker := NewWorker(q, svc, nil, logger.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("idle worker did not stop on context cancel")
	}
}
