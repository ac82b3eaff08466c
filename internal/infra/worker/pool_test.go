//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(3, &log)
	p.Start(context.Background())

	var done int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := p.Submit(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt32(&done, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	p.Stop()
	if done != 20 {
		t.Errorf("expected 20 tasks, got %d", done)
	}
}

func TestPool_SurvivesPanicsAndErrors(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(1, &log)
	p.Start(context.Background())

	var wg sync.WaitGroup
	wg.Add(3)
	_ = p.Submit(context.Background(), func(ctx context.Context) error { defer wg.Done(); panic("boom") })
	_ = p.Submit(context.Background(), func(ctx context.Context) error { defer wg.Done(); return errors.New("fail") })
	ran := false
	_ = p.Submit(context.Background(), func(ctx context.Context) error { defer wg.Done(); ran = true; return nil })
	wg.Wait()
	p.Stop()
	if !ran {
		t.Error("worker should keep running after a panic")
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	log := zerolog.Nop()
	p := NewPool(1, &log)
	p.Start(context.Background())
	p.Stop()
	p.Stop()
	if err := p.Submit(context.Background(), func(ctx context.Context) error { return nil }); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
	if err := p.Submit(context.Background(), nil); err == nil {
		t.Error("expected error for nil task")
	}
}
