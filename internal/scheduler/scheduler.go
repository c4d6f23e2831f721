package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx is done.
// A non-positive interval disables the task.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		log.Printf("level=info msg=\"task disabled\" task=%s", name)
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	run(ctx, name, task)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run(ctx, name, task)
		}
	}
}

func run(ctx context.Context, name string, task Task) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("level=error msg=\"task panic\" task=%s panic=%v", name, rec)
		}
	}()
	if err := task(ctx); err != nil {
		log.Printf("[%s] error: %v", name, err)
		return
	}
	if d := time.Since(start); d > 5*time.Second {
		log.Printf("level=warn msg=\"slow task\" task=%s dur_ms=%d", name, d.Milliseconds())
	}
}
