package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/internal/services/lifecycle"
)

func TestManager_ShutdownOrder(t *testing.T) {
	t.Parallel()

	m := lifecycle.New(time.Second, nil)
	var order []string
	for _, name := range []string{"postgres", "redis", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := strings.Join(order, ","); got != "http,redis,postgres" {
		t.Errorf("shutdown order = %s", got)
	}

	if err := m.Shutdown(context.Background()); err != nil || len(order) != 3 {
		t.Errorf("second Shutdown should be a no-op, order=%v err=%v", order, err)
	}
}

func TestManager_ShutdownJoinsErrors(t *testing.T) {
	t.Parallel()

	errBuffer := errors.New("bolt closed")
	errRedis := errors.New("redis gone")

	m := lifecycle.New(time.Second, nil)
	m.Register("buffer", func(context.Context) error { return errBuffer })
	m.Register("noop", func(context.Context) error { return nil })
	m.Register("redis", func(context.Context) error { return errRedis })
	m.Register("nil hook", nil)

	err := m.Shutdown(context.Background())
	if !errors.Is(err, errBuffer) || !errors.Is(err, errRedis) {
		t.Fatalf("expected both hook errors, got %v", err)
	}
	if !strings.Contains(err.Error(), "buffer: bolt closed") {
		t.Errorf("error should name the component: %v", err)
	}
}

func TestManager_ShutdownHonoursTimeout(t *testing.T) {
	t.Parallel()

	m := lifecycle.New(20*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := m.Shutdown(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestManager_ListenStopsWithParent(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := lifecycle.New(time.Second, nil).Listen(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("listen context not cancelled with parent")
	}
}
