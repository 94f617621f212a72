// Package bus delivers events to subscribers in the same process, synchronously and in order.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var _ctx = context.Background()

func SetContext(ctx context.Context) {
	_ctx = ctx
}

type subscriber struct {
	id int
	fn func(ctx context.Context, event any)
}

var (
	mu     sync.Mutex
	nextID int
	subs   = make(map[string][]subscriber)
)

func topic[T any]() string {
	return fmt.Sprintf("%T", *new(T))
}

// Subscribe calls fn for every published T. Errors are logged. The returned function unsubscribes.
func Subscribe[T any](name string, fn func(ctx context.Context, event T) error) func() {
	mu.Lock()
	defer mu.Unlock()

	nextID++
	id := nextID
	key := topic[T]()
	subs[key] = append(subs[key], subscriber{
		id: id,
		fn: func(ctx context.Context, event any) {
			if err := fn(ctx, event.(T)); err != nil {
				slog.Error("Failed to handle event", "package", "bus", "name", name, "error", err)
			}
		},
	})

	return func() {
		mu.Lock()
		defer mu.Unlock()

		list := subs[key]
		for i := range list {
			if list[i].id == id {
				subs[key] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

func Publish[T any](event T) {
	mu.Lock()
	list := append([]subscriber{}, subs[topic[T]()]...)
	mu.Unlock()

	for _, sub := range list {
		sub.fn(_ctx, event)
	}
}
