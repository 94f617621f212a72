package bus

import (
	"context"
	"errors"
	"testing"
)

type testEvent struct {
	Value int
}

type otherEvent struct{}

func TestPublish(t *testing.T) {
	var got []int
	unsubscribe := Subscribe("test", func(ctx context.Context, event testEvent) error {
		got = append(got, event.Value)
		return nil
	})
	unsubscribeFailing := Subscribe("failing", func(ctx context.Context, event testEvent) error {
		return errors.New("failed")
	})
	defer unsubscribeFailing()

	Publish(testEvent{Value: 1})
	Publish(otherEvent{})
	Publish(testEvent{Value: 2})
	unsubscribe()
	Publish(testEvent{Value: 3})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestUnsubscribeKeepsOthers(t *testing.T) {
	var a, b int
	unsubscribeA := Subscribe("a", func(ctx context.Context, event testEvent) error {
		a++
		return nil
	})
	unsubscribeB := Subscribe("b", func(ctx context.Context, event testEvent) error {
		b++
		return nil
	})
	defer unsubscribeB()

	unsubscribeA()
	unsubscribeA()
	Publish(testEvent{})

	if a != 0 || b != 1 {
		t.Errorf("got a=%d b=%d, want a=0 b=1", a, b)
	}
}

func TestSetContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "run")
	SetContext(ctx)
	defer SetContext(context.Background())

	var got any
	unsubscribe := Subscribe("ctx", func(ctx context.Context, event testEvent) error {
		got = ctx.Value(key{})
		return nil
	})
	defer unsubscribe()

	Publish(testEvent{})
	if got != "run" {
		t.Errorf("got %v, want run", got)
	}
}
