package guard_test

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/guardkit/backoff"
	"github.com/kbukum/guardkit/guard"
)

func ExampleBreaker_Execute() {
	b := guard.New(guard.Config{
		Name:            "payments",
		MaxFailureCount: 3,
		RetryCount:      2,
		RetryStrategy:   backoff.NewExponential(100*time.Millisecond, 2.0),
	})

	err := b.Execute(context.Background(), func(ctx context.Context) error {
		// Call the dependency here.
		return nil
	})

	switch {
	case guard.IsRejected(err):
		fmt.Println("too many calls in flight")
	case guard.IsCircuitBroken(err):
		fmt.Println("circuit refused the call")
	case err != nil:
		fmt.Println("dependency failed:", err)
	default:
		fmt.Println("ok")
	}
	// Output: ok
}

func ExampleBreaker_Subscribe() {
	b := guard.New(guard.DefaultConfig("payments"))

	id := b.Subscribe(func(ev guard.Event) {
		fmt.Printf("%s -> %s\n", ev.From, ev.To)
	})
	defer b.Unsubscribe(id)

	b.OpenWithReason("maintenance")
	b.Close()
	// Output:
	// closed -> open
	// open -> closed
}

func ExampleExecuteResult() {
	b := guard.New(guard.DefaultConfig("lookup"))

	user, err := guard.ExecuteResult(context.Background(), b, func(ctx context.Context) (string, error) {
		return "ada", nil
	})
	if err != nil {
		fmt.Println("failed:", err)
		return
	}
	fmt.Println(user)
	// Output: ada
}
