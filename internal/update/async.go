package update

import "context"

// Result carries the value or error of an asynchronous query.
type Result[T any] struct {
	Value T
	Err   error
}

func async[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		v, err := fn(ctx)
		out <- Result[T]{Value: v, Err: err}
	}()
	return out
}

// CheckAsync runs IsUpdateAvailable on its own goroutine.
func (c *Client) CheckAsync(ctx context.Context) <-chan Result[bool] {
	return async(ctx, c.IsUpdateAvailable)
}

// MessageAsync runs UpdateMessage on its own goroutine.
func (c *Client) MessageAsync(ctx context.Context) <-chan Result[string] {
	return async(ctx, c.UpdateMessage)
}
