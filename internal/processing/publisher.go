package processing

import "context"

// Publisher stores a JSON snapshot under name.
type Publisher interface {
	Publish(ctx context.Context, name string, v any) error
}
