package ports

import "context"

// Port: monotonic sequence for human-readable route numbers.
// Values are unique and increasing across service instances.
type SequenceGenerator interface {
	Next(ctx context.Context, name string) (int64, error)
}
