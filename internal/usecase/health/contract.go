package health

import "context"

// Pinger checks availability of an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}
