// Package delivery defines the contract every transport entrypoint fulfils.
package delivery

import "context"

// Delivery is a transport server that can be started by the application runner.
type Delivery interface {
	Serve(ctx context.Context) error
}
