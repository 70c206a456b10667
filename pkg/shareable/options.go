// pkg/shareable/options.go
package shareable

import "fmt"

const (
	// DefaultCapacity is the maximum number of slots in a bucket.
	// Values between 8 and 32 perform about the same in memory.
	DefaultCapacity = 8

	// MinCapacity is the smallest supported capacity. Below it a removal
	// rebuild under the root could produce a bucket one level too shallow.
	MinCapacity = 6
)

// config is shared by every Dict derived from the same New/NewFunc call.
// It is never modified after construction.
type config[K any] struct {
	compare  func(a, b K) int
	capacity int
	half     int
}

// Option configures a Dict at construction time.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity sets the bucket capacity. It must be even and at least
// MinCapacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

func newConfig[K any](compare func(a, b K) int, opts []Option) *config[K] {
	if compare == nil {
		panic("shareable: nil compare function")
	}

	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	if o.capacity < MinCapacity || o.capacity%2 != 0 {
		panic(fmt.Sprintf("shareable: invalid bucket capacity %d (want even, >= %d)", o.capacity, MinCapacity))
	}

	return &config[K]{
		compare:  compare,
		capacity: o.capacity,
		half:     o.capacity / 2,
	}
}
