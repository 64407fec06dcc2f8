package guest

// Safety limits to prevent memory exhaustion from hostile guests.
const (
	DefaultMaxStringSize = 16 << 20 // 16 MB
	DefaultMaxListLength = 1 << 20  // 1M elements
)

// Options configures lifting and lowering.
type Options struct {
	// ZeroCopy lets lifted strings point directly into guest memory when
	// no MUTF-8 transformation was needed. Such strings are only valid
	// until the guest memory is written, grown or closed.
	ZeroCopy      bool
	MaxStringSize uint32
	MaxListLength uint32
}

// DefaultOptions returns copy-mode options with the default limits.
func DefaultOptions() Options {
	return Options{
		MaxStringSize: DefaultMaxStringSize,
		MaxListLength: DefaultMaxListLength,
	}
}
