package index

import (
	"fmt"
	"slices"

	"github.com/stssoft/persist/internal/options"
	"github.com/stssoft/persist/logging"
)

const (
	// DefaultMaxDigits is the largest decimal scale tried by the floating and decimal codecs.
	DefaultMaxDigits = 15

	// maxLoadDigits bounds the digits byte accepted on load.
	maxLoadDigits = 18
)

// Option configures a codec.
type Option = options.Option[*config]

type config struct {
	factors   []int64
	maxDigits int
	logger    *logging.Logger
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		maxDigits: DefaultMaxDigits,
		logger:    logging.NoopLogger(),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// WithFactors sets the candidate common divisors of integer columns.
//
// Store picks the largest factor that divides every value of the column. The
// factors must be greater than zero; order does not matter. Floating point and
// decimal codecs ignore this option.
//
//	codec, err := index.NewInt64Codec(index.WithFactors(10, 100, 1000))
func WithFactors(factors ...int64) Option {
	return options.New("WithFactors", func(c *config) error {
		for _, f := range factors {
			if f <= 0 {
				return fmt.Errorf("factor %d must be positive", f)
			}
		}
		fs := slices.Clone(factors)
		slices.Sort(fs)
		c.factors = slices.Compact(fs)

		return nil
	})
}

// WithMaxDigits caps the decimal scale tried by the floating point and decimal
// codecs. The cap must be within [0, 15].
func WithMaxDigits(n int) Option {
	return options.New("WithMaxDigits", func(c *config) error {
		if n < 0 || n > DefaultMaxDigits {
			return fmt.Errorf("max digits %d out of range [0, %d]", n, DefaultMaxDigits)
		}
		c.maxDigits = n

		return nil
	})
}

// WithLogger sets the logger receiving native fallback records.
func WithLogger(l *logging.Logger) Option {
	return options.NoError("WithLogger", func(c *config) {
		c.logger = logging.OrNoop(l).WithComponent("index")
	})
}
