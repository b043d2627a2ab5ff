package object

import (
	"fmt"

	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/internal/options"
	"github.com/stssoft/persist/logging"
	"github.com/stssoft/persist/schema"
)

// Option configures a codec.
type Option = options.Option[*config]

type config struct {
	policy schema.NullPolicy
	order  schema.MemberOrder
	engine endian.EndianEngine
	logger *logging.Logger
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		policy: schema.All,
		engine: endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// WithNullPolicy sets where presence markers are written. Defaults to schema.All.
func WithNullPolicy(p schema.NullPolicy) Option {
	return options.New("WithNullPolicy", func(c *config) error {
		if !p.Valid() {
			return fmt.Errorf("unknown null policy %d", p)
		}
		c.policy = p

		return nil
	})
}

// WithMemberOrder sets the member ranking of every record reached from the
// codec type.
//
// Codecs built with a member order are not cached; keep the returned codec.
func WithMemberOrder(order schema.MemberOrder) Option {
	return options.NoError("WithMemberOrder", func(c *config) {
		c.order = order
	})
}

// WithByteOrder selects the byte order of fixed-width values written by
// Marshal and read by Unmarshal. Little-endian by default.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New("WithByteOrder", func(c *config) error {
		if engine == nil {
			return fmt.Errorf("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

// WithLogger sets the logger receiving schema build records.
func WithLogger(l *logging.Logger) Option {
	return options.NoError("WithLogger", func(c *config) {
		c.logger = l
	})
}
