package store

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/stssoft/persist/compress"
	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/internal/options"
	"github.com/stssoft/persist/logging"
)

// Option configures Open.
type Option = options.Option[*config]

type config struct {
	bolt        *bbolt.Options
	logger      *logging.Logger
	compression format.CompressionType
}

func newConfig(opts []Option) (*config, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	bopt.FreelistType = bbolt.FreelistMapType

	c := &config{
		bolt:        &bopt,
		logger:      logging.NoopLogger(),
		compression: format.CompressionZstd,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// WithBoltOptions replaces the bbolt options. By default the database waits
// up to 10 seconds for its file lock and uses the map freelist.
func WithBoltOptions(o *bbolt.Options) Option {
	return options.New("WithBoltOptions", func(c *config) error {
		if o == nil {
			return fmt.Errorf("nil bbolt options")
		}
		cp := *o
		c.bolt = &cp

		return nil
	})
}

// WithCompression selects the payload compression of index snapshots.
// Zstd by default.
func WithCompression(ct format.CompressionType) Option {
	return options.New("WithCompression", func(c *config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithLogger sets the logger receiving open, close and index records.
func WithLogger(l *logging.Logger) Option {
	return options.NoError("WithLogger", func(c *config) {
		c.logger = logging.OrNoop(l).WithComponent("store")
	})
}
