package column

import (
	"fmt"

	"github.com/stssoft/persist/compress"
	"github.com/stssoft/persist/endian"
	"github.com/stssoft/persist/format"
	"github.com/stssoft/persist/index"
	"github.com/stssoft/persist/internal/options"
	"github.com/stssoft/persist/logging"
)

// Option configures an Encoder or Decode.
type Option = options.Option[*config]

type config struct {
	compression format.CompressionType
	engine      endian.EndianEngine
	logger      *logging.Logger
	indexOpts   []index.Option
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		compression: format.CompressionNone,
		engine:      endian.GetLittleEndianEngine(),
		logger:      logging.NoopLogger(),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// WithCompression selects the payload compressor of new blocks. Decode reads
// the compression from the block and ignores this option.
func WithCompression(ct format.CompressionType) Option {
	return options.New("WithCompression", func(c *config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithByteOrder selects the byte order of new blocks. Little-endian by default.
// Decode reads the order from the block and ignores this option.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New("WithByteOrder", func(c *config) error {
		if engine == nil {
			return fmt.Errorf("nil endian engine")
		}
		c.engine = engine

		return nil
	})
}

// WithIndexOptions passes options to the numeric index codecs of every column,
// for example index.WithFactors.
func WithIndexOptions(opts ...index.Option) Option {
	return options.NoError("WithIndexOptions", func(c *config) {
		c.indexOpts = append(c.indexOpts, opts...)
	})
}

// WithLogger sets the logger receiving block build and open records.
func WithLogger(l *logging.Logger) Option {
	return options.NoError("WithLogger", func(c *config) {
		c.logger = logging.OrNoop(l).WithComponent("column")
	})
}
