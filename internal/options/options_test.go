package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stssoft/persist/errs"
)

type config struct {
	level int
	name  string
	calls []string
}

func withLevel(level int) Option[*config] {
	return New("WithLevel", func(c *config) error {
		if level < 0 {
			return errors.New("level must not be negative")
		}
		c.level = level
		c.calls = append(c.calls, "level")

		return nil
	})
}

func withName(name string) Option[*config] {
	return NoError("WithName", func(c *config) {
		c.name = name
		c.calls = append(c.calls, "name")
	})
}

func TestApply(t *testing.T) {
	c := &config{}
	err := Apply(c, withName("a"), withLevel(3), nil, withName("b"))

	require.NoError(t, err)
	require.Equal(t, 3, c.level)
	require.Equal(t, "b", c.name)
	require.Equal(t, []string{"name", "level", "name"}, c.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	c := &config{}
	err := Apply(c, withLevel(-1), withName("never"))

	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	require.Contains(t, err.Error(), "WithLevel")
	require.Contains(t, err.Error(), "level must not be negative")
	require.Empty(t, c.name)
}

func TestApply_KeepsInvalidArgument(t *testing.T) {
	opt := New("WithThing", func(*config) error { return errs.ErrInvalidArgument })

	err := Apply(&config{}, Option[*config](opt))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	require.Equal(t, "WithThing: invalid argument", err.Error())
}

func TestFunc_Name(t *testing.T) {
	require.Equal(t, "WithName", NoError("WithName", func(*config) {}).Name())
}
