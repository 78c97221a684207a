package parser

import (
	"time"

	"github.com/openfinbr/conciliador/internal/domain"
	"github.com/openfinbr/conciliador/internal/normalize"
)

// Options carries the normalizer configuration shared by all sources.
// Explicit values, no package state: the same binary can parse two
// batches with different locales or default years.
type Options struct {
	Names normalize.NameConfig
	Dates normalize.DateConfig
	Clock domain.Clock
}

// DefaultOptions returns pt-BR normalization with the wall clock.
func DefaultOptions() Options {
	return Options{
		Names: normalize.DefaultNameConfig(),
		Dates: normalize.DateConfig{},
		Clock: time.Now,
	}
}

func (o Options) clock() domain.Clock {
	if o.Clock == nil {
		return time.Now
	}
	return o.Clock
}
