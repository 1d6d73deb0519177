package archive

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("conversion not found")

const (
	defaultLimit = 50
	maxLimit     = 500
)

type ListOpts struct {
	Format string // optional filter
	Limit  int
	Offset int
}

func (o ListOpts) normalized() ListOpts {
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

type Store interface {
	Put(ctx context.Context, c Conversion) error
	Get(ctx context.Context, id string) (Conversion, error)
	// List returns newest first.
	List(ctx context.Context, opts ListOpts) ([]Conversion, error)
}
