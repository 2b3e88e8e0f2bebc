package cache

import (
	"context"

	"github.com/taigrr/bricklayer/pkg/voxel"
)

// NullCache never stores anything.
type NullCache struct{}

func (NullCache) Get(context.Context, string) (*voxel.Grid, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, *voxel.Grid) error        { return nil }
func (NullCache) Delete(context.Context, string) error                  { return nil }
func (NullCache) Close() error                                          { return nil }

var _ Cache = NullCache{}
