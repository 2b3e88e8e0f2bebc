// Package cache stores voxelized grids keyed by mesh geometry and
// voxelizer parameters, so repeated runs over the same input skip the
// ray-casting pass.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"

	"github.com/taigrr/bricklayer/pkg/models"
	"github.com/taigrr/bricklayer/pkg/voxel"
)

// Cache is a grid store.
type Cache interface {
	// Get returns the grid under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (*voxel.Grid, bool, error)
	Set(ctx context.Context, key string, g *voxel.Grid) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key derives the cache key for voxelizing mesh under cfg.
//
// The index kind is left out since every index classifies identically.
// Worker counts collapse to the two seeding modes.
func Key(mesh *models.Mesh, cfg voxel.Config) string {
	h := sha256.New()
	var buf [8]byte
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	putInt := func(i int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		h.Write(buf[:])
	}

	putInt(len(mesh.Vertices))
	for _, v := range mesh.Vertices {
		putFloat(v.X)
		putFloat(v.Y)
		putFloat(v.Z)
	}
	putInt(len(mesh.Faces))
	for _, f := range mesh.Faces {
		putInt(f.V[0])
		putInt(f.V[1])
		putInt(f.V[2])
	}

	params, _ := json.Marshal(struct {
		Pitch    [3]float64 `json:"pitch"`
		Rays     int        `json:"rays"`
		Seed     int64      `json:"seed"`
		Parallel bool       `json:"parallel"`
	}{cfg.Pitch.Array(), cfg.Rays, cfg.Seed, cfg.Workers > 1})
	h.Write(params)

	return hex.EncodeToString(h.Sum(nil))
}
