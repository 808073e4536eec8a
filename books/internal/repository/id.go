package repository

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NextID() string
}

// SequentialID hands out 1, 2, 3, ... encoded into the low 64 bits of a UUID, e.g.
// 00000000-0000-0000-0000-000000000001. The counter never goes back, so ids freed by
// deletions are not reused.
type SequentialID struct {
	n atomic.Uint64
}

func NewSequentialID() *SequentialID {
	return &SequentialID{}
}

func (g *SequentialID) NextID() string {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], g.n.Add(1))
	return id.String()
}

type RandomID struct{}

func (RandomID) NextID() string {
	return uuid.NewString()
}
