package ecs

import (
	"strconv"
	"sync/atomic"
)

// ObjectID names one simulated object or one store instance. Ids come from a
// single counter so stores and objects never share an id.
type ObjectID int64

// NoObject is returned by lookups that have nothing to report.
const NoObject ObjectID = -1

func (id ObjectID) Valid() bool    { return id >= 0 }
func (id ObjectID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id ObjectID) Int64() int64   { return int64(id) }

// IDAllocator hands out monotonically increasing ids. Safe for concurrent use.
type IDAllocator struct {
	next atomic.Int64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) Next() ObjectID {
	return ObjectID(a.next.Add(1) - 1)
}

// Peek returns the id the next call to Next will produce.
func (a *IDAllocator) Peek() ObjectID {
	return ObjectID(a.next.Load())
}
