// Package idgen provides the ID generators used to number and name runs.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// NewSequential returns a generator whose first emitted ID is "1".
func NewSequential() *Sequential {
	return &Sequential{}
}

// Sequential numbers IDs 1, 2, 3 and so on.
type Sequential struct {
	next uint64
}

// Generate returns the next ID.
func (g *Sequential) Generate() string {
	return strconv.FormatUint(g.Next(), 10)
}

// Next returns the next ID as a number.
func (g *Sequential) Next() uint64 {
	return atomic.AddUint64(&g.next, 1)
}

// NewXID returns a generator of globally unique, sortable IDs.
func NewXID() Generator {
	return xidGenerator{}
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
