package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hiveio/hive-indexer/internal/model"
)

// FakeAdapter is an in-memory Adapter backed by a map of blocks keyed by
// block number. Used by cache maintainer, healthz, and syncer tests so
// they don't need a live upstream node. Safe for concurrent use
// since the syncer polls it from a background goroutine.
type FakeAdapter struct {
	mu               sync.Mutex
	Blocks           map[uint32]*model.Block
	Head             uint32
	LastIrreversible uint32
	Now              time.Time
	Payouts          map[model.PostKey]*model.PayoutInfo
}

// NewFakeAdapter returns an adapter with no blocks registered.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		Blocks:  make(map[uint32]*model.Block),
		Payouts: make(map[model.PostKey]*model.PayoutInfo),
	}
}

// AddBlock registers b, deriving its number from its block id.
func (f *FakeAdapter) AddBlock(b *model.Block) error {
	num, err := b.Num()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Blocks[num] = b
	if num > f.Head {
		f.Head = num
	}
	if num > f.LastIrreversible {
		f.LastIrreversible = num
	}
	return nil
}

// SetHead sets the fake's reported head height directly, for tests that
// need to simulate the upstream advancing without a matching block body.
func (f *FakeAdapter) SetHead(n uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Head = n
}

func (f *FakeAdapter) HeadBlock(ctx context.Context) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Head, nil
}

func (f *FakeAdapter) LastIrreversibleBlock(ctx context.Context) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LastIrreversible, nil
}

func (f *FakeAdapter) GetBlock(ctx context.Context, num uint32) (*model.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.Blocks[num]
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (f *FakeAdapter) GetBlocksRange(ctx context.Context, lo, hi uint32) ([]*model.Block, error) {
	if hi <= lo {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Block, 0, hi-lo)
	for n := lo; n < hi; n++ {
		b, ok := f.Blocks[n]
		if !ok {
			return nil, fmt.Errorf("%w: block %d not found", model.ErrTransient, n)
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *FakeAdapter) HeadTime(ctx context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Now, nil
}

func (f *FakeAdapter) PostPayout(ctx context.Context, author, permlink string) (*model.PayoutInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Payouts[model.PostKey{Author: author, Permlink: permlink}], nil
}

var _ Adapter = (*FakeAdapter)(nil)
