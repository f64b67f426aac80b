package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hiveio/hive-indexer/internal/adapter"
	"github.com/hiveio/hive-indexer/internal/model"
)

func testSyncer(fa *adapter.FakeAdapter, cfg Config) *Syncer {
	return &Syncer{
		adapter: fa,
		cfg:     cfg,
		logger:  logrus.New(),
		dirty:   model.NewDirtySet(),
		quit:    make(chan struct{}),
	}
}

func TestForkedDetectsMismatch(t *testing.T) {
	b := &model.Block{Previous: "deadbeef"}
	if forked(b, "") {
		t.Fatalf("no prior hash should never fork")
	}
	if !forked(b, "cafef00d") {
		t.Fatalf("mismatched previous hash must fork")
	}
	if forked(b, "deadbeef") {
		t.Fatalf("matching previous hash must not fork")
	}
}

func TestWaitForTrailedHeadReturnsOnceHeadAdvances(t *testing.T) {
	fa := adapter.NewFakeAdapter()
	fa.SetHead(4)
	s := testSyncer(fa, Config{TrailBlocks: 2, LiveRetrySleep: 10 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- s.waitForTrailedHead(context.Background(), 3) }()

	select {
	case err := <-done:
		t.Fatalf("expected waitForTrailedHead to block, returned early with %v", err)
	case <-time.After(30 * time.Millisecond):
	}

	fa.SetHead(6)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("waitForTrailedHead did not return after head advanced")
	}
}

func TestWaitForBlockRetriesUntilAvailable(t *testing.T) {
	fa := adapter.NewFakeAdapter()
	s := testSyncer(fa, Config{LiveRetrySleep: 10 * time.Millisecond})

	done := make(chan *model.Block, 1)
	go func() {
		b, _ := s.waitForBlock(context.Background(), 1)
		done <- b
	}()

	blk := &model.Block{BlockID: "00000001aabbccdd"}
	time.AfterFunc(20*time.Millisecond, func() {
		if err := fa.AddBlock(blk); err != nil {
			t.Errorf("add block: %v", err)
		}
	})

	select {
	case b := <-done:
		if b == nil || b.BlockID != blk.BlockID {
			t.Fatalf("expected block to be returned, got %+v", b)
		}
	case <-time.After(300 * time.Millisecond):
		t.Fatalf("waitForBlock never returned")
	}
}

func TestShouldStopOnQuit(t *testing.T) {
	fa := adapter.NewFakeAdapter()
	s := testSyncer(fa, DefaultConfig())
	if s.shouldStop(context.Background()) {
		t.Fatalf("should not stop before quit is closed")
	}
	close(s.quit)
	if !s.shouldStop(context.Background()) {
		t.Fatalf("should stop once quit is closed")
	}
}
