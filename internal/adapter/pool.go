package adapter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// idleConn is a pooled keep-alive connection to the upstream host. The
// pool is keyed by a single upstream host (a sync driver talks to exactly
// one upstream); the net/http-based adapters do not use it (see
// NewPooledHTTPClient).
type idleConn struct {
	net.Conn
	lastUsed time.Time
}

// ConnPool manages reusable keep-alive connections for one upstream host.
type ConnPool struct {
	mu      sync.Mutex
	conns   []*idleConn
	maxIdle int
	idleTTL time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

// NewConnPool creates a pool retaining at most maxIdle idle connections,
// each evicted after idleTTL of inactivity.
func NewConnPool(maxIdle int, idleTTL time.Duration) *ConnPool {
	cp := &ConnPool{
		maxIdle: maxIdle,
		idleTTL: idleTTL,
		closing: make(chan struct{}),
	}
	go cp.reaper()
	return cp
}

// Acquire pops an idle connection if one is available.
func (cp *ConnPool) Acquire() (net.Conn, bool) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	n := len(cp.conns)
	if n == 0 {
		return nil, false
	}
	c := cp.conns[n-1]
	cp.conns = cp.conns[:n-1]
	return c.Conn, true
}

// Release returns a connection to the pool, or closes it if the pool is
// already at capacity.
func (cp *ConnPool) Release(conn net.Conn) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.maxIdle > 0 && len(cp.conns) < cp.maxIdle {
		cp.conns = append(cp.conns, &idleConn{Conn: conn, lastUsed: time.Now()})
		return
	}
	_ = conn.Close()
}

// Close closes every pooled connection and stops the reaper.
func (cp *ConnPool) Close() {
	cp.closeOnce.Do(func() {
		close(cp.closing)
		cp.mu.Lock()
		defer cp.mu.Unlock()
		for _, c := range cp.conns {
			_ = c.Close()
		}
		cp.conns = nil
	})
}

// Stats returns the number of idle connections currently held.
func (cp *ConnPool) Stats() int {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return len(cp.conns)
}

func (cp *ConnPool) reaper() {
	ticker := time.NewTicker(cp.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-cp.idleTTL)
			cp.mu.Lock()
			i := 0
			for _, c := range cp.conns {
				if c.lastUsed.Before(cutoff) {
					_ = c.Close()
					continue
				}
				cp.conns[i] = c
				i++
			}
			cp.conns = cp.conns[:i]
			cp.mu.Unlock()
		case <-cp.closing:
			return
		}
	}
}

// NewPooledHTTPClient builds an *http.Client whose Transport caps idle
// keep-alive connections the same way ConnPool does, for a single upstream
// host hit repeatedly during backfill. It does not route through ConnPool
// directly (net/http manages its own transport-level pool); ConnPool is
// offered standalone for adapters built on a raw connection (e.g. a
// websocket-based upstream) rather than net/http.
func NewPooledHTTPClient(maxIdle int, idleTTL, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        maxIdle,
			MaxIdleConnsPerHost: maxIdle,
			IdleConnTimeout:     idleTTL,
		},
	}
}

// PooledHTTPAdapter is an HTTPAdapter whose client reuses a bounded set of
// idle keep-alive connections to one upstream host, keyed by host instead
// of arbitrary peer address: a sync driver hits a single endpoint
// repeatedly, unlike a P2P client juggling many peers.
type PooledHTTPAdapter struct {
	*HTTPAdapter
}

// NewPooledHTTPAdapter builds an adapter against endpoint whose transport
// caps idle connections at maxIdle, each reaped after idleTTL of
// inactivity, instead of the bare *http.Client NewHTTPAdapter uses.
func NewPooledHTTPAdapter(endpoint string, requestTimeout, maxRetryElapsed time.Duration, maxIdle int, idleTTL time.Duration, logger *logrus.Logger) *PooledHTTPAdapter {
	a := NewHTTPAdapter(endpoint, requestTimeout, maxRetryElapsed, logger)
	a.client = NewPooledHTTPClient(maxIdle, idleTTL, requestTimeout)
	return &PooledHTTPAdapter{HTTPAdapter: a}
}
