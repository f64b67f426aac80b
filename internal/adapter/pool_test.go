package adapter

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"
)

func startTestServer(t *testing.T) (net.Listener, *[]net.Conn) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	conns := &[]net.Conn{}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			*conns = append(*conns, c)
		}
	}()
	return ln, conns
}

func closeServer(ln net.Listener, conns *[]net.Conn) {
	ln.Close()
	for _, c := range *conns {
		c.Close()
	}
}

func dial(t *testing.T, ln net.Listener) net.Conn {
	c, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return c
}

func TestConnPoolAcquireReuse(t *testing.T) {
	ln, conns := startTestServer(t)
	defer closeServer(ln, conns)

	cp := NewConnPool(2, time.Second)
	defer cp.Close()

	c1 := dial(t, ln)
	cp.Release(c1)
	if got := cp.Stats(); got != 1 {
		t.Fatalf("expected 1 idle, got %d", got)
	}

	c2, ok := cp.Acquire()
	if !ok {
		t.Fatalf("expected an idle connection to reuse")
	}
	if c1 != c2 {
		t.Fatalf("expected to reuse connection")
	}
	cp.Release(c2)
	if got := cp.Stats(); got != 1 {
		t.Fatalf("expected 1 idle after reuse, got %d", got)
	}
}

func TestConnPoolReaper(t *testing.T) {
	ln, conns := startTestServer(t)
	defer closeServer(ln, conns)

	idle := 100 * time.Millisecond
	cp := NewConnPool(2, idle)
	defer cp.Close()

	cp.Release(dial(t, ln))
	if got := cp.Stats(); got != 1 {
		t.Fatalf("expected 1 idle, got %d", got)
	}

	time.Sleep(3 * idle)
	if got := cp.Stats(); got != 0 {
		t.Fatalf("expected reaper to close idle connections, got %d", got)
	}
}

func TestConnPoolMaxIdleEvictsExcess(t *testing.T) {
	ln, conns := startTestServer(t)
	defer closeServer(ln, conns)

	cp := NewConnPool(1, time.Second)
	defer cp.Close()

	cp.Release(dial(t, ln))
	cp.Release(dial(t, ln))
	if got := cp.Stats(); got != 1 {
		t.Fatalf("expected pool to cap at 1 idle conn, got %d", got)
	}
}

func TestNewPooledHTTPAdapterUsesPooledTransport(t *testing.T) {
	srv := rpcServer(t, `{"head_block_number": 42, "last_irreversible_block_num": 40}`)
	defer srv.Close()

	a := NewPooledHTTPAdapter(srv.URL, time.Second, time.Second, 5, time.Minute, nil)

	transport, ok := a.client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected a pooled *http.Transport, got %T", a.client.Transport)
	}
	if transport.MaxIdleConns != 5 || transport.MaxIdleConnsPerHost != 5 {
		t.Fatalf("expected maxIdle 5, got %+v", transport)
	}

	head, err := a.HeadBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head != 42 {
		t.Fatalf("expected head 42, got %d", head)
	}
}
