package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func TestDecodeBlockParsesTransactionsAndOperations(t *testing.T) {
	raw := `{
		"block_id": "00000001aabbccdd",
		"previous": "00000000ffeeddcc",
		"timestamp": "2020-01-01T00:00:00",
		"transactions": [
			{"operations": [["vote", {"voter": "alice", "author": "bob", "permlink": "x"}]]}
		]
	}`
	b := DecodeBlock(gjson.Parse(raw))
	if b.BlockID != "00000001aabbccdd" || b.Previous != "00000000ffeeddcc" {
		t.Fatalf("unexpected block header: %+v", b)
	}
	if len(b.Transactions) != 1 || len(b.Transactions[0].Operations) != 1 {
		t.Fatalf("expected 1 tx with 1 op, got %+v", b.Transactions)
	}
	if b.Transactions[0].Operations[0].Type != "vote" {
		t.Fatalf("expected vote op, got %s", b.Transactions[0].Operations[0].Type)
	}
}

func TestDecodeBlockSkipsMalformedOperationEntries(t *testing.T) {
	raw := `{
		"block_id": "00000002aabbccdd",
		"previous": "00000001ffeeddcc",
		"timestamp": "2020-01-01T00:00:00",
		"transactions": [{"operations": [["only_one_element"]]}]
	}`
	b := DecodeBlock(gjson.Parse(raw))
	if len(b.Transactions[0].Operations) != 0 {
		t.Fatalf("expected malformed 1-element op to be skipped, got %+v", b.Transactions[0].Operations)
	}
}

func rpcServer(t *testing.T, result string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
}

func TestHeadBlockParsesDynamicGlobalProperties(t *testing.T) {
	srv := rpcServer(t, `{"head_block_number": 123, "last_irreversible_block_num": 120}`)
	defer srv.Close()

	a := NewHTTPAdapter(srv.URL, time.Second, time.Second, nil)
	head, err := a.HeadBlock(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head != 123 {
		t.Fatalf("expected head 123, got %d", head)
	}
}

func TestGetBlockReturnsNilOnEmptyResult(t *testing.T) {
	srv := rpcServer(t, `{}`)
	defer srv.Close()

	a := NewHTTPAdapter(srv.URL, time.Second, time.Second, nil)
	b, err := a.GetBlock(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil block for empty result, got %+v", b)
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	a := NewHTTPAdapter(srv.URL, time.Second, time.Second, nil)
	_, err := a.HeadBlock(context.Background())
	if err == nil {
		t.Fatalf("expected rpc error to surface")
	}
}

func TestParseAssetAmountTolerant(t *testing.T) {
	if got := parseAssetAmount("1.234 HBD"); got != 1.234 {
		t.Fatalf("expected 1.234, got %v", got)
	}
	if got := parseAssetAmount("garbage"); got != 0 {
		t.Fatalf("expected 0 for malformed asset, got %v", got)
	}
}
