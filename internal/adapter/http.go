package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/hiveio/hive-indexer/internal/model"
	"github.com/hiveio/hive-indexer/pkg/utils"
)

// HTTPAdapter talks to a condenser-API-shaped JSON-RPC endpoint over HTTP.
// Transport failures and 5xx responses are retried with exponential backoff
// before surfacing model.ErrTransient; any other non-200 status fails at
// once without a retry.
type HTTPAdapter struct {
	endpoint string
	client   *http.Client
	logger   *logrus.Logger
	maxRetry time.Duration
}

// NewHTTPAdapter builds an adapter against endpoint. requestTimeout bounds a
// single HTTP round trip; maxRetryElapsed bounds the whole backoff.Retry
// window before giving up with model.ErrTransient.
func NewHTTPAdapter(endpoint string, requestTimeout, maxRetryElapsed time.Duration, logger *logrus.Logger) *HTTPAdapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPAdapter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
		maxRetry: maxRetryElapsed,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// call issues one JSON-RPC request, retrying transport/5xx failures with
// backoff, and returns the raw "result" field as gjson-addressable text.
// Each call gets one correlation id, attached to the log line emitted when
// the call finally fails; individual attempts are not logged.
func (a *HTTPAdapter) call(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	req := rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}
	body, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, utils.Wrap(err, "marshal rpc request")
	}

	correlationID := uuid.New().String()
	log := a.logger.WithFields(logrus.Fields{"request_id": correlationID, "method": method})

	var respBody []byte
	op := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrTransient, err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
		if err != nil {
			return fmt.Errorf("%w: read body: %v", model.ErrTransient, err)
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: upstream status %d", model.ErrTransient, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(b)))
		}
		respBody = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = a.maxRetry
	if err := backoff.Retry(op, bo); err != nil {
		log.WithError(err).Error("rpc call failed")
		return gjson.Result{}, err
	}

	parsed := gjson.ParseBytes(respBody)
	if errMsg := parsed.Get("error.message"); errMsg.Exists() {
		return gjson.Result{}, fmt.Errorf("rpc error: %s", errMsg.String())
	}
	return parsed.Get("result"), nil
}

// HeadBlock implements Adapter.
func (a *HTTPAdapter) HeadBlock(ctx context.Context) (uint32, error) {
	r, err := a.call(ctx, "condenser_api.get_dynamic_global_properties")
	if err != nil {
		return 0, err
	}
	return uint32(r.Get("head_block_number").Uint()), nil
}

// LastIrreversibleBlock implements Adapter.
func (a *HTTPAdapter) LastIrreversibleBlock(ctx context.Context) (uint32, error) {
	r, err := a.call(ctx, "condenser_api.get_dynamic_global_properties")
	if err != nil {
		return 0, err
	}
	return uint32(r.Get("last_irreversible_block_num").Uint()), nil
}

// HeadTime implements Adapter.
func (a *HTTPAdapter) HeadTime(ctx context.Context) (time.Time, error) {
	r, err := a.call(ctx, "condenser_api.get_dynamic_global_properties")
	if err != nil {
		return time.Time{}, err
	}
	t, parseErr := time.Parse("2006-01-02T15:04:05", r.Get("time").String())
	if parseErr != nil {
		return time.Time{}, utils.Wrap(parseErr, "parse head time")
	}
	return t, nil
}

// GetBlock implements Adapter. Returns (nil, nil) when num does not exist
// yet (an empty RPC result), never model.ErrTransient for that case.
func (a *HTTPAdapter) GetBlock(ctx context.Context, num uint32) (*model.Block, error) {
	r, err := a.call(ctx, "condenser_api.get_block", num)
	if err != nil {
		return nil, err
	}
	if !r.Exists() || !r.IsObject() || !r.Get("block_id").Exists() {
		return nil, nil
	}
	return DecodeBlock(r), nil
}

// GetBlocksRange implements Adapter over the half-open range [lo, hi).
func (a *HTTPAdapter) GetBlocksRange(ctx context.Context, lo, hi uint32) ([]*model.Block, error) {
	if hi <= lo {
		return nil, nil
	}
	r, err := a.call(ctx, "condenser_api.get_blocks_range", lo, hi)
	if err != nil {
		return nil, err
	}
	blocks := make([]*model.Block, 0, hi-lo)
	for _, item := range r.Array() {
		blocks = append(blocks, DecodeBlock(item))
	}
	return blocks, nil
}

// PostPayout implements Adapter.
func (a *HTTPAdapter) PostPayout(ctx context.Context, author, permlink string) (*model.PayoutInfo, error) {
	r, err := a.call(ctx, "condenser_api.get_content", author, permlink)
	if err != nil {
		return nil, err
	}
	if !r.Exists() {
		return nil, nil
	}
	pending := r.Get("pending_payout_value").String()
	total := r.Get("total_payout_value").String()
	return &model.PayoutInfo{
		Author:        author,
		Permlink:      permlink,
		PendingPayout: parseAssetAmount(pending),
		TotalPayout:   parseAssetAmount(total),
		IsPaidOut:     r.Get("is_paidout").Bool(),
	}, nil
}

// DecodeBlock decodes a condenser-API-shaped block JSON value (also the
// checkpoint file line format, spec.md §6) into a model.Block.
func DecodeBlock(r gjson.Result) *model.Block {
	b := &model.Block{
		BlockID:  r.Get("block_id").String(),
		Previous: r.Get("previous").String(),
	}
	if t, err := time.Parse("2006-01-02T15:04:05", r.Get("timestamp").String()); err == nil {
		b.Timestamp = t
	}
	for _, tx := range r.Get("transactions").Array() {
		var t model.Transaction
		for _, op := range tx.Get("operations").Array() {
			// Each operation is encoded as a 2-element array: [type, body].
			arr := op.Array()
			if len(arr) != 2 {
				continue
			}
			t.Operations = append(t.Operations, model.Operation{
				Type: arr[0].String(),
				Body: arr[1].Raw,
			})
		}
		b.Transactions = append(b.Transactions, t)
	}
	return b
}

// parseAssetAmount extracts the numeric prefix of a "1.234 HBD"-shaped
// asset string; malformed input yields 0, matching the tolerant-decode
// design note in spec.md §9.
func parseAssetAmount(asset string) float64 {
	var amount float64
	_, _ = fmt.Sscanf(asset, "%f", &amount)
	return amount
}
