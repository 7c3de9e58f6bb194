package sui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// DefaultRPCURLs maps well-known networks to public fullnodes.
var DefaultRPCURLs = map[string]string{
	"mainnet":  "https://fullnode.mainnet.sui.io:443",
	"testnet":  "https://fullnode.testnet.sui.io:443",
	"devnet":   "https://fullnode.devnet.sui.io:443",
	"localnet": "http://127.0.0.1:9000",
}

// RPCURL returns override when set, otherwise the default fullnode of network.
func RPCURL(network string, override string) (string, error) {
	if s := strings.TrimSpace(override); s != "" {
		return s, nil
	}
	if url, ok := DefaultRPCURLs[network]; ok {
		return url, nil
	}
	return "", fmt.Errorf(messages.SuiUnknownNetworkFmt, network)
}

const (
	// DefaultGasBudget is the gas budget used when none is configured.
	DefaultGasBudget uint64 = 1_000_000_000
	suiCoinType             = "0x2::sui::SUI"
	maxGasCoins             = 256
	readRetryCount          = 1
)

var defaultHTTPClient = &http.Client{Timeout: 60 * time.Second}
var retryDelay = 250 * time.Millisecond

// ErrSubmission is wrapped by every failure to get a transaction executed.
var ErrSubmission = errors.New("transaction submission failed")

// RPCError is a JSON-RPC error object returned by the fullnode.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf(messages.SuiRPCErrorFmt, e.Method, e.Code, e.Message)
}

// IsRPCError reports whether err carries a fullnode JSON-RPC error.
func IsRPCError(err error) bool {
	var target *RPCError
	return errors.As(err, &target)
}

// SubmissionError reports that a transaction could not be built, signed or executed.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf(messages.SuiSubmissionFmt, e.Op, e.Err)
}

// Unwrap returns ErrSubmission and the cause.
func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmission, e.Err}
}

// IsSubmissionError reports whether err is a *SubmissionError.
func IsSubmissionError(err error) bool {
	var target *SubmissionError
	return errors.As(err, &target)
}

// SubmitOptions controls transaction execution.
type SubmitOptions struct {
	// Op names the transaction in errors and logs, e.g. "publish".
	Op                string
	GasBudget         uint64
	ShowEffects       bool
	ShowObjectChanges bool
}

// Client is a minimal Sui JSON-RPC client.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
	nextID atomic.Uint64
}

// NewClient returns a client for the fullnode at url. Nil arguments use defaults.
func NewClient(url string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New(messages.SuiRPCURLRequired)
	}
	if httpClient == nil {
		httpClient = defaultHTTPClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{url: url, http: httpClient, logger: logger}, nil
}

// URL returns the fullnode endpoint.
func (c *Client) URL() string {
	return c.url
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call performs one JSON-RPC request. Read calls are retried once on transport errors
// and 5xx responses; writes never are.
func (c *Client) call(ctx context.Context, method string, params []any, out any, retry bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if params == nil {
		params = []any{}
	}
	attempts := 0
	if retry {
		attempts = readRetryCount
	}
	for attempt := 0; attempt <= attempts; attempt++ {
		body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
		if err != nil {
			return fmt.Errorf(messages.SuiRPCRequestFmt, method, err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf(messages.SuiRPCRequestFmt, method, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "suipkg")

		resp, err := c.http.Do(req)
		if err != nil {
			if shouldRetry(err, 0, attempt, attempts) {
				if waitErr := waitRetry(ctx); waitErr != nil {
					return fmt.Errorf(messages.SuiRPCRequestFmt, method, waitErr)
				}
				continue
			}
			return fmt.Errorf(messages.SuiRPCRequestFmt, method, err)
		}
		if resp.StatusCode != http.StatusOK {
			status := resp.StatusCode
			statusText := resp.Status
			_ = resp.Body.Close()
			if shouldRetry(nil, status, attempt, attempts) {
				if waitErr := waitRetry(ctx); waitErr != nil {
					return fmt.Errorf(messages.SuiRPCRequestFmt, method, waitErr)
				}
				continue
			}
			return fmt.Errorf(messages.SuiRPCStatusFmt, method, statusText)
		}

		var payload rpcResponse
		err = json.NewDecoder(resp.Body).Decode(&payload)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf(messages.SuiRPCDecodeFmt, method, err)
		}
		if payload.Error != nil {
			return &RPCError{Method: method, Code: payload.Error.Code, Message: payload.Error.Message}
		}
		if len(payload.Result) == 0 || string(payload.Result) == "null" {
			return fmt.Errorf(messages.SuiRPCDecodeFmt, method, errors.New(messages.SuiRPCEmptyResult))
		}
		if err := json.Unmarshal(payload.Result, out); err != nil {
			return fmt.Errorf(messages.SuiRPCDecodeFmt, method, err)
		}
		return nil
	}
	return fmt.Errorf(messages.SuiRPCRequestFmt, method, errors.New("retry budget exhausted"))
}

// waitRetry sleeps retryDelay unless ctx ends first.
func waitRetry(ctx context.Context) error {
	timer := time.NewTimer(retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func shouldRetry(err error, statusCode int, attempt int, attempts int) bool {
	if attempt >= attempts {
		return false
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	return statusCode >= 500 && statusCode <= 599
}

// ReferenceGasPrice returns the current reference gas price in MIST.
func (c *Client) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	var raw json.Number
	if err := c.call(ctx, "suix_getReferenceGasPrice", nil, &raw, true); err != nil {
		return 0, err
	}
	price, err := strconv.ParseUint(raw.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf(messages.SuiGasPriceFmt, raw.String(), err)
	}
	return price, nil
}

// Coin is a SUI coin owned by an address.
type Coin struct {
	Ref     ObjectRef
	Balance uint64
}

type coinPage struct {
	Data []struct {
		CoinObjectID string      `json:"coinObjectId"`
		Version      json.Number `json:"version"`
		Digest       string      `json:"digest"`
		Balance      json.Number `json:"balance"`
	} `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// Coins lists every SUI coin owned by owner.
func (c *Client) Coins(ctx context.Context, owner string) ([]Coin, error) {
	var out []Coin
	var cursor any
	for {
		var page coinPage
		if err := c.call(ctx, "suix_getCoins", []any{owner, suiCoinType, cursor, nil}, &page, true); err != nil {
			return nil, err
		}
		for _, item := range page.Data {
			balance, err := strconv.ParseUint(item.Balance.String(), 10, 64)
			if err != nil {
				return nil, fmt.Errorf(messages.SuiCoinBalanceFmt, item.Balance.String(), item.CoinObjectID, err)
			}
			version, err := strconv.ParseUint(item.Version.String(), 10, 64)
			if err != nil {
				return nil, fmt.Errorf(messages.SuiCoinVersionFmt, item.Version.String(), item.CoinObjectID, err)
			}
			out = append(out, Coin{
				Ref:     ObjectRef{ObjectID: item.CoinObjectID, Version: version, Digest: item.Digest},
				Balance: balance,
			})
		}
		if !page.HasNextPage || page.NextCursor == nil {
			return out, nil
		}
		cursor = *page.NextCursor
	}
}

// SelectGas picks owner's coins, largest first, until their balance covers budget.
func (c *Client) SelectGas(ctx context.Context, owner string, budget uint64) ([]ObjectRef, error) {
	coins, err := c.Coins(ctx, owner)
	if err != nil {
		return nil, err
	}
	return selectCoins(coins, owner, budget)
}

func selectCoins(coins []Coin, owner string, budget uint64) ([]ObjectRef, error) {
	if len(coins) == 0 {
		return nil, fmt.Errorf(messages.SuiNoGasCoinsFmt, owner)
	}
	sorted := append([]Coin(nil), coins...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Balance > sorted[j].Balance })

	var total uint64
	refs := make([]ObjectRef, 0, len(sorted))
	for _, coin := range sorted {
		if len(refs) == maxGasCoins {
			break
		}
		refs = append(refs, coin.Ref)
		total += coin.Balance
		if total >= budget {
			return refs, nil
		}
	}
	return nil, fmt.Errorf(messages.SuiInsufficientGasFmt, owner, total, budget)
}

type objectResponse struct {
	Data *struct {
		ObjectID string          `json:"objectId"`
		Version  json.Number     `json:"version"`
		Digest   string          `json:"digest"`
		Owner    json.RawMessage `json:"owner"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// GetObject returns the current reference and owner of an object.
func (c *Client) GetObject(ctx context.Context, id string) (ObjectRef, Owner, error) {
	var resp objectResponse
	options := map[string]bool{"showOwner": true}
	if err := c.call(ctx, "sui_getObject", []any{id, options}, &resp, true); err != nil {
		return ObjectRef{}, nil, err
	}
	if resp.Data == nil {
		code := "notExists"
		if resp.Error != nil && resp.Error.Code != "" {
			code = resp.Error.Code
		}
		return ObjectRef{}, nil, fmt.Errorf(messages.SuiObjectNotFoundFmt, id, code)
	}
	version, err := strconv.ParseUint(resp.Data.Version.String(), 10, 64)
	if err != nil {
		return ObjectRef{}, nil, fmt.Errorf(messages.SuiCoinVersionFmt, resp.Data.Version.String(), id, err)
	}
	owner, err := DecodeOwner(resp.Data.Owner)
	if err != nil {
		return ObjectRef{}, nil, err
	}
	return ObjectRef{ObjectID: resp.Data.ObjectID, Version: version, Digest: resp.Data.Digest}, owner, nil
}

// Resolve replaces unresolved object inputs with owned or shared object arguments.
func (c *Client) Resolve(ctx context.Context, tx *ProgrammableTransaction) error {
	for _, idx := range tx.Unresolved() {
		input := tx.Inputs[idx].(UnresolvedObjectArg)
		ref, owner, err := c.GetObject(ctx, input.ObjectID)
		if err != nil {
			return err
		}
		switch o := owner.(type) {
		case AddressOwner, ObjectOwner, ImmutableOwner:
			tx.Inputs[idx] = OwnedObjectArg{Ref: ref}
		case SharedOwner:
			tx.Inputs[idx] = SharedObjectArg{ObjectID: ref.ObjectID, InitialSharedVersion: o.InitialSharedVersion, Mutable: input.Mutable}
		default:
			return fmt.Errorf(messages.SuiObjectOwnerFmt, input.ObjectID)
		}
	}
	return nil
}

// Prepare resolves inputs, selects gas and returns the BCS transaction bytes.
func (c *Client) Prepare(ctx context.Context, tx *ProgrammableTransaction, sender string, budget uint64) ([]byte, error) {
	if strings.TrimSpace(sender) == "" {
		return nil, errors.New(messages.SuiSenderRequired)
	}
	if budget == 0 {
		return nil, errors.New(messages.SuiGasBudgetRequired)
	}
	if err := c.Resolve(ctx, tx); err != nil {
		return nil, err
	}
	price, err := c.ReferenceGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	gas, err := c.SelectGas(ctx, sender, budget)
	if err != nil {
		return nil, err
	}
	data := TransactionData{Sender: sender, GasPayment: gas, GasPrice: price, GasBudget: budget, Tx: tx}
	return data.Marshal()
}

// Serialize returns the base64 unsigned transaction bytes for external signing.
func (c *Client) Serialize(ctx context.Context, tx *ProgrammableTransaction, sender string, budget uint64) (string, error) {
	txBytes, err := c.Prepare(ctx, tx, sender, budget)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(txBytes), nil
}

// Submit builds, signs and executes tx, waiting for local execution.
// Every failure is returned as a *SubmissionError.
func (c *Client) Submit(ctx context.Context, tx *ProgrammableTransaction, signer Signer, opts SubmitOptions) (*TransactionResponse, error) {
	op := opts.Op
	if op == "" {
		op = "execute"
	}
	if signer == nil {
		return nil, &SubmissionError{Op: op, Err: errors.New(messages.SuiSignerRequired)}
	}
	budget := opts.GasBudget
	if budget == 0 {
		budget = DefaultGasBudget
	}
	txBytes, err := c.Prepare(ctx, tx, signer.Address(), budget)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}
	signature, err := signer.SignTransaction(txBytes)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}
	c.logger.Debug("executing transaction", "op", op, "sender", signer.Address(), "bytes", len(txBytes), "gas_budget", budget)

	resp, err := c.Execute(ctx, base64.StdEncoding.EncodeToString(txBytes), []string{signature}, opts)
	if err != nil {
		return nil, &SubmissionError{Op: op, Err: err}
	}
	c.logger.Info("transaction executed", "op", op, "digest", resp.Digest, "status", resp.Status().Status)
	return resp, nil
}

// Execute submits already signed transaction bytes.
func (c *Client) Execute(ctx context.Context, txBytes string, signatures []string, opts SubmitOptions) (*TransactionResponse, error) {
	options := map[string]bool{
		"showEffects":       opts.ShowEffects,
		"showObjectChanges": opts.ShowObjectChanges,
	}
	var resp TransactionResponse
	params := []any{txBytes, signatures, options, "WaitForLocalExecution"}
	if err := c.call(ctx, "sui_executeTransactionBlock", params, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}
