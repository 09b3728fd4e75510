package privy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"

	"github.com/galxe/wallet-migrator/pkg/config"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

const (
	appIDHeader       = "privy-app-id"
	walletAccountType = "wallet"
	embeddedClient    = "privy"
)

// Client is a minimal Privy server API client
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	appID      string
	appSecret  string
	apiURL     string
	authURL    string
}

func NewClient(cfg config.PrivyConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		authURL:    strings.TrimRight(cfg.AuthURL, "/"),
	}
}

// User is the subset of a Privy user the migrator reads
type User struct {
	ID             string          `json:"id"`
	LinkedAccounts []LinkedAccount `json:"linked_accounts"`
}

type LinkedAccount struct {
	Type             string `json:"type"`
	ID               string `json:"id,omitempty"`
	Address          string `json:"address"`
	ChainType        string `json:"chain_type,omitempty"`
	WalletClientType string `json:"wallet_client_type,omitempty"`
}

// EmbeddedWallet returns the user's Privy-managed ethereum wallet
func (u *User) EmbeddedWallet() (LinkedAccount, bool) {
	for _, account := range u.LinkedAccounts {
		if account.Type != walletAccountType || account.WalletClientType != embeddedClient {
			continue
		}
		if account.ChainType != "" && account.ChainType != "ethereum" {
			continue
		}
		return account, true
	}
	return LinkedAccount{}, false
}

// GetUserByEmail looks a user up by email; unknown users map to
// wallet.ErrAccountNotFound
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	body, err := json.Marshal(map[string]string{"address": email})
	if err != nil {
		return nil, err
	}

	var user User
	status, err := c.do(ctx, http.MethodPost, c.authURL+"/api/v1/users/email/address", body, &user)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("[Privy] %w: %s", wallet.ErrAccountNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("[Privy] failed to get user: %w", err)
	}
	return &user, nil
}

type rpcTransaction struct {
	Type                 uint8  `json:"type"`
	To                   string `json:"to,omitempty"`
	Value                string `json:"value"`
	Data                 string `json:"data,omitempty"`
	ChainID              uint64 `json:"chain_id"`
	Nonce                uint64 `json:"nonce"`
	GasLimit             string `json:"gas_limit"`
	GasPrice             string `json:"gas_price,omitempty"`
	MaxFeePerGas         string `json:"max_fee_per_gas,omitempty"`
	MaxPriorityFeePerGas string `json:"max_priority_fee_per_gas,omitempty"`
}

type rpcRequest struct {
	Method string `json:"method"`
	CAIP2  string `json:"caip2"`
	Params struct {
		Transaction rpcTransaction `json:"transaction"`
	} `json:"params"`
}

type rpcResponse struct {
	Method string `json:"method"`
	Data   struct {
		SignedTransaction string `json:"signed_transaction"`
		Encoding          string `json:"encoding"`
	} `json:"data"`
}

// SignTransaction asks Privy to sign tx with the given wallet and returns the
// raw signed transaction
func (c *Client) SignTransaction(ctx context.Context, walletID string, tx *types.Transaction, chainID *big.Int) (string, error) {
	req := rpcRequest{
		Method: "eth_signTransaction",
		CAIP2:  fmt.Sprintf("eip155:%s", chainID),
	}
	req.Params.Transaction = toRPCTransaction(tx, chainID)

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var resp rpcResponse
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/v1/wallets/%s/rpc", c.apiURL, walletID), body, &resp); err != nil {
		return "", fmt.Errorf("[Privy] failed to sign transaction: %w", err)
	}
	if resp.Data.SignedTransaction == "" {
		return "", fmt.Errorf("[Privy] empty signed transaction")
	}
	return resp.Data.SignedTransaction, nil
}

func toRPCTransaction(tx *types.Transaction, chainID *big.Int) rpcTransaction {
	out := rpcTransaction{
		Type:     tx.Type(),
		Value:    hexutil.EncodeBig(tx.Value()),
		ChainID:  chainID.Uint64(),
		Nonce:    tx.Nonce(),
		GasLimit: hexutil.EncodeUint64(tx.Gas()),
	}
	if to := tx.To(); to != nil {
		out.To = to.Hex()
	}
	if len(tx.Data()) > 0 {
		out.Data = hexutil.Encode(tx.Data())
	}
	if tx.Type() == types.DynamicFeeTxType {
		out.MaxFeePerGas = hexutil.EncodeBig(tx.GasFeeCap())
		out.MaxPriorityFeePerGas = hexutil.EncodeBig(tx.GasTipCap())
	} else {
		out.GasPrice = hexutil.EncodeBig(tx.GasPrice())
	}
	return out
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out interface{}) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(c.appID, c.appSecret)
	req.Header.Set(appIDHeader, c.appID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
