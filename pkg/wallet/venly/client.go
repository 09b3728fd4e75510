package venly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/time/rate"

	"github.com/galxe/wallet-migrator/pkg/config"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

const (
	signingMethodHeader = "X-Signing-Method"
	// tokens are refreshed this long before they expire
	tokenExpiryMargin = 30 * time.Second
)

// Client is a minimal Venly wallet API client using client-credentials auth
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	clientID      string
	clientSecret  string
	apiURL        string
	authURL       string
	signingMethod string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(cfg config.VenlyConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		limiter:       rate.NewLimiter(limit, 1),
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		apiURL:        strings.TrimRight(cfg.APIURL, "/"),
		authURL:       cfg.AuthURL,
		signingMethod: cfg.SigningMethod,
	}
}

type User struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

type Wallet struct {
	ID         string `json:"id"`
	Address    string `json:"address"`
	SecretType string `json:"secretType"`
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Result  T    `json:"result"`
}

// GetUserByReference returns the user registered under reference
func (c *Client) GetUserByReference(ctx context.Context, reference string) (*User, error) {
	var resp envelope[[]User]
	if err := c.do(ctx, http.MethodGet, c.apiURL+"/api/users?reference="+url.QueryEscape(reference), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("[Venly] failed to get user: %w", err)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("[Venly] %w: %s", wallet.ErrAccountNotFound, reference)
	}
	return &resp.Result[0], nil
}

// GetWallets returns the wallets owned by a user
func (c *Client) GetWallets(ctx context.Context, userID string) ([]Wallet, error) {
	var resp envelope[[]Wallet]
	if err := c.do(ctx, http.MethodGet, c.apiURL+"/api/wallets?userId="+url.QueryEscape(userID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("[Venly] failed to get wallets: %w", err)
	}
	return resp.Result, nil
}

type signatureRequest struct {
	Type     string `json:"type"`
	WalletID string `json:"walletId"`
	Submit   bool   `json:"submit"`
	ChainID  uint64 `json:"chainId"`
	To       string `json:"to,omitempty"`
	Value    string `json:"value"`
	Data     string `json:"data,omitempty"`
	Nonce    uint64 `json:"nonce"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice,omitempty"`
	MaxFee   string `json:"maxFeePerGas,omitempty"`
	MaxTip   string `json:"maxPriorityFeePerGas,omitempty"`
}

type signatureResult struct {
	Type              string `json:"type"`
	SignedTransaction string `json:"signedTransaction"`
}

// SignTransaction signs tx with the given wallet without submitting it and
// returns the raw signed transaction
func (c *Client) SignTransaction(ctx context.Context, walletID string, tx *types.Transaction, chainID *big.Int) (string, error) {
	req := signatureRequest{
		Type:     "ETHEREUM_TRANSACTION",
		WalletID: walletID,
		ChainID:  chainID.Uint64(),
		Value:    tx.Value().String(),
		Nonce:    tx.Nonce(),
		Gas:      new(big.Int).SetUint64(tx.Gas()).String(),
	}
	if to := tx.To(); to != nil {
		req.To = to.Hex()
	}
	if len(tx.Data()) > 0 {
		req.Data = hexutil.Encode(tx.Data())
	}
	if tx.Type() == types.DynamicFeeTxType {
		req.MaxFee = tx.GasFeeCap().String()
		req.MaxTip = tx.GasTipCap().String()
	} else {
		req.GasPrice = tx.GasPrice().String()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if c.signingMethod != "" {
		headers[signingMethodHeader] = c.signingMethod
	}

	var resp envelope[signatureResult]
	if err := c.do(ctx, http.MethodPost, c.apiURL+"/api/signatures", body, headers, &resp); err != nil {
		return "", fmt.Errorf("[Venly] failed to sign transaction: %w", err)
	}
	if !resp.Success || resp.Result.SignedTransaction == "" {
		return "", fmt.Errorf("[Venly] signature request was not successful")
	}
	return resp.Result.SignedTransaction, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Add(tokenExpiryMargin).Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("[Venly] failed to authenticate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("[Venly] authenticate: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("[Venly] decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("[Venly] empty access token")
	}

	c.accessToken = out.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, headers map[string]string, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
