package migration

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/galxe/wallet-migrator/pkg/assets"
)

// Status is the result of migrating one asset
type Status string

const (
	StatusMigrated Status = "migrated"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// TxRecord describes one submitted transaction
type TxRecord struct {
	Hash    common.Hash `json:"hash"`
	Nonce   uint64      `json:"nonce"`
	TokenID *big.Int    `json:"token_id,omitempty"`
	Amount  *big.Int    `json:"amount"`
}

// Outcome is the per-asset result of a migration run
type Outcome struct {
	Asset        assets.Asset `json:"asset"`
	Status       Status       `json:"status"`
	Reason       string       `json:"reason,omitempty"`
	Err          error        `json:"-"`
	Transactions []TxRecord   `json:"transactions,omitempty"`
}

// NoncesUsed is the number of sender nonces the asset consumed
func (o Outcome) NoncesUsed() uint64 {
	return uint64(len(o.Transactions))
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(o)}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

func migrated(asset assets.Asset, txs []TxRecord) Outcome {
	return Outcome{Asset: asset, Status: StatusMigrated, Transactions: txs}
}

func skipped(asset assets.Asset, reason string) Outcome {
	return Outcome{Asset: asset, Status: StatusSkipped, Reason: reason}
}

func failed(asset assets.Asset, err error, txs []TxRecord) Outcome {
	return Outcome{Asset: asset, Status: StatusFailed, Reason: err.Error(), Err: err, Transactions: txs}
}

// Report lists every outcome of one run in registry order
type Report struct {
	Sender     common.Address `json:"sender"`
	Recipient  common.Address `json:"recipient"`
	Outcomes   []Outcome      `json:"outcomes"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Completed reports whether no asset failed
func (r *Report) Completed() bool {
	return len(r.Failed()) == 0
}

// Failed returns the failed outcomes
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// Transactions returns every submitted transaction in registry order
func (r *Report) Transactions() []TxRecord {
	var out []TxRecord
	for _, o := range r.Outcomes {
		out = append(out, o.Transactions...)
	}
	return out
}

func (r *Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		*alias
		Completed bool `json:"completed"`
	}{alias: (*alias)(r), Completed: r.Completed()})
}
