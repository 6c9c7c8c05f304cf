// Package mapping assigns company accounts to master chart entries. A
// company account has at most one mapping; an account without one is
// reported as unmapped and kept out of every statement line.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/threestatement/internal/ledger"
)

var ErrUnknownAccount = errors.New("unknown account")

// Update maps one company account to one master account.
type Update struct {
	CompanyAccountID string `json:"company_account_id"`
	MasterAccountID  string `json:"master_account_id"`
}

// Store is the subset of the ledger the resolver needs.
type Store interface {
	InTx(ctx context.Context, fn func(*ledger.Tx) error) error
	ClearMappings(ctx context.Context, companyID string) (int64, error)
	ListUnmapped(ctx context.Context, companyID string, asOf time.Time) ([]ledger.UnmappedAccount, error)
	ListAccountMappings(ctx context.Context, companyID string) ([]ledger.AccountMapping, error)
}

type Resolver struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewResolver(store Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger, now: time.Now}
}

// SetMapping upserts the mapping of one company account.
func (r *Resolver) SetMapping(ctx context.Context, companyAccountID, masterAccountID, mappedBy string) error {
	return r.store.InTx(ctx, func(tx *ledger.Tx) error {
		if _, err := tx.CompanyAccountOwner(ctx, companyAccountID); err != nil {
			return unknown(err, "company account", companyAccountID)
		}
		return r.set(ctx, tx, Update{CompanyAccountID: companyAccountID, MasterAccountID: masterAccountID}, mappedBy)
	})
}

// SetMappings upserts a batch for one company atomically. Every company
// account must belong to the company and every master account must exist.
func (r *Resolver) SetMappings(ctx context.Context, companyID string, updates []Update, mappedBy string) (int, error) {
	err := r.store.InTx(ctx, func(tx *ledger.Tx) error {
		for _, u := range updates {
			owner, err := tx.CompanyAccountOwner(ctx, u.CompanyAccountID)
			if err != nil {
				return unknown(err, "company account", u.CompanyAccountID)
			}
			if owner != companyID {
				return fmt.Errorf("%w: company account %s does not belong to company %s", ErrUnknownAccount, u.CompanyAccountID, companyID)
			}
			if err := r.set(ctx, tx, u, mappedBy); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("account mappings updated", "company_id", companyID, "count", len(updates))
	return len(updates), nil
}

func (r *Resolver) set(ctx context.Context, tx *ledger.Tx, u Update, mappedBy string) error {
	ok, err := tx.MasterAccountExists(ctx, u.MasterAccountID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: master account %s", ErrUnknownAccount, u.MasterAccountID)
	}
	return tx.SetMapping(ctx, u.CompanyAccountID, u.MasterAccountID, mappedBy, r.now())
}

func unknown(err error, kind, id string) error {
	if errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrUnknownAccount, kind, id)
	}
	return err
}

// ClearMappings removes every mapping of the company.
func (r *Resolver) ClearMappings(ctx context.Context, companyID string) (int64, error) {
	n, err := r.store.ClearMappings(ctx, companyID)
	if err != nil {
		return 0, err
	}
	r.logger.Info("account mappings cleared", "company_id", companyID, "count", n)
	return n, nil
}

// Unmapped lists active unmapped accounts with their balance as of asOf.
func (r *Resolver) Unmapped(ctx context.Context, companyID string, asOf time.Time) ([]ledger.UnmappedAccount, error) {
	return r.store.ListUnmapped(ctx, companyID, asOf)
}

// Mappings lists every company account with its master account, if mapped.
func (r *Resolver) Mappings(ctx context.Context, companyID string) ([]ledger.AccountMapping, error) {
	return r.store.ListAccountMappings(ctx, companyID)
}

// Completeness summarises how much of a company's ledger is unmapped.
type Completeness struct {
	UnmappedAccounts int   `json:"unmapped_accounts"`
	UnmappedCents    int64 `json:"unmapped_balance_cents"`
}

func (c Completeness) Complete() bool { return c.UnmappedAccounts == 0 }

func (r *Resolver) Completeness(ctx context.Context, companyID string, asOf time.Time) (Completeness, error) {
	unmapped, err := r.store.ListUnmapped(ctx, companyID, asOf)
	if err != nil {
		return Completeness{}, err
	}
	var c Completeness
	for _, u := range unmapped {
		c.UnmappedAccounts++
		c.UnmappedCents += u.BalanceCents
	}
	return c, nil
}
