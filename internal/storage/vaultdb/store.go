// Package vaultdb implements VaultStore using BadgerHold. Account names
// and access tokens are encrypted at rest with a locally generated secret
// key; holdings and audit entries carry no credentials and are stored as
// plain records.
package vaultdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/models"
)

// keySep is the composite key separator. Using a null byte prevents
// collisions when an account ID contains ":" characters.
const keySep = "\x00"

// Store implements interfaces.VaultStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	cipher *cipher
	logger *common.Logger
}

// storedAccount is the at-rest form of models.Account. Name and access
// token are sealed; type and subtype are not PII and stay readable.
type storedAccount struct {
	AccountID            string `badgerhold:"key"`
	NameEncrypted        string
	Type                 string
	Subtype              string
	AccessTokenEncrypted string
	LastSynced           time.Time
}

// NewStore opens the vault at path, creating the encryption key at
// keyPath on first use. Losing the key file makes encrypted fields
// unreadable.
func NewStore(logger *common.Logger, path, keyPath string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vault path %s: %w", path, err)
	}

	cipher, err := loadOrCreateCipher(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load vault key: %w", err)
	}

	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault at %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("Vault opened")
	return &Store{db: db, cipher: cipher, logger: logger}, nil
}

// SaveAccount stores a linked account, sealing its name and access token.
func (s *Store) SaveAccount(_ context.Context, account *models.Account) error {
	nameEnc, err := s.cipher.seal(account.Name)
	if err != nil {
		return fmt.Errorf("failed to encrypt account name: %w", err)
	}
	tokenEnc, err := s.cipher.seal(account.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	rec := &storedAccount{
		AccountID:            account.AccountID,
		NameEncrypted:        nameEnc,
		Type:                 account.Type,
		Subtype:              account.Subtype,
		AccessTokenEncrypted: tokenEnc,
		LastSynced:           account.LastSynced,
	}

	if err := s.db.Upsert(account.AccountID, rec); err != nil {
		return fmt.Errorf("failed to save account '%s': %w", account.AccountID, err)
	}
	return nil
}

// GetAccount retrieves and unseals one account.
func (s *Store) GetAccount(_ context.Context, accountID string) (*models.Account, error) {
	var rec storedAccount
	if err := s.db.Get(accountID, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("account '%s' not found", accountID)
		}
		return nil, fmt.Errorf("failed to get account '%s': %w", accountID, err)
	}
	return s.openAccount(&rec)
}

// ListAccounts retrieves all linked accounts, sorted by account ID.
func (s *Store) ListAccounts(_ context.Context) ([]*models.Account, error) {
	var recs []storedAccount
	if err := s.db.Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*models.Account, 0, len(recs))
	for i := range recs {
		account, err := s.openAccount(&recs[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountID < accounts[j].AccountID
	})
	return accounts, nil
}

// DeleteAccount removes an account. Missing accounts are not an error.
func (s *Store) DeleteAccount(_ context.Context, accountID string) error {
	if err := s.db.Delete(accountID, storedAccount{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete account '%s': %w", accountID, err)
	}
	return nil
}

func (s *Store) openAccount(rec *storedAccount) (*models.Account, error) {
	name, err := s.cipher.open(rec.NameEncrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt account name for '%s': %w", rec.AccountID, err)
	}
	token, err := s.cipher.open(rec.AccessTokenEncrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token for '%s': %w", rec.AccountID, err)
	}
	return &models.Account{
		AccountID:   rec.AccountID,
		Name:        name,
		Type:        rec.Type,
		Subtype:     rec.Subtype,
		AccessToken: token,
		LastSynced:  rec.LastSynced,
	}, nil
}

// ReadHoldings returns every stored lot across all accounts, in a stable
// order.
func (s *Store) ReadHoldings(_ context.Context) ([]*models.HoldingLot, error) {
	var all []models.HoldingLot
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})

	lots := make([]*models.HoldingLot, len(all))
	for i := range all {
		lots[i] = &all[i]
	}
	return lots, nil
}

// ReplaceHoldings wipes the account's snapshot and writes the new one.
// Holdings change daily; replacing the whole snapshot avoids duplicate
// lots, so there is no incremental merge.
func (s *Store) ReplaceHoldings(_ context.Context, accountID string, lots []*models.HoldingLot) error {
	if err := s.db.DeleteMatching(&models.HoldingLot{}, badgerhold.Where("AccountID").Eq(accountID)); err != nil {
		return fmt.Errorf("failed to clear holdings for '%s': %w", accountID, err)
	}

	now := time.Now()
	for i, lot := range lots {
		lot.AccountID = accountID
		lot.SyncedAt = now
		lot.ID = fmt.Sprintf("%s%s%06d", accountID, keySep, i)
		if err := s.db.Insert(lot.ID, lot); err != nil {
			return fmt.Errorf("failed to insert holding %s for '%s': %w", lot.RawTicker, accountID, err)
		}
	}

	s.logger.Debug().Str("account", accountID).Int("lots", len(lots)).Msg("Holdings snapshot replaced")
	return nil
}

// AppendAudit appends one audit log entry.
func (s *Store) AppendAudit(_ context.Context, source, action, detail string) error {
	entry := &models.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Source:    source,
		Action:    action,
		Detail:    detail,
	}
	if err := s.db.Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the most recent audit entries, newest first. A limit
// of zero or less returns everything.
func (s *Store) ListAudit(_ context.Context, limit int) ([]*models.AuditEntry, error) {
	var all []models.AuditEntry
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	entries := make([]*models.AuditEntry, len(all))
	for i := range all {
		entries[i] = &all[i]
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements VaultStore
var _ interfaces.VaultStore = (*Store)(nil)
