package repository

import (
	"fmt"
	"sync"

	"bank-service/internal/pkg/xerrors"
	"bank-service/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Credential is one stored credential set. Only bcrypt hashes are kept; the
// demo's plaintext password map is deliberately not reproduced.
type Credential struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	PinHash      string `json:"pin_hash,omitempty"`
}

// CredentialRepository stores password and transaction-PIN hashes keyed by
// email, mirrored to the userCredentials snapshot.
type CredentialRepository struct {
	mu     sync.Mutex
	store  *storage.Store
	logger *zap.Logger
	byMail map[string]*Credential
}

func NewCredentialRepository(store *storage.Store, logger *zap.Logger) (*CredentialRepository, error) {
	r := &CredentialRepository{
		store:  store,
		logger: logger,
		byMail: make(map[string]*Credential),
	}
	var snapshot []*Credential
	if err := store.Load(storage.KeyCredentials, &snapshot); err != nil {
		if err != storage.ErrNoKey {
			return nil, fmt.Errorf("load credentials snapshot: %w", err)
		}
	}
	for _, c := range snapshot {
		r.byMail[c.Email] = c
	}
	return r, nil
}

// SetPassword hashes and stores the password for email, creating the entry
// if needed.
func (r *CredentialRepository) SetPassword(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byMail[email]
	if !ok {
		c = &Credential{Email: email}
		r.byMail[email] = c
	}
	c.PasswordHash = string(hash)
	return r.persistLocked()
}

// VerifyPassword reports ErrInvalidCredentials for both unknown emails and
// wrong passwords — callers never learn which check failed.
func (r *CredentialRepository) VerifyPassword(email, password string) error {
	r.mu.Lock()
	c, ok := r.byMail[email]
	r.mu.Unlock()
	if !ok {
		return xerrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return xerrors.ErrInvalidCredentials
	}
	return nil
}

// SetPin hashes and stores the transaction PIN for email.
func (r *CredentialRepository) SetPin(email, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byMail[email]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	c.PinHash = string(hash)
	return r.persistLocked()
}

// VerifyPin checks the transaction PIN. ErrPinNotSet when none exists.
func (r *CredentialRepository) VerifyPin(email, pin string) error {
	r.mu.Lock()
	c, ok := r.byMail[email]
	r.mu.Unlock()
	if !ok || c.PinHash == "" {
		return xerrors.ErrPinNotSet
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PinHash), []byte(pin)) != nil {
		return xerrors.ErrInvalidPin
	}
	return nil
}

func (r *CredentialRepository) persistLocked() error {
	snapshot := make([]*Credential, 0, len(r.byMail))
	for _, c := range r.byMail {
		snapshot = append(snapshot, c)
	}
	return r.store.Save(storage.KeyCredentials, snapshot)
}
