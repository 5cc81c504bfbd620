package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alexedwards/argon2id"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/indokarya/registration-portal/internal/logger"
)

var (
	ErrUserExists  = errors.New("username already exists")
	ErrUnknownUser = errors.New("unknown username")
)

// Default bootstrap account, matching the original deployment. Only seeded
// when the operator opts in; see CredentialStore.Bootstrap.
const (
	DefaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// Used for a fake compare when the username does not exist, so a lookup miss
// costs the same as a password mismatch.
var defaultHashForError string

func init() {
	var err error

	defaultHashForError, err = argon2id.CreateHash(
		"kQx1u7dLJ9w0m3H5S8TfVbYcZr2NpAe4GiKoMsUvXzB6yDqEhRjWnPlC0tFg=",
		argon2id.DefaultParams,
	)
	if err != nil {
		logger.Logger.Error("error creating default hash", "error", err)
		os.Exit(1)
	}
}

type Credential struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// CredentialStore persists {username, passwordHash} pairs in one JSON
// document, rewritten whole on every mutation. Hashes are verified, never
// reversed, and never logged.
type CredentialStore struct {
	path string
	mu   sync.Mutex
}

func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

func (s *CredentialStore) load() ([]Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Credential{}, nil
		}
		return nil, fmt.Errorf("failed to read credential document: %w", err)
	}

	var creds []Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode credential document: %w", err)
	}

	return creds, nil
}

func (s *CredentialStore) write(creds []Credential) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential document: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace credential document: %w", err)
	}

	return nil
}

func fakePasswordHash(ctx context.Context) {
	_, span := tracer.Start(ctx, "fakePasswordHash")
	defer span.End()

	_, err := argon2id.ComparePasswordAndHash("i am a very real password", defaultHashForError)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to compare fake password with default hash for error")
		return
	}

	span.AddEvent("compared fake password and default hash for error")
}

// Bootstrap seeds a missing credential document with the well-known default
// account. The default secret is a liability carried from the original
// deployment; callers gate this behind an explicit config switch and the
// seeded account is logged loudly so operators rotate it.
func (s *CredentialStore) Bootstrap(ctx context.Context) error {
	_, span := tracer.Start(ctx, "CredentialStore.Bootstrap")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		span.AddEvent("credential document present, nothing to seed")
		return nil
	} else if !os.IsNotExist(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stat credential document")
		return fmt.Errorf("failed to stat credential document: %w", err)
	}

	hash, err := argon2id.CreateHash(defaultAdminPassword, argon2id.DefaultParams)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hash default password")
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	if err := s.write([]Credential{{Username: DefaultAdminUsername, PasswordHash: hash}}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to seed credential document")
		return err
	}

	logger.Logger.WarnContext(ctx,
		"seeded credential document with the default admin account; rotate it immediately",
		"username", DefaultAdminUsername,
	)

	span.SetStatus(codes.Ok, "seeded default admin")
	return nil
}

// Verify reports whether the secret matches the stored hash for username.
// An unknown username and a wrong password both come back (false, nil); the
// difference is visible only in the debug log.
func (s *CredentialStore) Verify(ctx context.Context, username, secret string) (bool, error) {
	ctx, span := tracer.Start(ctx, "CredentialStore.Verify")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	s.mu.Lock()
	creds, err := s.load()
	s.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load credential document")
		return false, err
	}

	for _, cred := range creds {
		if cred.Username != username {
			continue
		}

		match, err := argon2id.ComparePasswordAndHash(secret, cred.PasswordHash)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to compare password and hash")
			return false, fmt.Errorf("failed to compare password and hash: %w", err)
		}

		span.SetStatus(codes.Ok, "compared password")
		return match, nil
	}

	// Waste time for an unknown username
	fakePasswordHash(ctx)
	logger.Logger.DebugContext(ctx, "login attempt for unknown username", "username", username)

	span.SetStatus(codes.Ok, "username not found")
	return false, nil
}

// Add stores a new credential with a fresh argon2id hash.
func (s *CredentialStore) Add(ctx context.Context, username, secret string) error {
	_, span := tracer.Start(ctx, "CredentialStore.Add")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load credential document")
		return err
	}

	for _, cred := range creds {
		if cred.Username == username {
			span.AddEvent("username already present")
			return ErrUserExists
		}
	}

	hash, err := argon2id.CreateHash(secret, argon2id.DefaultParams)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hash password")
		return fmt.Errorf("failed to hash password: %w", err)
	}

	creds = append(creds, Credential{Username: username, PasswordHash: hash})

	if err := s.write(creds); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist credential document")
		return err
	}

	span.SetStatus(codes.Ok, "added credential")
	return nil
}

// Remove deletes the credential for username.
func (s *CredentialStore) Remove(ctx context.Context, username string) error {
	_, span := tracer.Start(ctx, "CredentialStore.Remove")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load credential document")
		return err
	}

	kept := creds[:0]
	found := false
	for _, cred := range creds {
		if cred.Username == username {
			found = true
			continue
		}
		kept = append(kept, cred)
	}

	if !found {
		return ErrUnknownUser
	}

	if err := s.write(kept); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist credential document")
		return err
	}

	span.SetStatus(codes.Ok, "removed credential")
	return nil
}

// Usernames lists stored usernames in document order.
func (s *CredentialStore) Usernames(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "CredentialStore.Usernames")
	defer span.End()

	s.mu.Lock()
	creds, err := s.load()
	s.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load credential document")
		return nil, err
	}

	names := make([]string, len(creds))
	for i, cred := range creds {
		names[i] = cred.Username
	}

	return names, nil
}
