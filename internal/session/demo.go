package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crew-match-backend/internal/models"

	"gopkg.in/yaml.v3"
)

// ErrDemoUserNotFound is returned by demo sign-in when no stored identity has the email
var ErrDemoUserNotFound = errors.New("demo user not found")

// IsDemoBackend reports whether backendURL means no backend is configured
func IsDemoBackend(backendURL string) bool {
	backendURL = strings.TrimSpace(backendURL)
	return backendURL == "" || strings.Contains(backendURL, "placeholder")
}

// DemoAuthenticator keeps a single local identity in a YAML file
type DemoAuthenticator struct {
	path string
	now  func() time.Time
}

// NewDemoAuthenticator creates a demo authenticator persisting to path
func NewDemoAuthenticator(path string) *DemoAuthenticator {
	return &DemoAuthenticator{path: path, now: time.Now}
}

// Restore reads the stored identity
func (d *DemoAuthenticator) Restore(context.Context) (*models.Identity, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read demo user: %w", err)
	}

	var identity models.Identity
	if err := yaml.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to parse demo user: %w", err)
	}
	return &identity, nil
}

// SignUp fabricates an identity and stores it, replacing any previous one
func (d *DemoAuthenticator) SignUp(_ context.Context, email, _ string, metadata models.Metadata) (*models.Identity, error) {
	now := d.now()
	identity := &models.Identity{
		ID:        fmt.Sprintf("demo-user-%d", now.UnixMilli()),
		Email:     email,
		Metadata:  metadata,
		CreatedAt: now.UTC(),
	}

	data, err := yaml.Marshal(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode demo user: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create demo user dir: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write demo user: %w", err)
	}
	return identity, nil
}

// SignIn succeeds only for the email of the stored identity; the password is not checked
func (d *DemoAuthenticator) SignIn(ctx context.Context, email, _ string) (*models.Identity, error) {
	identity, err := d.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.Email != email {
		return nil, ErrDemoUserNotFound
	}
	return identity, nil
}

// SignOut removes the stored identity
func (d *DemoAuthenticator) SignOut(context.Context) error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove demo user: %w", err)
	}
	return nil
}
