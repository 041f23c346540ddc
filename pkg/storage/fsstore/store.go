package fsstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/dkravchenko/polyclinic-backend/pkg/config"
	"github.com/dkravchenko/polyclinic-backend/pkg/logger"
)

const photosDir = "photos"

// Locators are opaque random hex tokens. Anything else is rejected before
// it can touch the filesystem.
var locatorPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ErrNotFound is returned when no object exists for a locator.
var ErrNotFound = errors.New("object not found")

// ErrInvalidLocator is returned for locators that fail validation.
var ErrInvalidLocator = errors.New("invalid object locator")

// Store persists profile photos on the local filesystem under a configured
// root. Objects are addressed by (user id, locator) so a leaked locator
// alone does not enumerate other users' files.
type Store struct {
	root    string
	maxSize int64
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New prepares the photo directory and verifies it is writable.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Store, error) {
	if cfg.RootDir == "" {
		return nil, errors.New("storage root dir is required")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, errors.New("storage max upload size must be positive")
	}

	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, photosDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating photo directory: %w", err)
	}

	store := &Store{root: root, maxSize: int64(cfg.MaxUploadMB) << 20}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("storage health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "photo storage initialized")
	}
	return store, nil
}

// MaxSize returns the configured upload cap in bytes.
func (s *Store) MaxSize() int64 {
	if s == nil {
		return 0
	}
	return s.maxSize
}

// Save writes the photo bytes for a user and returns a fresh locator. A
// second upload for the same user gets a new locator; the previous object
// is removed by the caller via Delete if desired.
func (s *Store) Save(ctx context.Context, userID int, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage not initialized")
	}
	if userID <= 0 {
		return "", errors.New("user id must be positive")
	}
	if len(data) == 0 {
		return "", errors.New("photo payload is empty")
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("photo exceeds %d byte limit", s.maxSize)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	locator, err := newLocator()
	if err != nil {
		return "", err
	}

	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating user photo directory: %w", err)
	}

	path := filepath.Join(dir, locator+".jpg")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("publishing photo: %w", err)
	}
	return locator, nil
}

// Load reads the photo stored for the user under the given locator.
func (s *Store) Load(ctx context.Context, userID int, locator string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("storage not initialized")
	}
	if userID <= 0 {
		return nil, ErrNotFound
	}
	if !locatorPattern.MatchString(locator) {
		return nil, ErrInvalidLocator
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.userDir(userID), locator+".jpg"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	return data, nil
}

// Delete removes the photo stored under the locator. Missing objects are
// not an error.
func (s *Store) Delete(ctx context.Context, userID int, locator string) error {
	if s == nil {
		return errors.New("storage not initialized")
	}
	if userID <= 0 || !locatorPattern.MatchString(locator) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.userDir(userID), locator+".jpg"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing photo: %w", err)
	}
	return nil
}

// Ping verifies the storage root is writable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.root == "" {
		return errors.New("storage not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	probe := filepath.Join(s.root, photosDir, ".probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	return os.Remove(probe)
}

func (s *Store) userDir(userID int) string {
	return filepath.Join(s.root, photosDir, strconv.Itoa(userID))
}

func newLocator() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating locator: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
