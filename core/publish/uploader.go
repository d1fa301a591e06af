package publish

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"

	"packvault/storage"
)

// AssetUploader uploads a single binary asset into a destination
// folder of the content store and returns an addressable URL.
// Concurrent calls are independent and unordered.
type AssetUploader interface {
	Upload(ctx context.Context, asset Asset, folder string) (string, error)
}

// AssetRemover deletes a previously uploaded asset by URL. Used only
// for best-effort compensation; failures are logged, never escalated.
type AssetRemover interface {
	Remove(ctx context.Context, url string) error
}

// StoreUploader is the MinIO-backed uploader.
type StoreUploader struct {
	store *storage.ObjectStore
}

// NewStoreUploader creates an uploader over the object store.
func NewStoreUploader(store *storage.ObjectStore) *StoreUploader {
	return &StoreUploader{store: store}
}

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
var multipleSpaces = regexp.MustCompile(`\s+`)

func uniqueSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// safeObjectName sanitizes an uploaded filename into a store key,
// appending a random suffix so two files with the same name never
// collide.
func safeObjectName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = multipleSpaces.ReplaceAllString(strings.TrimSpace(base), "_")
	base = nonAlphaNumeric.ReplaceAllString(base, "")

	maxLength := 100
	if len(base) > maxLength {
		base = base[:maxLength]
	}
	if base == "" {
		base = "asset"
	}
	if ext == "" {
		ext = ".dat"
	}

	return base + "_" + uniqueSuffix() + ext
}

// Upload puts the asset into the store under folder. On failure
// nothing is written and the typed error carries the cause.
func (u *StoreUploader) Upload(ctx context.Context, asset Asset, folder string) (string, error) {
	url, err := u.store.Put(ctx, asset.Reader, asset.Size, asset.ContentType, folder, safeObjectName(asset.Name))
	if err != nil {
		return "", &UploadError{Stage: folder, Name: asset.Name, Err: err}
	}
	return url, nil
}

// Remove deletes the object behind url.
func (u *StoreUploader) Remove(ctx context.Context, url string) error {
	return u.store.Remove(ctx, url)
}
