package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/config"
	"github.com/google/uuid"
)

const BucketCVs = "cvs"

type StorageServiceInterface interface {
	Upload(ctx context.Context, bucket, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// LocalStorageService stores bucket objects on disk under Root and serves
// them through the /storage static route.
type LocalStorageService struct {
	root      string
	publicURL string
}

func NewLocalStorageService(cfg *config.StorageConfig) *LocalStorageService {
	return &LocalStorageService{root: cfg.Root, publicURL: strings.TrimRight(cfg.PublicURL, "/")}
}

// Upload writes r under a random object name and returns its public URL.
// The original extension is kept; the original name is not.
func (s *LocalStorageService) Upload(ctx context.Context, bucket, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create bucket %s", bucket)
	}

	object := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	f, err := os.Create(filepath.Join(dir, object))
	if err != nil {
		return "", errors.Wrap(err, "create object")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "write object")
	}
	return s.publicURL + "/" + bucket + "/" + object, nil
}

// Remove deletes an object by the URL Upload returned. Missing objects are
// not an error.
func (s *LocalStorageService) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok {
		return errors.Newf("object %q is not served by this storage", url)
	}
	root := filepath.Clean(s.root)
	path := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return errors.Newf("object %q is outside the storage root", url)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove object")
	}
	return nil
}
