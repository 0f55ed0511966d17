package fileHandlers

import (
	"chatrooms-backend/internal/models"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTooLarge = errors.New("file is too large")
	ErrNotImage = errors.New("file is not an image")
	ErrEmpty    = errors.New("file is empty")
)

// raster formats only, svg can carry scripts and is served from our origin
var allowedImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

type IDGenerator interface {
	Generate() int64
}

// Uploads writes chat images into one directory, served under urlPrefix.
type Uploads struct {
	dir       string
	urlPrefix string
	maxBytes  int64
	ids       IDGenerator
}

func NewUploads(dir string, urlPrefix string, maxBytes int64, ids IDGenerator) (*Uploads, error) {
	// make folders if they don't exist yet
	err := os.MkdirAll(dir, os.ModePerm)
	if err != nil {
		return nil, err
	}

	return &Uploads{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		maxBytes:  maxBytes,
		ids:       ids,
	}, nil
}

func (u *Uploads) MaxBytes() int64 {
	return u.maxBytes
}

// Save checks that data is an image and stores it under a new unique name.
func (u *Uploads) Save(originalName string, data []byte) (models.Upload, error) {
	if len(data) == 0 {
		return models.Upload{}, ErrEmpty
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return models.Upload{}, ErrTooLarge
	}

	// detect by content, the name and header a client sends can't be trusted
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return models.Upload{}, fmt.Errorf("%w: %s", ErrNotImage, mtype.String())
	}

	fileName := fmt.Sprintf("image-%d%s", u.ids.Generate(), mtype.Extension())
	fullPath := filepath.Join(u.dir, fileName)

	err := os.WriteFile(fullPath, data, 0644)
	if err != nil {
		return models.Upload{}, err
	}

	return models.Upload{
		FileName:     fileName,
		OriginalName: filepath.Base(originalName),
		Path:         path.Join(u.urlPrefix, fileName),
		ContentType:  mtype.String(),
	}, nil
}

// Remove deletes a stored file, a file that is already gone is not an error.
func (u *Uploads) Remove(fileName string) error {
	// only plain names produced by Save are accepted
	if fileName == "" || fileName != filepath.Base(fileName) {
		return fmt.Errorf("invalid file name %q", fileName)
	}

	err := os.Remove(filepath.Join(u.dir, fileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
