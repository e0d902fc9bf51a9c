package uploads

import (
	"context"
	"fmt"
	"math/rand"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/jobfolio/apiserver/internal/storage"
)

const (
	// MaxFileSize is the per-file upload ceiling.
	MaxFileSize = 10 << 20

	// FieldImage and FieldCV are the only multipart file fields accepted
	// by registration.
	FieldImage = "image"
	FieldCV    = "cv"

	prefixProfile = "profile"
	prefixCV      = "cv"

	contentTypePDF    = "application/pdf"
	imageTypePrefix   = "image/"
	headerContentType = "Content-Type"
)

// ValidateForm checks the file parts of a parsed multipart form before
// anything is written: only the image and cv fields are allowed, at most
// one file each, with the right content type and within the size ceiling.
func ValidateForm(form *multipart.Form) error {
	if form == nil {
		return nil
	}

	for field, headers := range form.File {
		switch field {
		case FieldImage, FieldCV:
		default:
			return fmt.Errorf("unexpected file field %q", field)
		}
		if len(headers) > 1 {
			return fmt.Errorf("only one file is allowed under %q", field)
		}
		for _, fh := range headers {
			if err := validateFile(field, fh); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateFile(field string, fh *multipart.FileHeader) error {
	if fh.Size > MaxFileSize {
		return fmt.Errorf("file %q exceeds the %d MiB limit", fh.Filename, MaxFileSize>>20)
	}

	contentType := fh.Header.Get(headerContentType)
	switch field {
	case FieldImage:
		if !strings.HasPrefix(contentType, imageTypePrefix) {
			return fmt.Errorf("field %q only accepts images, got %q", FieldImage, contentType)
		}
	case FieldCV:
		if contentType != contentTypePDF {
			return fmt.Errorf("field %q only accepts PDF files, got %q", FieldCV, contentType)
		}
	}
	return nil
}

// FileFor returns the single file uploaded under the given field, or nil
// when the field is absent. ValidateForm must have accepted the form first.
func FileFor(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil || len(form.File[field]) == 0 {
		return nil
	}
	return form.File[field][0]
}

// Saver writes validated uploads to object storage under generated names.
type Saver struct {
	store storage.ObjectStorage
}

func NewSaver(store storage.ObjectStorage) *Saver {
	return &Saver{store: store}
}

// SaveProfileImage stores a validated profile image and returns the
// generated filename.
func (s *Saver) SaveProfileImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	return s.save(ctx, fh, prefixProfile)
}

// SaveCV stores a validated CV and returns the generated filename.
func (s *Saver) SaveCV(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	return s.save(ctx, fh, prefixCV)
}

// Remove deletes a previously saved upload. Used to compensate when the
// registration insert fails after the file was written.
func (s *Saver) Remove(ctx context.Context, filename string) error {
	return s.store.Delete(ctx, filename)
}

func (s *Saver) save(ctx context.Context, fh *multipart.FileHeader, prefix string) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	name := uniqueName(prefix, fh.Filename)
	if err := s.store.Put(ctx, name, file, fh.Size, fh.Header.Get(headerContentType)); err != nil {
		return "", err
	}
	return name, nil
}

// uniqueName builds "<prefix>-<unix millis>-<random>.<ext>". The
// timestamp/random pair keeps concurrent uploads from colliding and the
// original extension is preserved for static serving.
func uniqueName(prefix, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%d-%d%s", prefix, time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
