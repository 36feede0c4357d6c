package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/metrics"
	"github.com/bazarromero/catalog/pkg/storage"
)

const (
	imageDir       = "images"
	ImageURLPrefix = "/api/images/"

	DefaultImageMaxBytes = 5 << 20
)

var (
	ErrImageMissing  = fmt.Errorf("no image provided: %w", apperror.ErrBadRequest)
	ErrImageType     = fmt.Errorf("only jpeg, png, gif and webp images are allowed: %w", apperror.ErrBadRequest)
	ErrImageTooLarge = fmt.Errorf("image exceeds the size limit: %w", apperror.ErrBadRequest)
	ErrImageNotFound = fmt.Errorf("image: %w", apperror.ErrNotFound)
)

// Declared MIME type → canonical extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Extension → Content-Type used when serving.
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Upload is one received file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ImageService struct {
	disk     storage.Disk
	maxBytes int64
	now      func() time.Time
}

func NewImageService(disk storage.Disk, maxBytes int64) *ImageService {
	if maxBytes <= 0 {
		maxBytes = DefaultImageMaxBytes
	}
	return &ImageService{disk: disk, maxBytes: maxBytes, now: time.Now}
}

func (s *ImageService) MaxBytes() int64 { return s.maxBytes }

// Store checks the declared type, the sniffed content and the size, then
// saves the file under a fresh name. It returns the URL path to serve it.
func (s *ImageService) Store(ctx context.Context, up Upload) (string, error) {
	declared := strings.ToLower(strings.TrimSpace(strings.Split(up.ContentType, ";")[0]))
	canonicalExt, ok := allowedImageTypes[declared]
	if !ok {
		return "", ErrImageType
	}
	if up.Size > s.maxBytes {
		return "", ErrImageTooLarge
	}

	br := bufio.NewReaderSize(up.Body, 512)
	head, _ := br.Peek(512)
	if _, ok := allowedImageTypes[http.DetectContentType(head)]; !ok {
		return "", ErrImageType
	}

	ext := strings.ToLower(path.Ext(up.Filename))
	if _, ok := imageContentTypes[ext]; !ok {
		ext = canonicalExt
	}
	name := s.newName(ext)

	body := &limitedReader{r: br, left: s.maxBytes}
	if err := s.disk.PutStream(ctx, imageDir+"/"+name, body); err != nil {
		if body.exceeded {
			return "", ErrImageTooLarge
		}
		return "", storeErr(ctx, "store image", err)
	}
	if body.exceeded {
		_ = s.disk.Delete(ctx, imageDir+"/"+name)
		return "", ErrImageTooLarge
	}

	metrics.ImagesUploaded.Inc()
	logger.WithCtx(ctx).Info("image stored", "name", name)
	return ImageURLPrefix + name, nil
}

func (s *ImageService) newName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), suffix, ext)
}

// Open returns the stored image and the Content-Type to serve it with.
// Names containing path separators are rejected as not found.
func (s *ImageService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, "", ErrImageNotFound
	}

	rc, err := s.disk.GetStream(ctx, imageDir+"/"+name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", storeErr(ctx, "open image", err)
	}
	return rc, ContentTypeFor(name), nil
}

// ContentTypeFor returns an image type for known image extensions and
// application/octet-stream for anything else.
func ContentTypeFor(name string) string {
	if ct, ok := imageContentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// limitedReader reads at most left bytes and flags when more were offered.
type limitedReader struct {
	r        io.Reader
	left     int64
	exceeded bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.left <= 0 {
		var one [1]byte
		if n, _ := l.r.Read(one[:]); n > 0 {
			l.exceeded = true
			return 0, ErrImageTooLarge
		}
		return 0, io.EOF
	}
	if int64(len(p)) > l.left {
		p = p[:l.left]
	}
	n, err := l.r.Read(p)
	l.left -= int64(n)
	return n, err
}
