package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bazarromero/catalog/app/services"
	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/response"
)

// multipart framing allowed on top of the image itself
const formOverhead = 1 << 20

var errBadForm = fmt.Errorf("invalid multipart form: %w", apperror.ErrBadRequest)

type ImageController struct {
	images *services.ImageService
}

func NewImageController(images *services.ImageService) *ImageController {
	return &ImageController{images: images}
}

// Upload stores the multipart field "image" and returns its URL path.
func (c *ImageController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.images.MaxBytes()+formOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			err = services.ErrImageTooLarge
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			err = services.ErrImageMissing
		default:
			err = errBadForm
		}
		response.FromError(w, r, err)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	url, err := c.images.Store(r.Context(), services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, map[string]string{"url": url})
}

func (c *ImageController) Show(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := c.images.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	defer rc.Close()

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "public, max-age=86400")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.WithCtx(r.Context()).Warn("image write aborted", "error", err)
	}
}
