package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bazarromero/catalog/app/requests"
	"github.com/bazarromero/catalog/app/services"
	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/auth"
	"github.com/bazarromero/catalog/pkg/bind"
	"github.com/bazarromero/catalog/pkg/response"
)

var errNotArray = fmt.Errorf("body must be a JSON array of products: %w", apperror.ErrBadRequest)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Index lists public products. Authenticated callers get inactive and
// unavailable products too with ?all=true.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	_, authed := auth.FromContext(r.Context())
	all := authed && r.URL.Query().Get("all") == "true"

	products, err := c.products.List(r.Context(), all)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, products)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w)
		return
	}

	p, err := c.products.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, p)
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var in requests.ProductInput
	if err := bind.JSON(w, r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}

	p, err := c.products.Create(r.Context(), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, p)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w)
		return
	}

	var in requests.ProductInput
	if err := bind.JSON(w, r, &in); err != nil {
		response.FromError(w, r, err)
		return
	}

	p, err := c.products.Update(r.Context(), id, in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, p)
}

// Destroy deactivates the product; it stays reachable by ID.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w)
		return
	}

	p, err := c.products.Deactivate(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.SuccessMessage(w, "Product deactivated", map[string]interface{}{"product": p})
}

func (c *ProductController) ForceDestroy(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		response.NotFound(w)
		return
	}

	p, err := c.products.Delete(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.SuccessMessage(w, "Product deleted", map[string]interface{}{"product": p})
}

// Import replaces the whole catalog with the valid items of a JSON array.
func (c *ProductController) Import(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := bind.JSON(w, r, &raw); err != nil {
		response.FromError(w, r, err)
		return
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		response.FromError(w, r, errNotArray)
		return
	}

	res, err := c.products.Import(r.Context(), items)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, res)
}

// productID parses the {id} route parameter. Anything but a positive
// integer names no product.
func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
