// Package routes maps the catalog API onto the router.
package routes

import (
	gographql "github.com/graphql-go/graphql"

	"github.com/bazarromero/catalog/app/controllers"
	"github.com/bazarromero/catalog/app/services"
	"github.com/bazarromero/catalog/pkg/graphql"
	"github.com/bazarromero/catalog/pkg/middleware"
	"github.com/bazarromero/catalog/pkg/ratelimit"
	"github.com/bazarromero/catalog/pkg/router"
)

// Dependencies are the services the API routes dispatch to.
type Dependencies struct {
	Products *services.ProductService
	Auth     *services.AuthService
	Images   *services.ImageService
	Limiter  ratelimit.Limiter
	GraphQL  gographql.Schema
}

func RegisterAPI(r *router.Router, d Dependencies) {
	products := controllers.NewProductController(d.Products)
	authController := controllers.NewAuthController(d.Auth)
	images := controllers.NewImageController(d.Images)

	optional := middleware.OptionalAuth(d.Auth)

	api := r.Group("/api")
	api.Get("/products", "products.index", products.Index, optional)
	api.Get("/products/{id}", "products.show", products.Show)
	api.Get("/images/{name}", "images.show", images.Show)
	api.Post("/graphql", "graphql", graphql.Handler(d.GraphQL), optional)
	api.Post("/auth/login", "auth.login", authController.Login, middleware.RateLimit(d.Limiter))

	admin := api.Group("/", middleware.RequireAuth(d.Auth))
	admin.Post("/products", "products.store", products.Store)
	admin.Put("/products/{id}", "products.update", products.Update)
	admin.Delete("/products/{id}", "products.destroy", products.Destroy)
	admin.Delete("/products/{id}/hard", "products.force_destroy", products.ForceDestroy)
	admin.Post("/import", "products.import", products.Import)
	admin.Post("/upload-image", "images.upload", images.Upload)
	admin.Post("/auth/change-password", "auth.change_password", authController.ChangePassword)
}
