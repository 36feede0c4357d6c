// Package graphql exposes a read-only view of the catalog.
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/app/services"
	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/auth"
	gql "github.com/bazarromero/catalog/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"nombre":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"precio":     &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"categoria":  &graphql.Field{Type: graphql.String},
		"disponible": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"img":        &graphql.Field{Type: graphql.String},
		"active":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

// NewSchema builds the products/product query root. products(all: true)
// only includes hidden products for authenticated callers.
func NewSchema(products *services.ProductService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType))),
				Args: graphql.FieldConfigArgument{
					"all": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					all, _ := p.Args["all"].(bool)
					if _, authed := auth.FromContext(p.Context); !authed {
						all = false
					}
					list, err := products.List(p.Context, all)
					if err != nil {
						return nil, errors.New("internal server error")
					}
					return toMaps(list), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					prod, err := products.Get(p.Context, int64(id))
					if errors.Is(err, apperror.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, errors.New("internal server error")
					}
					return toMap(prod), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

func toMaps(list []models.Product) []map[string]interface{} {
	out := make([]map[string]interface{}, len(list))
	for i, p := range list {
		out[i] = toMap(p)
	}
	return out
}

func toMap(p models.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":         p.ID,
		"nombre":     p.Nombre,
		"precio":     p.Precio,
		"categoria":  p.Categoria,
		"disponible": p.Disponible,
		"img":        p.Img,
		"active":     p.Active,
	}
}
