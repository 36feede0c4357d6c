// Package graphql serves graphql-go schemas over HTTP.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/bazarromero/catalog/pkg/bind"
	"github.com/bazarromero/catalog/pkg/response"
)

// NewSchema creates a new GraphQL schema from a provided RootQuery
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is the body of a POST to the GraphQL endpoint.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler executes POSTed queries against schema with the request context,
// so resolvers see whatever the middleware stored there. The result is
// written as a plain GraphQL response, not the REST envelope.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := bind.JSON(w, r, &req); err != nil {
			response.FromError(w, r, err)
			return
		}
		if req.Query == "" {
			response.Error(w, http.StatusBadRequest, "query is required")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
