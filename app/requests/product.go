// Package requests holds the decoded shapes of incoming payloads and the
// rules they are checked against before anything reaches a repository.
package requests

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/pkg/validate"
)

// ProductInput is a create, update or import payload. Nil fields were
// absent (or null) in the JSON.
type ProductInput struct {
	Nombre     *string  `json:"nombre"     validate:"required,max=200"`
	Precio     *float64 `json:"precio"     validate:"required,gte=0"`
	Categoria  *string  `json:"categoria"  validate:"nullable,max=100"`
	Disponible *bool    `json:"disponible"`
	Img        *string  `json:"img"        validate:"nullable,max=500,prefix=data:|http://|https://|/api/images/"`
	Active     *bool    `json:"active"`

	typeErrs validate.Errors
}

var productFields = []string{"nombre", "precio", "categoria", "disponible", "img", "active"}

// UnmarshalJSON decodes field by field so that a wrongly-typed value becomes
// a violation of that field instead of failing the whole payload.
func (in *ProductInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*in = ProductInput{}
	targets := map[string]any{
		"nombre":     &in.Nombre,
		"precio":     &in.Precio,
		"categoria":  &in.Categoria,
		"disponible": &in.Disponible,
		"img":        &in.Img,
		"active":     &in.Active,
	}
	for _, field := range productFields {
		value, ok := raw[field]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		if err := json.Unmarshal(value, targets[field]); err != nil {
			in.typeErrs = append(in.typeErrs, typeError(field))
		}
	}
	return nil
}

func typeError(field string) validate.FieldError {
	var msg string
	switch field {
	case "precio":
		msg = "The precio field must be a number."
	case "disponible", "active":
		msg = fmt.Sprintf("The %s field must be true or false.", field)
	default:
		msg = fmt.Sprintf("The %s field must be a string.", field)
	}
	return validate.FieldError{Field: field, Rule: "type", Message: msg}
}

// ValidateProduct checks a full record (create, import) and returns the
// violated rules in field order; empty means valid. Text fields are checked
// as they will be stored, after sanitizing.
func ValidateProduct(in ProductInput) []string {
	return merge(in.typeErrs, validate.Struct(in.sanitized()))
}

// ValidateProductPatch checks only the fields present in an update.
func ValidateProductPatch(in ProductInput) []string {
	return merge(in.typeErrs, validate.Partial(in.sanitized()))
}

func (in ProductInput) sanitized() ProductInput {
	if in.Nombre != nil {
		s := validate.SanitizeString(in.Nombre)
		in.Nombre = &s
	}
	if in.Categoria != nil {
		s := validate.SanitizeString(in.Categoria)
		in.Categoria = &s
	}
	return in
}

// merge orders violations by field; a field with a type error reports only that.
func merge(typeErrs, ruleErrs validate.Errors) []string {
	var out []string
	for _, field := range productFields {
		if typeErrs.Has(field) {
			for _, fe := range typeErrs {
				if fe.Field == field {
					out = append(out, fe.Message)
				}
			}
			continue
		}
		for _, fe := range ruleErrs {
			if fe.Field == field {
				out = append(out, fe.Message)
			}
		}
	}
	return out
}

// ToProduct builds the record to store. Text fields are sanitized, absent
// fields get their defaults and Active is true unless explicitly false.
func (in ProductInput) ToProduct() models.Product {
	p := models.Product{
		Nombre:    validate.SanitizeString(in.Nombre),
		Categoria: validate.SanitizeString(in.Categoria),
		Active:    true,
	}
	if in.Precio != nil {
		p.Precio = *in.Precio
	}
	if in.Disponible != nil {
		p.Disponible = *in.Disponible
	}
	if in.Img != nil {
		p.Img = *in.Img
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	return p
}

// ToPatch builds a partial update from the present fields.
func (in ProductInput) ToPatch() models.ProductPatch {
	patch := models.ProductPatch{
		Precio:     in.Precio,
		Disponible: in.Disponible,
		Img:        in.Img,
		Active:     in.Active,
	}
	if in.Nombre != nil {
		s := validate.SanitizeString(in.Nombre)
		patch.Nombre = &s
	}
	if in.Categoria != nil {
		s := validate.SanitizeString(in.Categoria)
		patch.Categoria = &s
	}
	return patch
}
