package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchApply(t *testing.T) {
	p := Product{ID: 3, Nombre: "Pan", Precio: 2, Categoria: "Panadería", Disponible: true, Img: "/api/images/a.png", Active: true}

	precio, off := 2.5, false
	patch := ProductPatch{Precio: &precio, Disponible: &off}
	assert.False(t, patch.Empty())

	patch.Apply(&p)
	assert.Equal(t, Product{ID: 3, Nombre: "Pan", Precio: 2.5, Categoria: "Panadería", Disponible: false, Img: "/api/images/a.png", Active: true}, p)
}

func TestEmptyPatchIsIdentity(t *testing.T) {
	p := Product{ID: 1, Nombre: "Té", Precio: 1, Active: true}
	before := p

	var patch ProductPatch
	assert.True(t, patch.Empty())
	patch.Apply(&p)
	assert.Equal(t, before, p)
}

func TestPublic(t *testing.T) {
	assert.True(t, Product{Active: true, Disponible: true}.Public())
	assert.False(t, Product{Active: true}.Public())
	assert.False(t, Product{Disponible: true}.Public())
}
