package requests

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) ProductInput {
	t.Helper()
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestValidProduct(t *testing.T) {
	assert.Empty(t, ValidateProduct(decode(t, `{"nombre":"Té","precio":0}`)))
}

func TestBlankNameAndNegativePrice(t *testing.T) {
	errs := ValidateProduct(decode(t, `{"nombre":"","precio":-1}`))
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "nombre")
	assert.Contains(t, errs[1], "precio")
}

func TestWhitespaceNameIsBlank(t *testing.T) {
	errs := ValidateProduct(decode(t, `{"nombre":"   ","precio":1}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "nombre")
}

func TestNameEmptyAfterSanitizingIsBlank(t *testing.T) {
	errs := ValidateProduct(decode(t, `{"nombre":"<>","precio":1}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "nombre")

	errs = ValidateProductPatch(decode(t, `{"nombre":" <<>> "}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "nombre")

	assert.Empty(t, ValidateProductPatch(decode(t, `{"categoria":"<>"}`)))
}

func TestImageScheme(t *testing.T) {
	errs := ValidateProduct(decode(t, `{"nombre":"X","precio":1,"img":"ftp://x"}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "img")

	for _, img := range []string{"data:image/png;base64,AA", "http://x/y.png", "https://x/y.png", "/api/images/1-a.png", ""} {
		body, _ := json.Marshal(map[string]any{"nombre": "X", "precio": 1, "img": img})
		assert.Empty(t, ValidateProduct(decode(t, string(body))), img)
	}
}

func TestLengthLimits(t *testing.T) {
	body, _ := json.Marshal(map[string]any{
		"nombre":    strings.Repeat("n", 201),
		"precio":    1,
		"categoria": strings.Repeat("c", 101),
		"img":       "https://" + strings.Repeat("i", 500),
	})
	errs := ValidateProduct(decode(t, string(body)))
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "nombre")
	assert.Contains(t, errs[1], "categoria")
	assert.Contains(t, errs[2], "img")
}

func TestWrongTypesAreViolations(t *testing.T) {
	errs := ValidateProduct(decode(t, `{"nombre":5,"precio":"abc","disponible":"yes"}`))
	assert.Equal(t, []string{
		"The nombre field must be a string.",
		"The precio field must be a number.",
		"The disponible field must be true or false.",
	}, errs)
}

func TestMissingPriceIsReported(t *testing.T) {
	errs := ValidateProduct(decode(t, `{"nombre":"Pan"}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "precio")
}

func TestNullIsAbsent(t *testing.T) {
	in := decode(t, `{"nombre":"Pan","precio":1,"img":null}`)
	assert.Nil(t, in.Img)
	assert.Empty(t, ValidateProduct(in))
}

func TestToProductDefaults(t *testing.T) {
	p := decode(t, `{"nombre":"  <b>Hola</b>  ","precio":3.5,"categoria":" <i>x</i> "}`).ToProduct()

	assert.Equal(t, "bHola/b", p.Nombre)
	assert.Equal(t, "ix/i", p.Categoria)
	assert.Equal(t, 3.5, p.Precio)
	assert.False(t, p.Disponible)
	assert.Equal(t, "", p.Img)
	assert.True(t, p.Active)
	assert.Zero(t, p.ID)
}

func TestToProductExplicitInactive(t *testing.T) {
	p := decode(t, `{"nombre":"Pan","precio":1,"active":false,"disponible":true}`).ToProduct()
	assert.False(t, p.Active)
	assert.True(t, p.Disponible)
}

func TestPatchValidatesOnlyPresentFields(t *testing.T) {
	assert.Empty(t, ValidateProductPatch(decode(t, `{}`)))
	assert.Empty(t, ValidateProductPatch(decode(t, `{"precio":2}`)))

	errs := ValidateProductPatch(decode(t, `{"nombre":""}`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "nombre")
}

func TestToPatchSanitizes(t *testing.T) {
	patch := decode(t, `{"nombre":" <Pan> ","disponible":false}`).ToPatch()
	require.NotNil(t, patch.Nombre)
	assert.Equal(t, "Pan", *patch.Nombre)
	require.NotNil(t, patch.Disponible)
	assert.False(t, *patch.Disponible)
	assert.Nil(t, patch.Precio)
	assert.Nil(t, patch.Categoria)
}

func TestTopLevelNonObjectFails(t *testing.T) {
	var in ProductInput
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &in))
}
