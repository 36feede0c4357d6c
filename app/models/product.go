package models

// Product is one catalog entry. Active=false hides it from every public
// listing (soft delete); Disponible=false marks it out of stock.
type Product struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre     string  `gorm:"size:200;not null"        json:"nombre"`
	Precio     float64 `gorm:"not null"                 json:"precio"`
	Categoria  string  `gorm:"size:100"                 json:"categoria"`
	Disponible bool    `gorm:"not null"                 json:"disponible"`
	Img        string  `gorm:"size:500"                 json:"img"`
	Active     bool    `gorm:"not null;index"           json:"active"`
}

func (Product) TableName() string { return "products" }

// Public reports whether the product appears in the public listing.
func (p Product) Public() bool { return p.Active && p.Disponible }

// ProductPatch carries a partial update: nil fields are left unchanged.
type ProductPatch struct {
	Nombre     *string
	Precio     *float64
	Categoria  *string
	Disponible *bool
	Img        *string
	Active     *bool
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Nombre == nil && p.Precio == nil && p.Categoria == nil &&
		p.Disponible == nil && p.Img == nil && p.Active == nil
}

// Apply overlays the present fields onto p. The ID is never touched.
func (p ProductPatch) Apply(dst *Product) {
	if p.Nombre != nil {
		dst.Nombre = *p.Nombre
	}
	if p.Precio != nil {
		dst.Precio = *p.Precio
	}
	if p.Categoria != nil {
		dst.Categoria = *p.Categoria
	}
	if p.Disponible != nil {
		dst.Disponible = *p.Disponible
	}
	if p.Img != nil {
		dst.Img = *p.Img
	}
	if p.Active != nil {
		dst.Active = *p.Active
	}
}
