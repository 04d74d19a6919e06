package model

import "time"

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:128;not null" json:"name"`
	Slug string `gorm:"size:128;uniqueIndex;not null" json:"slug"`
}

type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CategoryID   uint      `gorm:"index;not null" json:"categoryId"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Brand        *string   `gorm:"size:128" json:"brand"`
	Description  *string   `gorm:"type:text" json:"description"`
	ImageURL     *string   `gorm:"size:512" json:"imageUrl"`
	Price        int64     `gorm:"not null" json:"price"`
	Stock        int64     `gorm:"not null;default:0" json:"stock"`
	Sold         int64     `gorm:"not null;default:0" json:"sold"`
	FreeShipping bool      `gorm:"not null" json:"freeShipping"`
	Active       bool      `gorm:"not null;index" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Category   *Category          `json:"category,omitempty"`
	Attributes []ProductAttribute `json:"attributes,omitempty"`
	Variants   []Variant          `json:"variants,omitempty"`
}

type ProductAttribute struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProductID uint             `gorm:"index;not null" json:"productId"`
	Name      string           `gorm:"size:64;not null" json:"name"`
	Position  int              `gorm:"not null;default:0" json:"position"`
	Values    []AttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

type AttributeValue struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AttributeID uint   `gorm:"index;not null" json:"attributeId"`
	Value       string `gorm:"size:64;not null" json:"value"`
	Position    int    `gorm:"not null;default:0" json:"position"`
}

// Variant is one attribute-value combination of a product. A nil Price
// falls back to the product price.
type Variant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"index;not null" json:"productId"`
	SKU       string         `gorm:"size:128;uniqueIndex;not null" json:"sku"`
	Price     *int64         `json:"price"`
	Stock     int64          `gorm:"not null;default:0" json:"stock"`
	Values    []VariantValue `gorm:"foreignKey:VariantID" json:"values,omitempty"`
}

type VariantValue struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	VariantID uint `gorm:"index;not null" json:"variantId"`
	ValueID   uint `gorm:"index;not null" json:"valueId"`
}

// EffectivePrice is the unit price charged for a product, optionally
// narrowed to one of its variants.
func EffectivePrice(p *Product, v *Variant) int64 {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	if p == nil {
		return 0
	}
	return p.Price
}
