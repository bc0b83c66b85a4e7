// Package catalog holds the read-only product snapshot the assistant works
// against. A Catalog never changes after construction and is safe to share
// between goroutines without locking.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/deepgram/shopfront/pkg/logger"
	"github.com/go-playground/validator/v10"
)

//go:embed products.json
var defaultProducts []byte

type Product struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Description   string   `json:"description"`
	Category      string   `json:"category" validate:"required"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount   int      `json:"reviewCount" validate:"gte=0"`
	Stock         int      `json:"stock" validate:"gte=0"`
}

// OnSale reports whether the product carries a higher original price.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// ProjectedProduct is the minimal product view sent to the assistant backend.
type ProjectedProduct struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type catalogFile struct {
	Products []Product `json:"products" validate:"unique=ID,dive"`
}

type Catalog struct {
	products []Product
	byID     map[string]int
}

var validate = validator.New()

// New validates products and returns an immutable catalog preserving their order.
func New(products []Product) (*Catalog, error) {
	if err := validate.Struct(catalogFile{Products: products}); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		products: make([]Product, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c, nil
}

// Parse decodes a {"products": [...]} document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(f.Products)
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Info(logger.CATALOG, "Loaded %d products from %s", c.Len(), path)
	return c, nil
}

// Default returns the built-in storefront catalog.
func Default() *Catalog {
	c, err := Parse(defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Products returns the products in catalog order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) ByID(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ByCategory filters case-insensitively, keeping catalog order.
func (c *Catalog) ByCategory(category string) []Product {
	out := []Product{}
	for _, p := range c.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct categories in order of first appearance.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

func (c *Catalog) Projection() []ProjectedProduct {
	out := make([]ProjectedProduct, len(c.products))
	for i, p := range c.products {
		out[i] = ProjectedProduct{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Description: p.Description,
		}
	}
	return out
}

// FindByName resolves a highlighted product reference. An exact
// case-insensitive name match wins over the first partial match.
func (c *Catalog) FindByName(name string) (Product, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Product{}, false
	}

	for _, p := range c.products {
		if strings.ToLower(p.Name) == needle {
			return p, true
		}
	}
	for _, p := range c.products {
		lower := strings.ToLower(p.Name)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return p, true
		}
	}
	return Product{}, false
}
