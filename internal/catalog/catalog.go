package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var defaultManifest []byte

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
)

// Copy is the descriptive text shown on a product page.
type Copy struct {
	ShortDescription string   `yaml:"short_description" json:"shortDescription"`
	Description      string   `yaml:"description" json:"description"`
	Details          []string `yaml:"details" json:"details"`
}

type Product struct {
	Slug           string          `yaml:"slug" json:"slug"`
	Title          string          `yaml:"title" json:"title"`
	Image          string          `yaml:"image" json:"image"`
	Price          decimal.Decimal `yaml:"price" json:"price"`
	PriceReference string          `yaml:"price_reference" json:"stripePriceId,omitempty"`
	Copy           `yaml:",inline"`
}

// Purchasable reports whether the product can be added to a bag.
func (p Product) Purchasable() bool {
	return p.PriceReference != ""
}

type Category struct {
	Key       string    `yaml:"key" json:"key"`
	Title     string    `yaml:"title" json:"title"`
	Subtitle  string    `yaml:"subtitle" json:"subtitle"`
	Path      string    `yaml:"path" json:"path"`
	HeroImage string    `yaml:"hero_image" json:"heroImage"`
	Fallback  *Copy     `yaml:"fallback" json:"-"`
	Products  []Product `yaml:"products" json:"products"`
}

type manifest struct {
	Fallback   Copy       `yaml:"fallback"`
	Categories []Category `yaml:"categories"`
}

// Catalog is the read-only product catalog.
type Catalog struct {
	fallback   Copy
	categories []Category
	byKey      map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultManifest)
}

// Load reads a manifest from disk, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML manifest.
func Parse(data []byte) (*Catalog, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode catalog manifest: %w", err)
	}

	c := &Catalog{
		fallback:   m.Fallback,
		categories: m.Categories,
		byKey:      make(map[string]int, len(m.Categories)),
	}

	for i := range c.categories {
		cat := &c.categories[i]
		if cat.Key == "" {
			return nil, fmt.Errorf("category %d: missing key", i)
		}
		if _, dup := c.byKey[cat.Key]; dup {
			return nil, fmt.Errorf("category %q: duplicate key", cat.Key)
		}
		c.byKey[cat.Key] = i

		seen := make(map[string]struct{}, len(cat.Products))
		for j := range cat.Products {
			p := &cat.Products[j]
			if p.Slug == "" {
				return nil, fmt.Errorf("category %q product %d: missing slug", cat.Key, j)
			}
			if _, dup := seen[p.Slug]; dup {
				return nil, fmt.Errorf("category %q: duplicate slug %q", cat.Key, p.Slug)
			}
			seen[p.Slug] = struct{}{}
			if p.Price.IsNegative() {
				return nil, fmt.Errorf("category %q product %q: negative price", cat.Key, p.Slug)
			}
			if p.Title == "" {
				p.Title = TitleFromSlug(p.Slug)
			}
			p.Copy = c.fillCopy(cat, p.Copy)
		}
	}

	return c, nil
}

func (c *Catalog) fillCopy(cat *Category, cp Copy) Copy {
	fb := c.fallback
	if cat.Fallback != nil {
		if cat.Fallback.ShortDescription != "" {
			fb.ShortDescription = cat.Fallback.ShortDescription
		}
		if cat.Fallback.Description != "" {
			fb.Description = cat.Fallback.Description
		}
		if len(cat.Fallback.Details) > 0 {
			fb.Details = cat.Fallback.Details
		}
	}

	if cp.ShortDescription == "" {
		cp.ShortDescription = fb.ShortDescription
	}
	if cp.Description == "" {
		cp.Description = fb.Description
	}
	if len(cp.Details) == 0 {
		cp.Details = append([]string(nil), fb.Details...)
	}
	return cp
}

// Categories returns the categories in manifest order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) Category(key string) (Category, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return c.categories[i], nil
}

func (c *Catalog) Product(categoryKey, slug string) (Product, error) {
	cat, err := c.Category(categoryKey)
	if err != nil {
		return Product{}, err
	}
	for _, p := range cat.Products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// ProductByPriceReference finds the product sold under a payment price id.
func (c *Catalog) ProductByPriceReference(ref string) (Product, bool) {
	if ref == "" {
		return Product{}, false
	}
	for _, cat := range c.categories {
		for _, p := range cat.Products {
			if p.PriceReference == ref {
				return p, true
			}
		}
	}
	return Product{}, false
}

// TitleFromSlug turns "lucky-star_necklace" into "Lucky Star Necklace".
func TitleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
