package checkout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Selection is what the product configurator submits when the customer
// starts checkout.
type Selection struct {
	ProductID         string `json:"productId" binding:"required"`
	SelectedStorage   string `json:"selectedStorage"`
	SelectedColor     string `json:"selectedColor"`
	SelectedCondition string `json:"selectedCondition"`
	SelectedLeaseTerm int    `json:"selectedLeaseTerm"`
}

// Config is the read-only product snapshot carried through checkout.
type Config struct {
	ProductID         string  `json:"productId"`
	ProductName       string  `json:"productName"`
	ProductImageURL   string  `json:"productImageUrl,omitempty"`
	Price             float64 `json:"price"`
	SelectedStorage   string  `json:"selectedStorage,omitempty"`
	SelectedColor     string  `json:"selectedColor,omitempty"`
	SelectedCondition string  `json:"selectedCondition,omitempty"`
	SelectedLeaseTerm int     `json:"selectedLeaseTerm,omitempty"`
}

// Configure builds the checkout Config for sel against the catalogue entry p.
// Option groups the product does not offer must be left empty.
func Configure(p models.Product, sel Selection) (Config, error) {
	if !p.IsActive || p.IsDeleted {
		return Config{}, apperr.BadRequest("product is not available")
	}
	if p.Stock <= 0 {
		return Config{}, apperr.BadRequest("product is out of stock")
	}

	price := decimal.NewFromFloat(p.MonthlyPrice)

	storage, delta, err := pickOption("storage", p.StorageOptions, sel.SelectedStorage)
	if err != nil {
		return Config{}, err
	}
	price = price.Add(delta)

	condition, delta, err := pickOption("condition", p.Conditions, sel.SelectedCondition)
	if err != nil {
		return Config{}, err
	}
	price = price.Add(delta)

	color := strings.TrimSpace(sel.SelectedColor)
	switch {
	case len(p.Colors) == 0 && color != "":
		return Config{}, apperr.BadRequest("product has no color options")
	case len(p.Colors) > 0 && !p.Colors.Contains(color):
		return Config{}, apperr.BadRequest(fmt.Sprintf("unknown color %q", color))
	}

	term := sel.SelectedLeaseTerm
	if len(p.LeaseTerms) > 0 || term != 0 {
		found := false
		for _, lt := range p.LeaseTerms {
			if lt.Months == term {
				price = price.Add(decimal.NewFromFloat(lt.PriceDelta))
				found = true
				break
			}
		}
		if !found {
			return Config{}, apperr.BadRequest(fmt.Sprintf("unsupported lease term %d", term))
		}
	}

	if !price.IsPositive() {
		return Config{}, apperr.BadRequest("configured price must be positive")
	}

	return Config{
		ProductID:         p.ID.Hex(),
		ProductName:       p.Name,
		ProductImageURL:   p.ImageURL,
		Price:             price.InexactFloat64(),
		SelectedStorage:   storage,
		SelectedColor:     color,
		SelectedCondition: condition,
		SelectedLeaseTerm: term,
	}, nil
}

func pickOption(group string, options []models.PricedOption, label string) (string, decimal.Decimal, error) {
	label = strings.TrimSpace(label)
	if len(options) == 0 {
		if label != "" {
			return "", decimal.Zero, apperr.BadRequest(fmt.Sprintf("product has no %s options", group))
		}
		return "", decimal.Zero, nil
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Label, label) {
			return opt.Label, decimal.NewFromFloat(opt.PriceDelta), nil
		}
	}
	return "", decimal.Zero, apperr.BadRequest(fmt.Sprintf("unknown %s %q", group, label))
}
