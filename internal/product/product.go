package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LocalIDPrefix marks ids generated on this machine for user-created products.
const LocalIDPrefix = "my-"

// ID identifies a product. Remote ids are numeric; local ids carry LocalIDPrefix.
type ID string

// RemoteID converts a catalog number into an ID.
func RemoteID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// IsLocal reports whether the id was generated locally.
func (id ID) IsLocal() bool {
	return strings.HasPrefix(string(id), LocalIDPrefix)
}

// Number returns the numeric form of a remote id.
func (id ID) Number() (int64, bool) {
	if id.IsLocal() {
		return 0, false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (id ID) String() string {
	return string(id)
}

// MarshalJSON writes remote ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Number(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Product is a catalog entry, either from the remote catalog or created locally.
type Product struct {
	ID                  ID        `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Price               float64   `json:"price"`
	DiscountPercentage  float64   `json:"discountPercentage"`
	Rating              float64   `json:"rating"`
	Stock               int       `json:"stock"`
	Category            string    `json:"category"`
	Brand               string    `json:"brand,omitempty"`
	Thumbnail           string    `json:"thumbnail,omitempty"`
	Images              []string  `json:"images,omitempty"`
	Tags                []string  `json:"tags,omitempty"`
	SKU                 string    `json:"sku,omitempty"`
	WarrantyInformation string    `json:"warrantyInformation,omitempty"`
	ShippingInformation string    `json:"shippingInformation,omitempty"`
	ReturnPolicy        string    `json:"returnPolicy,omitempty"`
	OwnerID             int64     `json:"ownerId,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitzero"`
}

// Stock levels reported by StockStatus.
const (
	InStock    = "in_stock"
	LowStock   = "low_stock"
	OutOfStock = "out_of_stock"
)

const lowStockThreshold = 10

// StockStatus buckets the stock count the way the storefront labels it.
func (p Product) StockStatus() string {
	switch {
	case p.Stock > lowStockThreshold:
		return InStock
	case p.Stock > 0:
		return LowStock
	default:
		return OutOfStock
	}
}

// OriginalPrice reverses the discount to recover the pre-discount price.
// Products without a discount return Price unchanged.
func (p Product) OriginalPrice() float64 {
	if p.DiscountPercentage <= 0 || p.DiscountPercentage >= 100 {
		return p.Price
	}
	return p.Price / (1 - p.DiscountPercentage/100)
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	dup := p
	if p.Images != nil {
		dup.Images = append([]string(nil), p.Images...)
	}
	if p.Tags != nil {
		dup.Tags = append([]string(nil), p.Tags...)
	}
	return dup
}
