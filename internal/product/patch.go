package product

// Patch holds a partial set of product fields. Nil fields are "unspecified"
// and leave the target value alone when applied.
type Patch struct {
	Title               *string   `json:"title,omitempty"`
	Description         *string   `json:"description,omitempty"`
	Price               *float64  `json:"price,omitempty"`
	DiscountPercentage  *float64  `json:"discountPercentage,omitempty"`
	Rating              *float64  `json:"rating,omitempty"`
	Stock               *int      `json:"stock,omitempty"`
	Category            *string   `json:"category,omitempty"`
	Brand               *string   `json:"brand,omitempty"`
	Thumbnail           *string   `json:"thumbnail,omitempty"`
	Images              *[]string `json:"images,omitempty"`
	Tags                *[]string `json:"tags,omitempty"`
	SKU                 *string   `json:"sku,omitempty"`
	WarrantyInformation *string   `json:"warrantyInformation,omitempty"`
	ShippingInformation *string   `json:"shippingInformation,omitempty"`
	ReturnPolicy        *string   `json:"returnPolicy,omitempty"`
}

// Apply returns p with every specified field of the patch written over it.
func (pt Patch) Apply(p Product) Product {
	out := p.Clone()
	setString(&out.Title, pt.Title)
	setString(&out.Description, pt.Description)
	if pt.Price != nil {
		out.Price = *pt.Price
	}
	if pt.DiscountPercentage != nil {
		out.DiscountPercentage = *pt.DiscountPercentage
	}
	if pt.Rating != nil {
		out.Rating = *pt.Rating
	}
	if pt.Stock != nil {
		out.Stock = *pt.Stock
	}
	setString(&out.Category, pt.Category)
	setString(&out.Brand, pt.Brand)
	setString(&out.Thumbnail, pt.Thumbnail)
	if pt.Images != nil {
		out.Images = append([]string(nil), (*pt.Images)...)
	}
	if pt.Tags != nil {
		out.Tags = append([]string(nil), (*pt.Tags)...)
	}
	setString(&out.SKU, pt.SKU)
	setString(&out.WarrantyInformation, pt.WarrantyInformation)
	setString(&out.ShippingInformation, pt.ShippingInformation)
	setString(&out.ReturnPolicy, pt.ReturnPolicy)
	return out
}

// Merge layers next over pt; fields set in next win.
func (pt Patch) Merge(next Patch) Patch {
	out := pt
	pick(&out.Title, next.Title)
	pick(&out.Description, next.Description)
	pick(&out.Price, next.Price)
	pick(&out.DiscountPercentage, next.DiscountPercentage)
	pick(&out.Rating, next.Rating)
	pick(&out.Stock, next.Stock)
	pick(&out.Category, next.Category)
	pick(&out.Brand, next.Brand)
	pick(&out.Thumbnail, next.Thumbnail)
	pick(&out.Images, next.Images)
	pick(&out.Tags, next.Tags)
	pick(&out.SKU, next.SKU)
	pick(&out.WarrantyInformation, next.WarrantyInformation)
	pick(&out.ShippingInformation, next.ShippingInformation)
	pick(&out.ReturnPolicy, next.ReturnPolicy)
	return out
}

// IsEmpty reports whether the patch specifies no fields at all.
func (pt Patch) IsEmpty() bool {
	return pt == Patch{}
}

// String, Float and Int build pointer fields for patches.
func String(v string) *string { return &v }
func Float(v float64) *float64 { return &v }
func Int(v int) *int { return &v }

// Strings copies v into a pointer field for patches.
func Strings(v []string) *[]string {
	dup := append([]string(nil), v...)
	return &dup
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
