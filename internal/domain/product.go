package domain

const (
	AvailabilityInStock    = "In Stock"
	AvailabilityOutOfStock = "Out of Stock"
)

// Product represents a catalog entry as shown in the list pane
//
// swagger:model
type Product struct {
	// The ID of the product
	//
	// required: true
	// example: 1
	ID int `json:"id" validate:"required,gt=0"`

	// The title of the product
	//
	// required: true
	// example: Essence Mascara Lash Princess
	Title string `json:"title" validate:"required"`

	// The price of the product before discount
	//
	// min: 0
	// example: 9.99
	Price float64 `json:"price" validate:"gte=0"`

	// The discount applied to the price, in percent
	//
	// min: 0
	// max: 100
	DiscountPercentage float64 `json:"discountPercentage" validate:"gte=0,lte=100"`

	// The average rating of the product
	//
	// min: 0
	// max: 5
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`

	// Units in stock
	//
	// min: 0
	Stock int `json:"stock" validate:"gte=0"`

	Brand     string `json:"brand" validate:"required"`
	Category  string `json:"category" validate:"required"`
	Thumbnail string `json:"thumbnail" validate:"omitempty,url"`

	// Always derived locally, see Enricher
	MinimumOrderQuantity int `json:"minimumOrderQuantity"`

	// Always derived locally from Stock, see Enricher
	//
	// enum: In Stock,Out of Stock
	AvailabilityStatus string `json:"availabilityStatus"`
}

// Products is a collection of Product
type Products []Product

// Dimensions of a product package
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Review left by a customer. Reviews have no identifier; their order is the
// display order.
type Review struct {
	ReviewerName string  `json:"reviewerName"`
	Date         string  `json:"date"`
	Rating       float64 `json:"rating" validate:"gte=0,lte=5"`
	Comment      string  `json:"comment"`
}

// ProductDetail is the full record shown in the detail pane
//
// swagger:model
type ProductDetail struct {
	Product

	Description         string     `json:"description" validate:"required"`
	Images              []string   `json:"images"`
	ShippingInformation string     `json:"shippingInformation"`
	ReturnPolicy        string     `json:"returnPolicy"`
	WarrantyInformation string     `json:"warrantyInformation"`
	SKU                 string     `json:"sku"`
	Weight              float64    `json:"weight" validate:"gte=0"`
	Dimensions          Dimensions `json:"dimensions"`
	Reviews             []Review   `json:"reviews,omitempty"`
}

// InStock reports whether the product is available
func (p Product) InStock() bool {
	return p.AvailabilityStatus == AvailabilityInStock
}
