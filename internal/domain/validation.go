package domain

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Placeholders used when a catalog record is missing a displayable field
const (
	PlaceholderTitle       = "No Title"
	PlaceholderBrand       = "Unknown"
	PlaceholderCategory    = "Unknown"
	PlaceholderDescription = "No description available."
)

type Validation struct {
	validator *validator.Validate
}

func NewValidation() *Validation {
	return &Validation{validator: validator.New()}
}

// ValidationError wraps the validator's FieldError
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (v ValidationError) Error() string {
	return fmt.Sprintf("Field '%s': %s", v.Field, v.Message)
}

// ValidationErrors is a slice of ValidationError
type ValidationErrors []ValidationError

// Fields returns the names of the failing fields
func (ve ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ve))
	for _, v := range ve {
		fields = append(fields, v.Field)
	}
	return fields
}

// Has reports whether the named field failed validation
func (ve ValidationErrors) Has(field string) bool {
	for _, v := range ve {
		if v.Field == field {
			return true
		}
	}
	return false
}

func (v *Validation) Validate(i interface{}) ValidationErrors {
	var errors ValidationErrors

	err := v.validator.Struct(i)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return ValidationErrors{{Field: "", Message: err.Error()}}
		}
		for _, ve := range validationErrors {
			errors = append(errors, ValidationError{
				Field:   ve.Field(),
				Message: fmt.Sprintf("failed on the '%s' tag", ve.Tag()),
			})
		}
	}

	return errors
}

// NormalizeProduct replaces every field that fails validation with a
// displayable default. The returned errors describe what was replaced; an
// error on ID means the record cannot be addressed and should be dropped.
func (v *Validation) NormalizeProduct(p Product) (Product, ValidationErrors) {
	errs := v.Validate(&p)
	for _, e := range errs {
		switch e.Field {
		case "Title":
			p.Title = PlaceholderTitle
		case "Brand":
			p.Brand = PlaceholderBrand
		case "Category":
			p.Category = PlaceholderCategory
		case "Thumbnail":
			p.Thumbnail = ""
		case "Price":
			p.Price = 0
		case "Stock":
			p.Stock = 0
		case "DiscountPercentage":
			p.DiscountPercentage = clamp(p.DiscountPercentage, 0, 100)
		case "Rating":
			p.Rating = clamp(p.Rating, 0, 5)
		}
	}
	return p, errs
}

// NormalizeDetail normalizes the embedded product, the detail-only fields and
// every review.
func (v *Validation) NormalizeDetail(d ProductDetail) (ProductDetail, ValidationErrors) {
	var errs ValidationErrors
	d.Product, errs = v.NormalizeProduct(d.Product)

	// the embedded product is already clean, only detail fields can fail here
	for _, e := range v.Validate(&d) {
		switch e.Field {
		case "Description":
			d.Description = PlaceholderDescription
		case "Weight":
			d.Weight = 0
		default:
			continue
		}
		errs = append(errs, e)
	}

	if len(d.Reviews) > 0 {
		reviews := make([]Review, len(d.Reviews))
		for i, r := range d.Reviews {
			if rerrs := v.Validate(&r); rerrs.Has("Rating") {
				r.Rating = clamp(r.Rating, 0, 5)
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("Reviews[%d].Rating", i),
					Message: "failed on the 'lte' tag",
				})
			}
			reviews[i] = r
		}
		d.Reviews = reviews
	}

	return d, errs
}

func clamp(f, lo, hi float64) float64 {
	if math.IsNaN(f) || f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
