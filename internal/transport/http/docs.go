// Package classification of Catalog Browser API
//
// # Documentation for the JSON side of the Catalog Browser
//
// Schemes: http
// BasePath: /
// Version: 1.0.0
//
// Consumes:
// - application/json
//
// Produces:
// - application/json
//
// swagger:meta
package http

import "github.com/kahvecikaan/catalog-browser/internal/browser"

// NOTE: Types defined here are purely for documentation purposes
// except ErrorResponse, which GetState writes on failure

// Generic error message returned as a string
// swagger:response errorResponse
type errorResponseWrapper struct {
	// Description of the error
	// in: body
	Body ErrorResponse
}

// The state of the caller's browser session
// swagger:response stateResponse
type stateResponseWrapper struct {
	// in: body
	Body browser.State
}

// No content response
// swagger:response noContentResponse
type noContentResponseWrapper struct{}

// ErrorResponse defines the structure for API error responses
//
// swagger:model
type ErrorResponse struct {
	// The error message
	//
	// required: true
	Message string `json:"message"`
}
