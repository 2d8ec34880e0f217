// Package dto provides request/response shapes for the HTTP API.
// Monetary and quantity request fields are strings coerced leniently: form
// input arrives currency-formatted or blank and must not fail the request.
package dto

// IDResponse is returned after creating an entity.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is returned for operations without a payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
