// Package openapi turns the request body of an OpenAPI operation into a form
// definition. Documents are parsed with kin-openapi; only the flat object
// properties of the request schema become fields.
package openapi
