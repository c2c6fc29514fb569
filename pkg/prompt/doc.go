// Package prompt fills a form definition interactively. Fields are asked in
// dependency order and only while visible; the answers are validated with the
// same service the rest of the module uses.
package prompt
