// Package sanitizer provides input normalization for guest and catalog data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Guest names: Collapse whitespace, trim leading/trailing spaces
//   - Emails: Trim and lowercase
//   - Labels: Lowercase, remove all special characters - "Deluxe King" becomes "deluxe_king"
//   - Slices: Remove duplicates and empty values after normalization
//   - Numbers: Clamp to valid ranges
package sanitizer
