// Package models defines the client-side shapes of resource data: records
// as observed from the backend, keys that address them, and drafts that
// collect raw form input before it is coerced into a request body.
package models
