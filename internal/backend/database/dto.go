package database

// Entry is a single titled record of a collection. Title keeps whatever the
// client sent: form values are strings, JSON bodies may carry any JSON value.
type Entry struct {
	Title any    `json:"title"`
	Image string `json:"image"` // public URL path of the upload, empty if none
}
