package domain

// Profile is the singleton user profile, at most one per installation.
// ImageURL may be a remote URL, a local file reference, or empty
// (the client falls back to a default avatar).
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}
