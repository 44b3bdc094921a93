package dto

// SaveProfileRequest replaces the singleton profile. ImageURL is free-form:
// a remote URL, a local file reference, or empty for the default avatar.
type SaveProfileRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=60"`
	LastName  string `json:"lastName" binding:"required,min=1,max=60"`
	ImageURL  string `json:"imageUrl" binding:"max=500"`
}

type ProfileResponse struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}
