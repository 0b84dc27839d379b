package domain

// Default values substituted when neither the form nor the metadata lookup
// supplies a field.
const (
	UnknownDirector = "Unknown"
	UnknownYear     = "Unknown"
	UnknownRating   = "0"
)

// Movie represents a single film on a user's list.
type Movie struct {
	ID         int64
	UserID     int64
	Name       string
	Director   string
	Year       int
	Rating     float64
	CoverImage *string
}

// HasCover reports whether a cover image URL is stored for the movie.
func (m Movie) HasCover() bool {
	return m.CoverImage != nil && *m.CoverImage != ""
}

// CoverURL returns the cover image URL or an empty string.
func (m Movie) CoverURL() string {
	if m.CoverImage == nil {
		return ""
	}
	return *m.CoverImage
}
