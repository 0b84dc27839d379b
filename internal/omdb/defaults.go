package omdb

import (
	"strconv"
	"strings"

	"github.com/Clark-Hu/movieweb/internal/domain"
)

// Resolved holds metadata with defaults applied and numeric fields parsed.
type Resolved struct {
	Director   string
	Year       int
	Rating     float64
	CoverImage *string
}

// Resolve applies the fallback values for fields OMDb did not return.
// Year and rating are parsed permissively: anything non-numeric becomes zero.
func Resolve(meta *Metadata) Resolved {
	if meta == nil {
		meta = &Metadata{}
	}
	director := meta.Director
	if director == "" {
		director = domain.UnknownDirector
	}
	year := meta.Year
	if year == "" {
		year = domain.UnknownYear
	}
	rating := meta.Rating
	if rating == "" {
		rating = domain.UnknownRating
	}

	resolved := Resolved{
		Director: director,
		Year:     LenientYear(year),
		Rating:   LenientRating(rating),
	}
	if meta.Poster != "" {
		poster := meta.Poster
		resolved.CoverImage = &poster
	}
	return resolved
}

// LenientYear converts an OMDb year to an integer. Ranges such as
// "2010–2012" use their first four digits; other non-numeric input is 0.
func LenientYear(value string) int {
	value = strings.TrimSpace(value)
	if len(value) > 4 && isDigits(value[:4]) {
		value = value[:4]
	}
	if !isDigits(value) {
		return 0
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return year
}

// LenientRating converts an OMDb rating to a float; non-numeric input is 0.
func LenientRating(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || strings.Count(value, ".") > 1 || !isDigits(strings.Replace(value, ".", "", 1)) {
		return 0
	}
	rating, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return rating
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
