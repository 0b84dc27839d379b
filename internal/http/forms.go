package httpserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const maxFormBody = 64 << 10 // 64 KiB

var errFieldRequired = errors.New("is required")

// movieForm carries the raw and parsed fields of an add/update submission.
// Year and Rating are nil when the field was left empty.
type movieForm struct {
	Name     string
	Director string
	Year     *int
	Rating   *float64
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	return r.ParseForm()
}

// readMovieForm parses the submitted fields. With required set, every field
// must be present; otherwise only name is.
func readMovieForm(r *http.Request, required bool) (movieForm, error) {
	form := movieForm{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Director: strings.TrimSpace(r.PostForm.Get("director")),
	}
	if form.Name == "" {
		return movieForm{}, fieldError("name", errFieldRequired)
	}
	if required && form.Director == "" {
		return movieForm{}, fieldError("director", errFieldRequired)
	}

	year, err := optionalField(r, "year", required, parseYear)
	if err != nil {
		return movieForm{}, err
	}
	rating, err := optionalField(r, "rating", required, parseRating)
	if err != nil {
		return movieForm{}, err
	}
	form.Year = year
	form.Rating = rating
	return form, nil
}

func optionalField[T any](r *http.Request, name string, required bool, parse func(string) (T, error)) (*T, error) {
	raw := strings.TrimSpace(r.PostForm.Get(name))
	if raw == "" {
		if required {
			return nil, fieldError(name, errFieldRequired)
		}
		return nil, nil
	}
	value, err := parse(raw)
	if err != nil {
		return nil, fieldError(name, err)
	}
	return &value, nil
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if year < 0 || year > 9999 {
		return 0, errors.New("must be between 0 and 9999")
	}
	return year, nil
}

func parseRating(raw string) (float64, error) {
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0, errors.New("must be a number")
	}
	if rating < 0 || rating > 10 {
		return 0, errors.New("must be between 0 and 10")
	}
	return rating, nil
}

func fieldError(field string, err error) error {
	return fmt.Errorf("%s %w", field, err)
}
