package domain

// User owns a list of movies.
type User struct {
	ID   int64
	Name string
}
