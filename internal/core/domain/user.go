package domain

// User is an operator allowed to manage the catalog. Users are provisioned out of band.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
