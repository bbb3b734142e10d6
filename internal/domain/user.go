package domain

// User is the stable identity resolved from a session. Collections hang
// off the user id; everything else about the account lives with the
// identity provider.
type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
}
