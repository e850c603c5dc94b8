package library

import (
	"database/sql"
	"fmt"
	"strings"
)

// Status is the circulation state of a book.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusBorrowed  Status = "Borrowed"
)

// Category classifies a book and decides whether GenreOrSubject reads as a
// genre or as a subject.
type Category string

const (
	CategoryFiction    Category = "fiction"
	CategoryNonFiction Category = "non-fiction"
	CategoryGeneral    Category = "general"
)

// ParseCategory maps user input onto a Category. Empty input is fiction.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(CategoryFiction):
		return CategoryFiction, nil
	case string(CategoryNonFiction), "nonfiction":
		return CategoryNonFiction, nil
	case string(CategoryGeneral):
		return CategoryGeneral, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
}

// NoBorrower is shown in place of a borrower name when a book is on the shelf.
const NoBorrower = "-"

// Book is a catalog row with the borrower's username already resolved.
type Book struct {
	ID             int64         `db:"id" json:"id"`
	Title          string        `db:"title" json:"title"`
	Author         string        `db:"author" json:"author"`
	Status         Status        `db:"status" json:"status"`
	BorrowerID     sql.NullInt64 `db:"borrower_id" json:"-"`
	Borrower       string        `db:"borrower" json:"borrower"`
	Category       Category      `db:"category" json:"category"`
	GenreOrSubject string        `db:"genre_or_subject" json:"genre_or_subject"`
}

// Available reports whether the book can be borrowed.
func (b *Book) Available() bool { return b.Status == StatusAvailable }

// Detail renders the category specific descriptive field.
func (b *Book) Detail() string {
	if b.GenreOrSubject == "" {
		return ""
	}
	if b.Category == CategoryFiction {
		return "Genre: " + b.GenreOrSubject
	}
	return "Subject: " + b.GenreOrSubject
}

// User is the public view of a registered user. The password hash never
// leaves the database layer.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}

// credentialRow is what login reads; it stays inside the package.
type credentialRow struct {
	User
	PasswordHash string `db:"password_hash"`
}
