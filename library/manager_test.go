package library

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newManager(t *testing.T, mutate ...func(*Options)) *LibraryManager {
	t.Helper()
	opts := Options{
		DBPath:     filepath.Join(t.TempDir(), "lib.db"),
		Pepper:     "test-pepper",
		BcryptCost: bcrypt.MinCost,
		AdminUser:  "admin",
		AdminPass:  "hunter2",
		Now:        func() time.Time { return fixedNow },
	}
	for _, m := range mutate {
		m(&opts)
	}
	mgr, err := NewLibraryManager(opts)
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func signUp(t *testing.T, mgr *LibraryManager, username string) *User {
	t.Helper()
	u, err := mgr.SignUp(username, "Password1", username+"@example.com")
	require.NoError(t, err)
	return u
}

func TestSignUpThenLogin(t *testing.T) {
	mgr := newManager(t)

	created, err := mgr.SignUp("  alice ", "Password1", " alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)

	u, err := mgr.Login("alice", "Password1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestSignUpValidation(t *testing.T) {
	mgr := newManager(t)

	tests := []struct {
		name, username, password, email string
	}{
		{"empty username", "", "Password1", "a@example.com"},
		{"blank username", "   ", "Password1", "a@example.com"},
		{"empty password", "alice", "", "a@example.com"},
		{"empty email", "alice", "Password1", ""},
		{"bad email", "alice", "Password1", "alice-at-example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgr.SignUp(tt.username, tt.password, tt.email)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	users, err := mgr.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users, "validation failures never reach storage")
}

func TestSignUpAcceptsWeakPassword(t *testing.T) {
	mgr := newManager(t)
	require.False(t, ValidatePassword("weak"))

	_, err := mgr.SignUp("bob", "weak", "bob@example.com")
	require.NoError(t, err)
	_, err = mgr.Login("bob", "weak")
	assert.NoError(t, err)
}

func TestSignUpDuplicateKeepsExistingUser(t *testing.T) {
	mgr := newManager(t)
	signUp(t, mgr, "alice")

	_, err := mgr.SignUp("alice", "Different9", "new@example.com")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	u, err := mgr.Login("alice", "Password1")
	require.NoError(t, err, "original password still works")
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = mgr.Login("alice", "Different9")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	mgr := newManager(t)
	signUp(t, mgr, "alice")

	_, err := mgr.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = mgr.Login("nobody", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = mgr.Login("Alice", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "usernames are case-sensitive")
}

func TestLoginNeedsSamePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	mgr := newManager(t, func(o *Options) { o.DBPath = path })
	signUp(t, mgr, "alice")
	require.NoError(t, mgr.Close())

	other := newManager(t, func(o *Options) { o.DBPath = path; o.Pepper = "rotated" })
	_, err := other.Login("alice", "Password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	mgr := newManager(t)
	assert.True(t, mgr.AdminLogin("admin", "hunter2"))
	assert.False(t, mgr.AdminLogin("admin", "wrong"))
	assert.False(t, mgr.AdminLogin("root", "hunter2"))

	disabled := newManager(t, func(o *Options) { o.AdminUser = ""; o.AdminPass = "" })
	assert.False(t, disabled.AdminLogin("", ""))
	assert.False(t, disabled.AdminLogin("admin", "hunter2"))

	noPass := newManager(t, func(o *Options) { o.AdminPass = "" })
	assert.False(t, noPass.AdminLogin("admin", ""))
}

func TestAddBookDefaultsAndValidation(t *testing.T) {
	mgr := newManager(t)

	id, err := mgr.AddBook("Dune", "Herbert", "", "sci-fi")
	require.NoError(t, err)
	b, err := mgr.GetBook(id)
	require.NoError(t, err)
	assert.Equal(t, CategoryFiction, b.Category)
	assert.Equal(t, StatusAvailable, b.Status)
	assert.Equal(t, NoBorrower, b.Borrower)
	assert.False(t, b.BorrowerID.Valid)
	assert.Equal(t, "Genre: sci-fi", b.Detail())

	id, err = mgr.AddBook("Cosmos", "Sagan", "Non-Fiction", "astronomy")
	require.NoError(t, err)
	b, err = mgr.GetBook(id)
	require.NoError(t, err)
	assert.Equal(t, CategoryNonFiction, b.Category)
	assert.Equal(t, "Subject: astronomy", b.Detail())

	_, err = mgr.AddBook("", "Herbert", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = mgr.AddBook("Dune", " ", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = mgr.AddBook("Dune", "Herbert", "poetry", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListBooksOrderedByID(t *testing.T) {
	mgr := newManager(t)
	for _, title := range []string{"C", "A", "B"} {
		_, err := mgr.AddBook(title, "Author", "", "")
		require.NoError(t, err)
	}
	books, err := mgr.ListBooks()
	require.NoError(t, err)
	require.Len(t, books, 3)
	for i := 1; i < len(books); i++ {
		assert.Less(t, books[i-1].ID, books[i].ID)
	}
	assert.Equal(t, "C", books[0].Title)
}

func TestBorrowReturnRoundTrip(t *testing.T) {
	mgr := newManager(t)
	u := signUp(t, mgr, "alice")
	u2 := signUp(t, mgr, "bob")

	id, err := mgr.AddBook("Dune", "Herbert", "fiction", "sci-fi")
	require.NoError(t, err)

	books, err := mgr.ListBooks()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, StatusAvailable, books[0].Status)
	assert.Equal(t, NoBorrower, books[0].Borrower)

	require.NoError(t, mgr.Borrow(u, id))
	b, err := mgr.GetBook(id)
	require.NoError(t, err)
	assert.Equal(t, StatusBorrowed, b.Status)
	assert.Equal(t, u.ID, b.BorrowerID.Int64)
	assert.Equal(t, "alice", b.Borrower)

	assert.ErrorIs(t, mgr.Borrow(u2, id), ErrBookUnavailable)
	assert.ErrorIs(t, mgr.Return(u2.ID, id), ErrNotBorrower)

	require.NoError(t, mgr.Return(u.ID, id))
	b, err = mgr.GetBook(id)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, b.Status)
	assert.False(t, b.BorrowerID.Valid)
	assert.Equal(t, NoBorrower, b.Borrower)

	// No terminal state: the book can go out again.
	require.NoError(t, mgr.Borrow(u2, id))
}

func TestBorrowRequiresUser(t *testing.T) {
	mgr := newManager(t)
	id, _ := mgr.AddBook("Dune", "Herbert", "", "")
	assert.ErrorIs(t, mgr.Borrow(nil, id), ErrInvalidInput)
	assert.ErrorIs(t, mgr.Borrow(&User{ID: 42, Username: "ghost"}, id), ErrBookUnavailable)
}

func TestDeleteUserReturnsHeldBooks(t *testing.T) {
	mgr := newManager(t)
	u := signUp(t, mgr, "alice")
	keep := signUp(t, mgr, "bob")
	id, _ := mgr.AddBook("Dune", "Herbert", "", "")
	require.NoError(t, mgr.Borrow(u, id))

	require.NoError(t, mgr.DeleteUser(u.ID))

	b, err := mgr.GetBook(id)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, b.Status)
	assert.False(t, b.BorrowerID.Valid)

	users, err := mgr.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, keep.ID, users[0].ID)

	assert.ErrorIs(t, mgr.DeleteUser(u.ID), ErrUserNotFound)
	// The released book is borrowable again.
	assert.NoError(t, mgr.Borrow(keep, id))
}

func TestSearchByAuthorCaseInsensitive(t *testing.T) {
	mgr := newManager(t)
	_, _ = mgr.AddBook("The Hobbit", "J.R.R. Tolkien", "", "fantasy")
	_, _ = mgr.AddBook("Emma", "Jane Austen", "", "")

	books, err := mgr.SearchByAuthor("tolkien")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "J.R.R. Tolkien", books[0].Author)

	books, err = mgr.SearchByAuthor("R.R")
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestDeleteBookManager(t *testing.T) {
	mgr := newManager(t)
	id, _ := mgr.AddBook("Dune", "Herbert", "", "")
	require.NoError(t, mgr.DeleteBook(id))
	assert.ErrorIs(t, mgr.DeleteBook(id), ErrBookNotFound)

	books, err := mgr.ListBooks()
	require.NoError(t, err)
	assert.Empty(t, books)
}
