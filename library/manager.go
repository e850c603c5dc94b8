package library

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Options configures a LibraryManager. Values are copied at construction
// and never change afterwards.
type Options struct {
	DBPath     string
	Pepper     string
	BcryptCost int

	// Admin login is disabled when either value is empty.
	AdminUser string
	AdminPass string

	Logger *slog.Logger
	// Now stamps export file names; defaults to time.Now.
	Now func() time.Time
}

// LibraryManager is a thin façade over the Database, keeping CLI code simple.
type LibraryManager struct {
	db        *Database
	creds     *Credentials
	validate  *validator.Validate
	log       *slog.Logger
	now       func() time.Time
	adminUser string
	adminPass string
}

// NewLibraryManager opens (or creates) the SQLite database at opts.DBPath.
func NewLibraryManager(opts Options) (*LibraryManager, error) {
	db, err := NewDatabase(opts.DBPath)
	if err != nil {
		return nil, err
	}
	lm := &LibraryManager{
		db:        db,
		creds:     NewCredentials(opts.Pepper, opts.BcryptCost),
		validate:  newValidator(),
		log:       opts.Logger,
		now:       opts.Now,
		adminUser: opts.AdminUser,
		adminPass: opts.AdminPass,
	}
	if lm.log == nil {
		lm.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if lm.now == nil {
		lm.now = time.Now
	}
	return lm, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("libemail", func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String())
	})
	return v
}

type signUpInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
	Email    string `validate:"required,libemail"`
}

type bookInput struct {
	Title  string `validate:"required"`
	Author string `validate:"required"`
}

func (lm *LibraryManager) check(v interface{}) error {
	if err := lm.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidInput, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// storageFault logs and wraps a storage engine error.
func (lm *LibraryManager) storageFault(op string, err error, attrs ...any) error {
	lm.log.Error(op+" failed", append(attrs, "error", err)...)
	return fmt.Errorf("%s: %w", op, err)
}

// ------------------ Users ------------------

// SignUp registers a user. Password strength is not enforced here; callers
// that want it use ValidatePassword.
func (lm *LibraryManager) SignUp(username, password, email string) (*User, error) {
	in := signUpInput{
		Username: strings.TrimSpace(username),
		Password: password,
		Email:    strings.TrimSpace(email),
	}
	if err := lm.check(in); err != nil {
		lm.log.Warn("sign up rejected", "username", in.Username, "error", err)
		return nil, err
	}

	hash, err := lm.creds.Hash(in.Password)
	if err != nil {
		lm.log.Warn("sign up rejected", "username", in.Username, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := lm.db.AddUser(in.Username, hash, in.Email)
	if errors.Is(err, ErrUsernameTaken) {
		lm.log.Warn("username already exists", "username", in.Username)
		return nil, err
	}
	if err != nil {
		return nil, lm.storageFault("sign up", err, "username", in.Username)
	}

	lm.log.Info("user registered", "user_id", id, "username", in.Username)
	return &User{ID: id, Username: in.Username, Email: in.Email}, nil
}

// Login returns the public user record. Every failure, including storage
// errors, surfaces as ErrInvalidCredentials.
func (lm *LibraryManager) Login(username, password string) (*User, error) {
	row, err := lm.db.userCredentials(username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			lm.log.Error("login lookup failed", "username", username, "error", err)
		}
		return nil, ErrInvalidCredentials
	}
	if !lm.creds.Verify(password, row.PasswordHash) {
		lm.log.Warn("login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}
	u := row.User
	return &u, nil
}

// AdminLogin checks the configured administrator credentials.
func (lm *LibraryManager) AdminLogin(username, password string) bool {
	if lm.adminUser == "" || lm.adminPass == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(lm.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(lm.adminPass)) == 1
	return userOK && passOK
}

func (lm *LibraryManager) GetUser(id int64) (*User, error) { return lm.db.GetUser(id) }

func (lm *LibraryManager) ListUsers() ([]*User, error) {
	users, err := lm.db.GetAllUsers()
	if err != nil {
		return nil, lm.storageFault("list users", err)
	}
	return users, nil
}

// DeleteUser removes a user after returning every book they hold.
func (lm *LibraryManager) DeleteUser(id int64) error {
	released, err := lm.db.DeleteUser(id)
	if errors.Is(err, ErrUserNotFound) {
		lm.log.Warn("delete user rejected", "user_id", id, "error", err)
		return err
	}
	if err != nil {
		return lm.storageFault("delete user", err, "user_id", id)
	}
	lm.log.Info("user deleted", "user_id", id, "books_released", released)
	return nil
}

// ------------------ Books ------------------

// AddBook stores an available book. An empty category means fiction.
// Duplicates are allowed; see BookExists.
func (lm *LibraryManager) AddBook(title, author, category, genreOrSubject string) (int64, error) {
	in := bookInput{Title: strings.TrimSpace(title), Author: strings.TrimSpace(author)}
	if err := lm.check(in); err != nil {
		lm.log.Warn("add book rejected", "title", in.Title, "error", err)
		return 0, err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		lm.log.Warn("add book rejected", "title", in.Title, "error", err)
		return 0, err
	}

	id, err := lm.db.AddBook(in.Title, in.Author, cat, strings.TrimSpace(genreOrSubject))
	if err != nil {
		return 0, lm.storageFault("add book", err, "title", in.Title)
	}
	lm.log.Info("book added", "book_id", id, "title", in.Title, "author", in.Author)
	return id, nil
}

func (lm *LibraryManager) BookExists(title, author string) (bool, error) {
	ok, err := lm.db.BookExists(strings.TrimSpace(title), strings.TrimSpace(author))
	if err != nil {
		return false, lm.storageFault("book exists", err, "title", title)
	}
	return ok, nil
}

func (lm *LibraryManager) GetBook(id int64) (*Book, error) { return lm.db.GetBook(id) }

func (lm *LibraryManager) ListBooks() ([]*Book, error) {
	books, err := lm.db.GetAllBooks()
	if err != nil {
		return nil, lm.storageFault("list books", err)
	}
	return books, nil
}

func (lm *LibraryManager) SearchByAuthor(substring string) ([]*Book, error) {
	books, err := lm.db.SearchBooksByAuthor(strings.TrimSpace(substring))
	if err != nil {
		return nil, lm.storageFault("search by author", err, "author", substring)
	}
	return books, nil
}

func (lm *LibraryManager) DeleteBook(id int64) error {
	err := lm.db.DeleteBook(id)
	if errors.Is(err, ErrBookNotFound) {
		lm.log.Warn("delete book rejected", "book_id", id, "error", err)
		return err
	}
	if err != nil {
		return lm.storageFault("delete book", err, "book_id", id)
	}
	lm.log.Info("book deleted", "book_id", id)
	return nil
}

// ------------------ Circulation ------------------

// Borrow lends an available book to user.
func (lm *LibraryManager) Borrow(user *User, bookID int64) error {
	if user == nil {
		return fmt.Errorf("%w: no user", ErrInvalidInput)
	}
	err := lm.db.BorrowBook(bookID, user.ID)
	if errors.Is(err, ErrBookUnavailable) {
		lm.log.Warn("borrow rejected", "book_id", bookID, "user_id", user.ID, "error", err)
		return err
	}
	if err != nil {
		return lm.storageFault("borrow book", err, "book_id", bookID, "user_id", user.ID)
	}
	lm.log.Info("book borrowed", "book_id", bookID, "user_id", user.ID, "username", user.Username)
	return nil
}

// Return puts a book back on the shelf. Only its current borrower may do so.
func (lm *LibraryManager) Return(userID, bookID int64) error {
	err := lm.db.ReturnBook(bookID, userID)
	if errors.Is(err, ErrNotBorrower) {
		lm.log.Warn("return rejected", "book_id", bookID, "user_id", userID, "error", err)
		return err
	}
	if err != nil {
		return lm.storageFault("return book", err, "book_id", bookID, "user_id", userID)
	}
	lm.log.Info("book returned", "book_id", bookID, "user_id", userID)
	return nil
}

// PrettyBook formats a book for lists.
func PrettyBook(b *Book) string {
	return fmt.Sprintf("%-5d %-30s %-25s %-10s %-20s %s", b.ID, truncate(b.Title, 30), truncate(b.Author, 25), b.Status, truncate(b.Borrower, 20), b.Detail())
}

func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
