package library

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Database provides high-level helpers around a SQLite connection.
type Database struct {
	db *sqlx.DB

	addBookStmt *sqlx.Stmt
	addUserStmt *sqlx.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// WAL, busy_timeout and foreign keys on every pooled connection.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_journal_mode=WAL", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addBookStmt != nil {
		d.addBookStmt.Close()
	}
	if d.addUserStmt != nil {
		d.addUserStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

func applyMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// m.Close would close db as well, so only the source is released.
	defer src.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Preparex(`INSERT INTO books(title,author,status,category,genre_or_subject) VALUES(?,?,'Available',?,?)`); err != nil {
		return err
	}
	if d.addUserStmt, err = d.db.Preparex(`INSERT INTO users(username,password_hash,email) VALUES(?,?,?)`); err != nil {
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// AddUser inserts a user with an already hashed password. A taken username
// yields ErrUsernameTaken; the UNIQUE constraint makes the check atomic.
func (d *Database) AddUser(username, passwordHash, email string) (int64, error) {
	res, err := d.addUserStmt.Exec(username, passwordHash, email)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	return res.LastInsertId()
}

// userCredentials looks up the login row by exact username.
func (d *Database) userCredentials(username string) (*credentialRow, error) {
	var row credentialRow
	if err := d.db.Get(&row, `SELECT id,username,email,password_hash FROM users WHERE username=?`, username); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetUser fetches a single user.
func (d *Database) GetUser(id int64) (*User, error) {
	var u User
	err := d.db.Get(&u, `SELECT id,username,email FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAllUsers returns all users ordered by id.
func (d *Database) GetAllUsers() ([]*User, error) {
	users := []*User{}
	if err := d.db.Select(&users, `SELECT id,username,email FROM users ORDER BY id`); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser returns every book the user holds to the shelf and removes the
// user, in one transaction. It reports how many books were released.
func (d *Database) DeleteUser(id int64) (int64, error) {
	tx, err := d.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE books SET status='Available', borrower_id=NULL WHERE borrower_id=?`, id)
	if err != nil {
		return 0, err
	}
	released, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = tx.Exec(`DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrUserNotFound
	}
	return released, tx.Commit()
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

// AddBook inserts an available book.
func (d *Database) AddBook(title, author string, category Category, genreOrSubject string) (int64, error) {
	res, err := d.addBookStmt.Exec(title, author, string(category), genreOrSubject)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// BookExists is an exact (title, author) match.
func (d *Database) BookExists(title, author string) (bool, error) {
	var exists bool
	err := d.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM books WHERE title=? AND author=?)`, title, author)
	return exists, err
}

func (d *Database) GetBook(id int64) (*Book, error) {
	query, args, err := buildGetBookQuery(id)
	if err != nil {
		return nil, err
	}
	var b Book
	err = d.db.Get(&b, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetAllBooks lists the catalog ordered by id.
func (d *Database) GetAllBooks() ([]*Book, error) {
	query, args, err := buildListBooksQuery()
	if err != nil {
		return nil, err
	}
	return d.selectBooks(query, args)
}

// SearchBooksByAuthor does a case-insensitive substring match on author.
func (d *Database) SearchBooksByAuthor(substring string) ([]*Book, error) {
	query, args, err := buildSearchByAuthorQuery(substring)
	if err != nil {
		return nil, err
	}
	return d.selectBooks(query, args)
}

func (d *Database) selectBooks(query string, args []interface{}) ([]*Book, error) {
	books := []*Book{}
	if err := d.db.Select(&books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

// DeleteBook removes the row outright.
func (d *Database) DeleteBook(id int64) error {
	res, err := d.db.Exec(`DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// BorrowBook moves a book from Available to Borrowed by userID. The guard and
// the write are one statement, so under contention exactly one caller sees a
// changed row.
func (d *Database) BorrowBook(bookID, userID int64) error {
	res, err := d.db.Exec(`
        UPDATE books SET status='Borrowed', borrower_id=?
        WHERE id=? AND status='Available'
          AND EXISTS(SELECT 1 FROM users WHERE id=?)`, userID, bookID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookUnavailable
	}
	return nil
}

// ReturnBook moves a book back to Available. Only the current borrower may
// return it.
func (d *Database) ReturnBook(bookID, userID int64) error {
	res, err := d.db.Exec(`
        UPDATE books SET status='Available', borrower_id=NULL
        WHERE id=? AND status='Borrowed' AND borrower_id=?`, bookID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotBorrower
	}
	return nil
}
