package user

// Executor abstracts the database the user store runs on.
// A *sql.DB wrapper satisfies it; see the tests for one.
type Executor interface {
	Exec(query string, args ...any) error
	Query(query string, args ...any) (Rows, error)
	QueryRow(query string, args ...any) Scanner
}

// Scanner interface abstracts scanning a row.
type Scanner interface {
	Scan(dest ...any) error
}

// Rows interface abstracts scanning multiple rows.
type Rows interface {
	Scan(dest ...any) error
	Next() bool
	Close() error
	Err() error
}
