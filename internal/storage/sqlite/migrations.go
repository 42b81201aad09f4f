package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT    PRIMARY KEY,
    name       TEXT    UNIQUE NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id         TEXT    PRIMARY KEY,
    owner_id   TEXT    NOT NULL,
    name       TEXT    NOT NULL,
    is_income  INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    UNIQUE (owner_id, name),
    FOREIGN KEY (owner_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS records (
    id           TEXT    PRIMARY KEY,
    owner_id     TEXT    NOT NULL,
    name         TEXT    NOT NULL,
    amount_cents INTEGER NOT NULL,
    category_id  TEXT,
    date         TEXT    NOT NULL,
    pending      INTEGER NOT NULL DEFAULT 0,
    split_id     TEXT,
    settle       INTEGER NOT NULL DEFAULT 0,
    debtor_id    TEXT,
    creditor_id  TEXT,
    created_at   INTEGER NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS idempotency_keys (
    token      TEXT    NOT NULL,
    owner_id   TEXT    NOT NULL,
    response   TEXT,
    status     INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (owner_id, token)
);

CREATE INDEX IF NOT EXISTS idx_records_owner_date ON records(owner_id, date);
CREATE INDEX IF NOT EXISTS idx_records_split_id ON records(split_id);
CREATE INDEX IF NOT EXISTS idx_records_category_id ON records(category_id);
CREATE INDEX IF NOT EXISTS idx_categories_owner_id ON categories(owner_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
