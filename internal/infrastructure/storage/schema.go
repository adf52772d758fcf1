package storage

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS news (
		id            UUID PRIMARY KEY,
		source_url    TEXT NOT NULL,
		headline      TEXT NOT NULL,
		excerpt       TEXT NOT NULL DEFAULT '',
		positivity    INTEGER NOT NULL CHECK (positivity BETWEEN 0 AND 100),
		category      TEXT NOT NULL DEFAULT 'other',
		full_body     TEXT NOT NULL DEFAULT '',
		orig_headline TEXT NOT NULL DEFAULT '',
		enriched      BOOLEAN NOT NULL DEFAULT FALSE,
		created_date  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS news_source_url_key ON news (source_url)`,
	`CREATE INDEX IF NOT EXISTS news_created_date_idx ON news (created_date DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_date  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id              UUID PRIMARY KEY,
		user_id         UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		news_id         UUID NOT NULL REFERENCES news (id) ON DELETE CASCADE,
		comment_content TEXT NOT NULL,
		created_date    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_news_id_idx ON comments (news_id, created_date DESC)`,
}
