package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"Zenframe/internal/config"
	"Zenframe/internal/domain"
	"Zenframe/internal/ports"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// newsListColumns omits full_body; the listing never returns it.
var newsListColumns = []string{
	"id", "source_url", "headline", "excerpt", "positivity",
	"category", "orig_headline", "enriched", "created_date",
}

var newsColumns = append(append([]string{}, newsListColumns...), "full_body")

// PostgresRepository persists news, users and comments into Postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

var _ ports.Store = (*PostgresRepository)(nil)

// Open connects to Postgres and applies pool settings.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// NewPostgresRepository wires a sqlx.DB implementation.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates tables and indexes if they do not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts the article or replaces every mutable field of the existing row with the
// same source_url, in one statement. The returned flag is true for a fresh insert.
func (r *PostgresRepository) Upsert(ctx context.Context, article domain.EnrichedArticle) (bool, error) {
	id := article.ID
	if id == "" {
		id = uuid.NewString()
	}

	query, args, err := psql.Insert("news").
		Columns(
			"id", "source_url", "headline", "excerpt", "positivity", "category",
			"full_body", "orig_headline", "enriched", "created_date",
		).
		Values(
			id, article.SourceURL, article.Headline, article.Excerpt, article.Positivity, article.Category,
			article.FullBody, article.OrigHeadline, article.Enriched, sq.Expr("NOW()"),
		).
		Suffix(`ON CONFLICT (source_url) DO UPDATE SET
			headline = EXCLUDED.headline,
			excerpt = EXCLUDED.excerpt,
			positivity = EXCLUDED.positivity,
			category = EXCLUDED.category,
			full_body = EXCLUDED.full_body,
			orig_headline = EXCLUDED.orig_headline,
			enriched = EXCLUDED.enriched,
			created_date = EXCLUDED.created_date
			RETURNING (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert: %w", err)
	}

	var inserted bool
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&inserted); err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return false, domain.ErrDuplicateKey
		}
		return false, fmt.Errorf("upsert news: %w", err)
	}
	return inserted, nil
}

// List returns news ordered by newest write first, without full bodies.
func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.EnrichedArticle, error) {
	builder := psql.Select(newsListColumns...).From("news")
	if filter.MinPositivity != nil {
		builder = builder.Where(sq.GtOrEq{"positivity": *filter.MinPositivity})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": strings.ToLower(filter.Category)})
	}
	builder = builder.OrderBy("created_date DESC", "id")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	articles := []domain.EnrichedArticle{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return articles, nil
}

// Get returns one article by id or domain.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (domain.EnrichedArticle, error) {
	if err := domain.ValidateID(id); err != nil {
		return domain.EnrichedArticle{}, err
	}

	query, args, err := psql.Select(newsColumns...).From("news").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.EnrichedArticle{}, fmt.Errorf("build get: %w", err)
	}

	var article domain.EnrichedArticle
	if err := r.db.GetContext(ctx, &article, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.EnrichedArticle{}, domain.ErrNotFound
		}
		return domain.EnrichedArticle{}, fmt.Errorf("get news: %w", err)
	}
	return article, nil
}

// AddComment stores a comment; a missing news row yields domain.ErrNotFound.
func (r *PostgresRepository) AddComment(ctx context.Context, comment domain.Comment) (string, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	query, args, err := psql.Insert("comments").
		Columns("id", "user_id", "news_id", "comment_content", "created_date").
		Values(comment.ID, comment.UserID, comment.NewsID, comment.Content, sq.Expr("NOW()")).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build add comment: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("insert comment: %w", err)
	}
	return comment.ID, nil
}

// ListComments returns the comments of one article, newest first.
func (r *PostgresRepository) ListComments(ctx context.Context, newsID string) ([]domain.Comment, error) {
	query, args, err := psql.Select("id", "user_id", "news_id", "comment_content", "created_date").
		From("comments").
		Where(sq.Eq{"news_id": newsID}).
		OrderBy("created_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments: %w", err)
	}

	comments := []domain.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// CreateUser stores a new account; a taken email yields domain.ErrEmailTaken.
func (r *PostgresRepository) CreateUser(ctx context.Context, user domain.User) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query, args, err := psql.Insert("users").
		Columns("id", "first_name", "last_name", "email", "password_hash", "created_date").
		Values(user.ID, user.FirstName, user.LastName, strings.ToLower(user.Email), user.PasswordHash, sq.Expr("NOW()")).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build create user: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return "", domain.ErrEmailTaken
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return user.ID, nil
}

// UserByEmail looks an account up by its lower-cased email.
func (r *PostgresRepository) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	query, args, err := psql.Select("id", "first_name", "last_name", "email", "password_hash", "created_date").
		From("users").
		Where(sq.Eq{"email": strings.ToLower(email)}).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build user by email: %w", err)
	}

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
