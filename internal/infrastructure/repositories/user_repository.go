package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wisdomindex/wealth_service/internal/domain/entities"
)

// UserRepository persists authentication accounts in PostgreSQL.
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("user-repository"),
	}
}

// GetByEmail retrieves a user by email, nil when no account exists.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	ctx, span := r.tracer.Start(ctx, "user_repo.get_by_email")
	defer span.End()

	query := `
		SELECT id, client_id, email, password_hash, role, is_active,
		       last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by id, nil when no account exists.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	ctx, span := r.tracer.Start(ctx, "user_repo.get_by_id", trace.WithAttributes(
		attribute.String("user_id", id.String()),
	))
	defer span.End()

	query := `
		SELECT id, client_id, email, password_hash, role, is_active,
		       last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	ctx, span := r.tracer.Start(ctx, "user_repo.create", trace.WithAttributes(
		attribute.String("user_id", user.ID.String()),
	))
	defer span.End()

	query := `
		INSERT INTO users (id, client_id, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if _, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.ClientID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.Int64("client_id", user.ClientID))

	return nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "user_repo.update_last_login")
	defer span.End()

	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $1, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
