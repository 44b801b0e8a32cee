package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"member_console/internal/common"
	"member_console/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
	// List returns accounts in creation order. An empty status returns all.
	List(ctx context.Context, status string) ([]model.Account, error)
	// UpdateStatus sets status and status_changed_at in a single atomic update
	// and returns the updated row. No-op transitions still stamp.
	UpdateStatus(ctx context.Context, id, status string, changedAt time.Time) (*model.Account, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	// UpsertAdmin creates or refreshes the bootstrap administrator account,
	// forcing role=admin and status=approved.
	UpsertAdmin(ctx context.Context, account *model.Account) error
}

type pgAccountRepository struct {
	db *sql.DB
}

func NewPgAccountRepository(db *sql.DB) AccountRepository {
	return &pgAccountRepository{db: db}
}

const accountColumns = `id, email, hashed_password, name, role, status, status_changed_at, created_at`

func (r *pgAccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (id, email, hashed_password, name, role, status)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Email, account.HashedPassword, account.Name, account.Role, account.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("account with given email already exists: %w", common.ErrEmailTaken)
		}
		return fmt.Errorf("pgAccountRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := r.scanOne(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAccountRepository.FindByEmail: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAccountRepository.FindByID: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepository) List(ctx context.Context, status string) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`
	args := []interface{}{}
	if status != "" {
		query = `SELECT ` + accountColumns + ` FROM accounts WHERE status = $1 ORDER BY created_at`
		args = append(args, status)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgAccountRepository.List: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		account := model.Account{}
		if err := rows.Scan(
			&account.ID, &account.Email, &account.HashedPassword, &account.Name,
			&account.Role, &account.Status, &account.StatusChangedAt, &account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgAccountRepository.List scan: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAccountRepository.List rows: %w", err)
	}
	return accounts, nil
}

func (r *pgAccountRepository) UpdateStatus(ctx context.Context, id, status string, changedAt time.Time) (*model.Account, error) {
	query := `UPDATE accounts SET status = $1, status_changed_at = $2 WHERE id = $3
	          RETURNING ` + accountColumns
	account, err := r.scanOne(r.db.QueryRowContext(ctx, query, status, changedAt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAccountRepository.UpdateStatus: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM accounts GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgAccountRepository.CountByStatus: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("pgAccountRepository.CountByStatus scan: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAccountRepository.CountByStatus rows: %w", err)
	}
	return counts, nil
}

func (r *pgAccountRepository) UpsertAdmin(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (id, email, hashed_password, name, role, status, status_changed_at)
	          VALUES ($1, $2, $3, $4, 'admin', 'approved', now())
	          ON CONFLICT (email) DO UPDATE
	          SET hashed_password = EXCLUDED.hashed_password,
	              name = EXCLUDED.name,
	              role = 'admin',
	              status = 'approved',
	              status_changed_at = now()`
	_, err := r.db.ExecContext(ctx, query, account.ID, account.Email, account.HashedPassword, account.Name)
	if err != nil {
		return fmt.Errorf("pgAccountRepository.UpsertAdmin: %w", err)
	}
	return nil
}

func (r *pgAccountRepository) scanOne(row *sql.Row) (*model.Account, error) {
	account := &model.Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.HashedPassword, &account.Name,
		&account.Role, &account.Status, &account.StatusChangedAt, &account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}
