package applicant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"testadmin/internal/identity/idnumber"
	"testadmin/internal/platform/database"
	"testadmin/internal/registration/models"
	"testadmin/internal/sentinel"
	"testadmin/pkg/domain"
)

const applicantColumns = `id, first_name, last_name, email, id_type, id_number, date_of_birth,
	gender, citizenship, status, status_reason, decided_by, created_at, updated_at`

// PostgresStore persists applicants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed applicant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new applicant. The (id_type, id_number) unique constraint
// maps to sentinel.ErrAlreadyExists.
func (s *PostgresStore) Create(ctx context.Context, a *models.Applicant) error {
	if a == nil {
		return fmt.Errorf("applicant is required")
	}
	query := `
		INSERT INTO applicants (` + applicantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID),
		a.FirstName,
		a.LastName,
		a.Email,
		string(a.IDType),
		a.IDNumber,
		nullDate(a.DateOfBirth),
		nullString((*string)(a.Gender)),
		nullString((*string)(a.Citizenship)),
		string(a.Status),
		emptyToNull(a.StatusReason),
		emptyToNull(a.DecidedBy),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("id number already registered: %w", sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("create applicant: %w", err)
	}
	return nil
}

// FindByID retrieves an applicant by ID.
func (s *PostgresStore) FindByID(ctx context.Context, id domain.ApplicantID) (*models.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id = $1`
	a, err := scanApplicant(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find applicant by id: %w", err)
	}
	return a, nil
}

// FindByIDNumber retrieves an applicant by ID type and number.
func (s *PostgresStore) FindByIDNumber(ctx context.Context, idType idnumber.IDType, number string) (*models.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id_type = $1 AND id_number = $2`
	a, err := scanApplicant(s.db.QueryRowContext(ctx, query, string(idType), number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find applicant by id number: %w", err)
	}
	return a, nil
}

// List returns applicants matching the filter, newest first, with the
// unpaged total.
func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Applicant, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.IDType != "" {
		args = append(args, string(filter.IDType))
		where = append(where, fmt.Sprintf("id_type = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applicants`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applicants: %w", err)
	}

	query := `SELECT ` + applicantColumns + ` FROM applicants` + clause + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	applicants := []*models.Applicant{}
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan applicant: %w", err)
		}
		applicants = append(applicants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate applicants: %w", err)
	}
	return applicants, total, nil
}

// UpdateStatus applies change only if the applicant is still in change.From.
func (s *PostgresStore) UpdateStatus(ctx context.Context, change models.StatusChange) (*models.Applicant, error) {
	query := `
		UPDATE applicants
		SET status = $3, status_reason = $4, decided_by = $5, updated_at = $6
		WHERE id = $1 AND status = $2
		RETURNING ` + applicantColumns
	a, err := scanApplicant(s.db.QueryRowContext(ctx, query,
		uuid.UUID(change.ID),
		string(change.From),
		string(change.To),
		emptyToNull(change.Reason),
		emptyToNull(change.Actor),
		change.At,
	))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update applicant status: %w", err)
	}

	// No row matched: distinguish a missing applicant from a stale status.
	current, findErr := s.FindByID(ctx, change.ID)
	if findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("applicant is %s: %w", current.Status, sentinel.ErrInvalidState)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplicant(row rowScanner) (*models.Applicant, error) {
	var (
		a            models.Applicant
		id           uuid.UUID
		idType       string
		status       string
		dob          sql.NullTime
		gender       sql.NullString
		citizenship  sql.NullString
		statusReason sql.NullString
		decidedBy    sql.NullString
	)
	if err := row.Scan(
		&id,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&idType,
		&a.IDNumber,
		&dob,
		&gender,
		&citizenship,
		&status,
		&statusReason,
		&decidedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.ID = domain.ApplicantID(id)
	a.IDType = idnumber.IDType(idType)
	a.Status = models.Status(status)
	a.StatusReason = statusReason.String
	a.DecidedBy = decidedBy.String
	if dob.Valid {
		d := time.Date(dob.Time.Year(), dob.Time.Month(), dob.Time.Day(), 0, 0, 0, 0, time.UTC)
		a.DateOfBirth = &d
	}
	if gender.Valid {
		g := idnumber.Gender(gender.String)
		a.Gender = &g
	}
	if citizenship.Valid {
		c := idnumber.Citizenship(citizenship.String)
		a.Citizenship = &c
	}
	return &a, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func emptyToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
