package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/annboard/auth-service/internal/errs"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var signupCols = []string{"id", "email", "pwd_hash", "salt", "code", "attempts", "created_at", "updated_at", "blocked_till"}

func signupRow(id uuid.UUID, email string, attempts int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(signupCols).
		AddRow(id, email, []byte("h"), []byte("s"), "12345", attempts, now, now, nil)
}

func TestSignupRepo_UpsertSignup_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSignupRepo(db, 5, 24*time.Hour)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`INSERT INTO email_signups .+ ON CONFLICT \(email\) DO UPDATE SET code = EXCLUDED\.code`).
		WithArgs(pgxmock.AnyArg(), "a@x.com", []byte("h"), []byte("s"), "12345", 5).
		WillReturnRows(signupRow(id, "a@x.com", 1))

	s, err := r.UpsertSignup(ctx, "a@x.com", []byte("h"), []byte("s"), "12345")
	require.NoError(t, err)
	require.Equal(t, id, s.ID)
	require.Equal(t, 1, s.Attempts)
	require.Nil(t, s.BlockedTill)
}

func TestSignupRepo_UpsertSignup_CapReached(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSignupRepo(db, 5, 24*time.Hour)
	ctx := context.Background()

	// The DO UPDATE WHERE clause filtered the row: no rows returned.
	mock.ExpectQuery(`INSERT INTO email_signups`).
		WithArgs(pgxmock.AnyArg(), "a@x.com", []byte("h"), []byte("s"), "12345", 5).
		WillReturnError(pgx.ErrNoRows)
	_, err := r.UpsertSignup(ctx, "a@x.com", []byte("h"), []byte("s"), "12345")
	require.ErrorIs(t, err, errs.ErrTooManyAttempts)

	// A check-constraint violation maps the same way.
	mock.ExpectQuery(`INSERT INTO email_signups`).
		WithArgs(pgxmock.AnyArg(), "a@x.com", []byte("h"), []byte("s"), "12345", 5).
		WillReturnError(&pgconn.PgError{Code: "23514"})
	_, err = r.UpsertSignup(ctx, "a@x.com", []byte("h"), []byte("s"), "12345")
	require.ErrorIs(t, err, errs.ErrTooManyAttempts)
}

func TestSignupRepo_GetSignup(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSignupRepo(db, 5, 24*time.Hour)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, email, pwd_hash, salt, code, attempts, created_at, updated_at, blocked_till FROM email_signups WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(signupRow(id, "a@x.com", 2))
	s, err := r.GetSignup(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", s.Email)
	require.Equal(t, 2, s.Attempts)

	mock.ExpectQuery(`SELECT id, email, pwd_hash, salt, code, attempts, created_at, updated_at, blocked_till FROM email_signups WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetSignup(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSignupRepo_DeleteSignup_Idempotent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSignupRepo(db, 5, 24*time.Hour)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM email_signups WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.DeleteSignup(ctx, id))

	mock.ExpectExec(`DELETE FROM email_signups WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.NoError(t, r.DeleteSignup(ctx, id))
}

func TestSignupRepo_RecordWrongCodeAttempt_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSignupRepo(db, 5, 24*time.Hour)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`UPDATE email_signups SET attempts = attempts \+ 1, updated_at = now\(\) WHERE id=\$1 AND attempts < \$2`).
		WithArgs(id, 5).
		WillReturnRows(signupRow(id, "a@x.com", 3))
	s, err := r.RecordWrongCodeAttempt(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 3, s.Attempts)
}

func TestSignupRepo_RecordWrongCodeAttempt_CapVsMissing(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSignupRepo(db, 5, 24*time.Hour)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	// Row exists but the counter is at the cap.
	mock.ExpectQuery(`UPDATE email_signups SET attempts = attempts \+ 1`).
		WithArgs(id, 5).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM email_signups WHERE id=\$1\)`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	_, err := r.RecordWrongCodeAttempt(ctx, id)
	require.ErrorIs(t, err, errs.ErrTooManyAttempts)

	// Row is gone.
	mock.ExpectQuery(`UPDATE email_signups SET attempts = attempts \+ 1`).
		WithArgs(id, 5).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM email_signups WHERE id=\$1\)`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	_, err = r.RecordWrongCodeAttempt(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSignupRepo_BlockEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSignupRepo(db, 5, 24*time.Hour)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	till := time.Now().Add(24 * time.Hour)

	rows := pgxmock.NewRows(signupCols).
		AddRow(id, "a@x.com", []byte("h"), []byte("s"), "12345", 5, time.Now(), time.Now(), &till)
	mock.ExpectQuery(`UPDATE email_signups SET blocked_till = now\(\) \+ \$2::interval, updated_at = now\(\) WHERE email=\$1`).
		WithArgs("a@x.com", 24*time.Hour).
		WillReturnRows(rows)
	s, err := r.BlockEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, s.BlockedTill)

	mock.ExpectQuery(`UPDATE email_signups SET blocked_till = now\(\) \+ \$2::interval`).
		WithArgs("b@x.com", 24*time.Hour).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.BlockEmail(ctx, "b@x.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
