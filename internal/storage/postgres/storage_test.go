package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage/storagetest"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func uniqueErr(constraint string) error {
	return &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint}
}

func foreignKeyErr(constraint string) error {
	return &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: constraint}
}

var profileColumns = []string{"username", "owner_id", "display_name", "picture_url", "created_at", "updated_at"}

func TestGetUserNotFound(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs(model.UserID("u1")).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetUser(context.Background(), "u1")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserWrapsDBError(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnError(errors.New("db down"))

	_, err := s.GetUserByEmail(context.Background(), "a@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get user: db down")
}

func TestClaimUsernameMapsConstraints(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraintProfilePK, model.ErrUsernameTaken},
		{constraintProfileOwner, model.ErrAlreadyHasUsername},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			s, mock := newMockStorage(t)
			mock.ExpectExec(`INSERT INTO profiles`).
				WithArgs("alice", model.UserID("u1"), "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnError(uniqueErr(tt.constraint))

			err := s.ClaimUsername(context.Background(), &model.Profile{Username: "alice", OwnerID: "u1"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetProfileByOwner(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM profiles WHERE owner_id = \$1`).
		WithArgs(model.UserID("u1")).
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow("alice", "u1", "Alice", "", now, now))

	p, err := s.GetProfileByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, model.UserID("u1"), p.OwnerID)
}

func TestUpdateProfileNotOwner(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	mock.ExpectExec(`UPDATE profiles SET display_name`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM profiles WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow("alice", "u1", "", "", now, now))

	err := s.UpdateProfile(context.Background(), &model.Profile{Username: "alice", OwnerID: "u2", UpdatedAt: now})
	assert.ErrorIs(t, err, model.ErrNotOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameUsernameCommits(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM profiles WHERE username = \$1 FOR UPDATE`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("u1"))
	mock.ExpectQuery(`UPDATE profiles SET username = \$1, updated_at = \$2`).
		WithArgs("alice2", now, "alice").
		WillReturnRows(sqlmock.NewRows(profileColumns).AddRow("alice2", "u1", "", "", now, now))
	mock.ExpectCommit()

	p, err := s.RenameUsername(context.Background(), "u1", "alice", "alice2", now)
	require.NoError(t, err)
	assert.Equal(t, "alice2", p.Username)
	assert.Equal(t, now, p.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameUsernameRollsBackWhenTaken(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM profiles`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("u1"))
	mock.ExpectQuery(`UPDATE profiles SET username`).
		WithArgs("bob", sqlmock.AnyArg(), "alice").
		WillReturnError(uniqueErr(constraintProfilePK))
	mock.ExpectRollback()

	_, err := s.RenameUsername(context.Background(), "u1", "alice", "bob", time.Now())
	assert.ErrorIs(t, err, model.ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameUsernameNotOwner(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM profiles`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow("u1"))
	mock.ExpectRollback()

	_, err := s.RenameUsername(context.Background(), "u2", "alice", "mallory", time.Now())
	assert.ErrorIs(t, err, model.ErrNotOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClipDuplicate(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`INSERT INTO clips`).
		WillReturnError(uniqueErr(constraintClipTitle))

	err := s.CreateClip(context.Background(), &model.Clip{OwnerUsername: "alice", Title: "demo-1"})
	assert.ErrorIs(t, err, model.ErrClipExists)
}

func TestCreateClipUnreservedOwner(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`INSERT INTO clips`).
		WillReturnError(foreignKeyErr(constraintClipOwner))

	err := s.CreateClip(context.Background(), &model.Clip{OwnerUsername: "alice", Title: "demo-1"})
	assert.ErrorIs(t, err, model.ErrProfileNotFound)
}

func TestListClipsOrdersInQuery(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	cols := []string{"id", "owner_username", "title", "object_key", "content_type", "size", "checksum", "audio_url", "created_at"}
	mock.ExpectQuery(`FROM clips WHERE owner_username = \$1 ORDER BY created_at DESC, title ASC`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c2", "alice", "newer", "clips/2", "audio/mpeg", 10, "", "u2", now).
			AddRow("c1", "alice", "older", "clips/1", "audio/mpeg", 10, "", "u1", now.Add(-time.Hour)))

	clips, err := s.ListClips(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, clips, 2)
	assert.Equal(t, "newer", clips[0].Title)
}

func TestDeleteClipNotFound(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectExec(`DELETE FROM clips`).
		WithArgs("alice", "demo-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteClip(context.Background(), "alice", "demo-1")
	assert.ErrorIs(t, err, model.ErrClipNotFound)
}

// Conformance against a live database, enabled with VZEE_TEST_POSTGRES_DSN

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	dsn := os.Getenv("VZEE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VZEE_TEST_POSTGRES_DSN not set")
	}
	cfg := DefaultConfig()
	cfg.DSN = dsn
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	suite.Run(t, &StorageSuite{storage: s})
}

func (s *StorageSuite) SetupTest() {
	s.Ctx = context.Background()
	s.Store = s.storage
	_, err := s.storage.db.ExecContext(s.Ctx, `TRUNCATE users, profiles, clips`)
	s.Require().NoError(err)
}
