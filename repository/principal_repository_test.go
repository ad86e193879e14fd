package repository

import (
	"database/sql"
	"testing"
	"time"

	"emr-auth/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalColumns() []string {
	return []string{"id", "mobile_number", "full_name", "role", "is_active", "is_blocked", "created_at"}
}

func TestPrincipalRepositoryGetByMobileNumberDoctor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM doctors").
		WithArgs("+919812345678").
		WillReturnRows(sqlmock.NewRows(principalColumns()).
			AddRow("4f9c2a11-0d3e-4f9a-9a2b-1c5d6e7f8a90", "+919812345678", "Dr. Asha Rao", "DOCTOR", true, false, time.Now()))

	principal, err := repo.GetByMobileNumber("+919812345678")
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, entity.RoleDoctor, principal.Role)
	assert.Equal(t, "Dr. Asha Rao", principal.DisplayName)
	assert.True(t, principal.IsActive)
	assert.False(t, principal.IsBlocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepositoryGetByMobileNumberUnknown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM doctors").
		WithArgs("+15550001111").
		WillReturnError(sql.ErrNoRows)

	principal, err := repo.GetByMobileNumber("+15550001111")
	require.NoError(t, err)
	assert.Nil(t, principal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
