package models_test

import (
	"blindpair/backend/internal/models"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	user := &models.User{
		InstitutionID: "uni-1",
		Username:      "alice",
		RealName:      "Alice Smith",
	}
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	// Act
	err := user.BeforeCreate(nil)

	// Assert
	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{ID: existingID, Username: "bob"}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID, "BeforeCreate should preserve existing ID")
}

// TestUserStructTags guards the GORM tags the Postgres schema depends on.
func TestUserStructTags(t *testing.T) {
	userType := reflect.TypeOf(models.User{})

	idField, found := userType.FieldByName("ID")
	assert.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")

	aliases, found := userType.FieldByName("Aliases")
	assert.True(t, found)
	assert.Contains(t, aliases.Tag.Get("gorm"), "type:text[]", "Aliases should use PostgreSQL array type")

	tg, found := userType.FieldByName("TelegramID")
	assert.True(t, found)
	assert.Equal(t, "-", tg.Tag.Get("json"), "TelegramID must never be serialized")
}

func TestUserIdentity(t *testing.T) {
	user := &models.User{
		ID:       "u1",
		Username: "alice",
		RealName: "Alice Smith",
		Aliases:  pq.StringArray{"ally"},
	}

	id := user.Identity()

	assert.Equal(t, models.Identity{UserID: "u1", Username: "alice", RealName: "Alice Smith"}, id)
}
