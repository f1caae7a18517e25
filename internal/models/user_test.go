package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"yamdb/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPrivileges(t *testing.T) {
	tests := []struct {
		name      string
		user      models.User
		admin     bool
		moderator bool
	}{
		{"plain user", models.User{Role: models.RoleUser}, false, false},
		{"moderator", models.User{Role: models.RoleModerator}, false, true},
		{"admin role", models.User{Role: models.RoleAdmin}, true, false},
		{"staff flag", models.User{Role: models.RoleUser, IsStaff: true}, true, false},
		{"superuser flag", models.User{Role: models.RoleModerator, IsSuperuser: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.admin, tt.user.IsAdmin())
			assert.Equal(t, tt.moderator, tt.user.IsModerator())
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, models.RoleUser.Valid())
	assert.True(t, models.RoleModerator.Valid())
	assert.True(t, models.RoleAdmin.Valid())
	assert.False(t, models.Role("owner").Valid())
	assert.False(t, models.Role("").Valid())
}

func TestUserJSONHidesSecrets(t *testing.T) {
	user := models.User{ID: "u-1", Username: "reader", Email: "r@example.com", Role: models.RoleUser, ConfirmationCode: "$2a$10$hash"}
	body, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(body), "hash")
	assert.NotContains(t, string(body), "confirmation_code")
	assert.Contains(t, string(body), `"username":"reader"`)
}

func TestReviewJSONRendersAuthorUsername(t *testing.T) {
	review := models.Review{
		ID:       "r-1",
		Text:     "great",
		Score:    9,
		AuthorID: "u-1",
		Author:   &models.User{ID: "u-1", Username: "reader"},
		PubDate:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	body, err := json.Marshal(review)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "reader", decoded["author"])
	assert.Equal(t, "r-1", decoded["id"])
	assert.Equal(t, float64(9), decoded["score"])
	assert.NotContains(t, decoded, "title")

	comment := models.Comment{ID: "c-1", Text: "agreed", AuthorID: "u-2"}
	body, err = json.Marshal(&comment)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "", decoded["author"])
}
