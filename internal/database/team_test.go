package database

import (
	"context"
	"testing"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamMemberCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	member := &models.TeamMember{
		Name:  "Dmitry Volkov",
		Role:  "Second Shooter",
		Phone: "+7 922 333-44-55",
		Email: "dmitry@example.com",
	}
	err := db.CreateTeamMember(ctx, member)
	require.NoError(t, err)
	assert.NotZero(t, member.ID)

	got, err := db.GetTeamMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second Shooter", got.Role)

	member.Role = "Lead Photographer"
	err = db.UpdateTeamMember(ctx, member)
	require.NoError(t, err)

	got, err = db.GetTeamMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lead Photographer", got.Role)

	members, err := db.ListTeamMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	err = db.DeleteTeamMember(ctx, member.ID)
	require.NoError(t, err)

	_, err = db.GetTeamMember(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = db.UpdateTeamMember(ctx, member)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = db.DeleteTeamMember(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
