package database

import (
	"context"
	"testing"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	client := &models.Client{
		Name:    "Ivan Sidorov",
		Phone:   "+7 911 000-00-01",
		Email:   "ivan@example.com",
		Address: "Moscow",
	}
	err := db.CreateClient(ctx, client)
	require.NoError(t, err)
	assert.NotZero(t, client.ID)
	assert.False(t, client.CreatedAt.IsZero())

	got, err := db.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Sidorov", got.Name)
	assert.Equal(t, "ivan@example.com", got.Email)

	client.Phone = "+7 911 000-00-02"
	client.Address = "Saint Petersburg"
	err = db.UpdateClient(ctx, client)
	require.NoError(t, err)

	got, err = db.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "+7 911 000-00-02", got.Phone)
	assert.Equal(t, "Saint Petersburg", got.Address)

	clients, err := db.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	err = db.DeleteClient(ctx, client.ID)
	require.NoError(t, err)

	_, err = db.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.GetClient(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = db.UpdateClient(ctx, &models.Client{ID: 404, Name: "Nobody"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = db.DeleteClient(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteClient_WithProjects(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	project := seedProject(t, db, 10000)

	err := db.DeleteClient(ctx, project.ClientID)
	assert.ErrorIs(t, err, domain.ErrConsistency)

	// Client is free to go once its projects are gone
	err = db.DeleteProject(ctx, project.ID)
	require.NoError(t, err)
	err = db.DeleteClient(ctx, project.ClientID)
	assert.NoError(t, err)
}
