package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/ledger"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	return db
}

func seedClient(t *testing.T, db *DB) *models.Client {
	client := &models.Client{
		Name:  "Anna Petrova",
		Phone: "+7 900 123-45-67",
		Email: "anna@example.com",
	}
	err := db.CreateClient(context.Background(), client)
	require.NoError(t, err)
	return client
}

func seedPackage(t *testing.T, db *DB, price int64) *models.Package {
	pkg := &models.Package{
		Name:         "Wedding Standard",
		Category:     "Wedding",
		Price:        price,
		Hours:        8,
		Deliverables: "300 edited photos",
	}
	err := db.CreatePackage(context.Background(), pkg)
	require.NoError(t, err)
	return pkg
}

// seedProject persists a project with the ledger snapshot a fresh booking
// would carry: balance equals price, nothing paid yet.
func seedProject(t *testing.T, db *DB, price int64) *models.Project {
	client := seedClient(t, db)
	pkg := seedPackage(t, db, price)

	split, err := ledger.ComputeSplit(price)
	require.NoError(t, err)

	project := &models.Project{
		ClientID:       client.ID,
		PackageID:      pkg.ID,
		EventType:      "Wedding",
		EventDate:      time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		EventTime:      "14:00",
		Location:       "Loft on Arbat",
		Status:         models.StatusNew,
		Price:          price,
		DepositPercent: split.Percent,
		DepositAmount:  split.Deposit,
		BalanceAmount:  price,
		AmountPaid:     0,
		RevisionLimit:  models.DefaultRevisionLimit,
	}
	err = db.CreateProject(context.Background(), project)
	require.NoError(t, err)
	return project
}

func TestCreateProject(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	project := seedProject(t, db, 20000)

	assert.NotZero(t, project.ID)
	assert.Equal(t, int64(1), project.Version)
	assert.False(t, project.CreatedAt.IsZero())

	got, err := db.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ClientID, got.ClientID)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Equal(t, "2026-09-12", got.EventDate.Format("2006-01-02"))
	assert.Equal(t, int64(20000), got.Price)
	assert.Equal(t, int64(5000), got.DepositAmount)
	assert.Equal(t, int64(20000), got.BalanceAmount)
	assert.Equal(t, int64(0), got.AmountPaid)
	assert.Equal(t, int64(models.DefaultRevisionLimit), got.RevisionLimit)
}

func TestCreateProject_UnknownReferences(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	client := seedClient(t, db)
	pkg := seedPackage(t, db, 10000)

	t.Run("UnknownClient", func(t *testing.T) {
		project := &models.Project{ClientID: 9999, PackageID: pkg.ID, Status: models.StatusNew}
		err := db.CreateProject(ctx, project)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("UnknownPackage", func(t *testing.T) {
		project := &models.Project{ClientID: client.ID, PackageID: 9999, Status: models.StatusNew}
		err := db.CreateProject(ctx, project)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestListProjects_Order(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	first := seedProject(t, db, 10000)
	second := seedProject(t, db, 15000)

	projects, err := db.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Newest first; id breaks the tie for rows created in the same second
	assert.Equal(t, second.ID, projects[0].ID)
	assert.Equal(t, first.ID, projects[1].ID)
}

func TestUpdateProject_MetadataOnly(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	project := seedProject(t, db, 20000)

	project.EventType = "Corporate"
	project.EventDate = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	project.Location = "Office rooftop"
	project.RevisionLimit = 5
	project.Notes = "client wants drone shots"
	err := db.UpdateProject(ctx, project)
	require.NoError(t, err)

	got, err := db.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corporate", got.EventType)
	assert.Equal(t, "2026-10-01", got.EventDate.Format("2006-01-02"))
	assert.Equal(t, int64(5), got.RevisionLimit)

	// Financial snapshot must survive metadata updates untouched
	assert.Equal(t, int64(20000), got.Price)
	assert.Equal(t, int64(5000), got.DepositAmount)
	assert.Equal(t, int64(20000), got.BalanceAmount)
	assert.Equal(t, int64(0), got.AmountPaid)
}

func TestUpdateProject_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := db.UpdateProject(context.Background(), &models.Project{ID: 777})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectStatusOptimisticLocking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	project := seedProject(t, db, 10000)
	assert.Equal(t, int64(1), project.Version)

	// Successful update
	err := db.UpdateProjectStatusWithVersion(ctx, project.ID, project.Version, models.StatusConfirmed)
	require.NoError(t, err)

	// Failed update with old version
	err = db.UpdateProjectStatusWithVersion(ctx, project.ID, project.Version, models.StatusScheduled)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.True(t, errors.Is(err, domain.ErrConsistency))

	// Successful update with new version
	updated, _ := db.GetProject(ctx, project.ID)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	err = db.UpdateProjectStatusWithVersion(ctx, updated.ID, updated.Version, models.StatusScheduled)
	require.NoError(t, err)
}

func TestDeleteProject_CascadesPayments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	project := seedProject(t, db, 20000)

	_, err := db.PostPayment(ctx, &models.Payment{ProjectID: project.ID, Amount: 5000, Method: models.MethodCash})
	require.NoError(t, err)
	_, err = db.PostPayment(ctx, &models.Payment{ProjectID: project.ID, Amount: 3000, Method: models.MethodCard})
	require.NoError(t, err)

	err = db.DeleteProject(ctx, project.ID)
	require.NoError(t, err)

	_, err = db.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	payments, err := db.ListPayments(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 0)

	err = db.DeleteProject(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevisionCounter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	project := seedProject(t, db, 10000)

	for i := 1; i <= 3; i++ {
		updated, err := db.RecordRevision(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), updated.RevisionsUsed)
	}

	reset, err := db.ResetRevisions(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reset.RevisionsUsed)

	_, err = db.RecordRevision(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = db.ResetRevisions(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
