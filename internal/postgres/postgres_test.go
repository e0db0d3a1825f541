package postgres

import (
	"context"
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

func TestNewStore_Unreachable(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewStore("host=127.0.0.1 port=1 user=nobody dbname=nothing sslmode=disable connect_timeout=1", &logger)
	assert.Error(t, err)
}

// TestStore_Integration runs against a real server. Point POSTGRES_TEST_DSN
// at a scratch database to enable it.
func TestStore_Integration(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN is not set")
	}

	logger := zerolog.Nop()
	store, err := NewStore(dsn, &logger)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	client := &models.Client{Name: "Integration Client", Phone: "+7 900 000-00-00"}
	require.NoError(t, store.CreateClient(ctx, client))
	defer store.DeleteClient(ctx, client.ID)

	pkg := &models.Package{Name: "Integration Package", Category: "Wedding", Price: 20000, Hours: 8}
	require.NoError(t, store.CreatePackage(ctx, pkg))
	defer store.DeletePackage(ctx, pkg.ID)

	split, err := ledger.ComputeSplit(pkg.Price)
	require.NoError(t, err)

	project := &models.Project{
		ClientID:       client.ID,
		PackageID:      pkg.ID,
		EventType:      "Wedding",
		EventDate:      time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Status:         models.StatusNew,
		Price:          pkg.Price,
		DepositPercent: split.Percent,
		DepositAmount:  split.Deposit,
		BalanceAmount:  pkg.Price,
		RevisionLimit:  models.DefaultRevisionLimit,
	}
	require.NoError(t, store.CreateProject(ctx, project))
	defer store.DeleteProject(ctx, project.ID)

	assert.Equal(t, int64(5000), project.DepositAmount)

	payment := &models.Payment{ProjectID: project.ID, Amount: 5000, Method: models.MethodBankTransfer}
	updated, err := store.PostPayment(ctx, payment)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), updated.AmountPaid)
	assert.Equal(t, int64(15000), updated.BalanceAmount)
	assert.Equal(t, updated.Price, updated.AmountPaid+updated.BalanceAmount)

	_, updated, err = store.ReversePayment(ctx, payment.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.AmountPaid)
	assert.Equal(t, int64(20000), updated.BalanceAmount)

	err = store.UpdateProjectStatusWithVersion(ctx, project.ID, project.Version, models.StatusConfirmed)
	require.NoError(t, err)
	err = store.UpdateProjectStatusWithVersion(ctx, project.ID, project.Version, models.StatusScheduled)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}
