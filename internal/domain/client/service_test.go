// internal/domain/client/service_test.go
package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:client_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Client{}))
	return NewService(db, &config.Config{}), db
}

func TestCreateClient(t *testing.T) {
	svc, _ := setupTestService(t)

	created, err := svc.CreateClient(&CreateClientRequest{
		FirstName: "Marie",
		LastName:  "Dupont",
		Email:     "marie@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, ClientTypeIndividual, created.ClientType)
	assert.Equal(t, PaymentTermsImmediate, created.PaymentTerms)
	assert.Equal(t, "France", created.Country)
	assert.True(t, created.IsActive)
	assert.Equal(t, "Marie Dupont", created.DisplayName())

	// Company clients show their company name on documents
	company, err := svc.CreateClient(&CreateClientRequest{
		FirstName:    "Jean",
		LastName:     "Martin",
		Company:      "Acme SARL",
		ClientType:   "company",
		PaymentTerms: "net30",
		CreditLimit:  500000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme SARL", company.DisplayName())
	assert.Equal(t, PaymentTermsNet30, company.PaymentTerms)

	_, err = svc.CreateClient(&CreateClientRequest{
		FirstName:  "Bad",
		LastName:   "Type",
		ClientType: "government",
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.CreateClient(&CreateClientRequest{
		FirstName:    "Bad",
		LastName:     "Terms",
		PaymentTerms: "net90",
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestGetClients_SearchAndFilter(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateClient(&CreateClientRequest{
			FirstName: fmt.Sprintf("Client%d", i),
			LastName:  "Durand",
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateClient(&CreateClientRequest{
		FirstName:  "Sophie",
		LastName:   "Bernard",
		Company:    "Bernard et Fils",
		ClientType: "company",
	})
	require.NoError(t, err)

	resp, err := svc.GetClients(&ClientListRequest{Page: 1, Limit: 2, Search: "Durand"})
	require.NoError(t, err)
	assert.Len(t, resp.Clients, 2)
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)

	resp, err = svc.GetClients(&ClientListRequest{Page: 1, Limit: 20, Type: "company"})
	require.NoError(t, err)
	require.Len(t, resp.Clients, 1)
	assert.Equal(t, "Bernard et Fils", resp.Clients[0].Company)
}

func TestUpdateClient(t *testing.T) {
	svc, _ := setupTestService(t)

	created, err := svc.CreateClient(&CreateClientRequest{
		FirstName: "Luc",
		LastName:  "Moreau",
	})
	require.NoError(t, err)

	newPhone := "+33 6 12 34 56 78"
	newTerms := "net60"
	updated, err := svc.UpdateClient(created.ID, &UpdateClientRequest{
		Phone:        &newPhone,
		PaymentTerms: &newTerms,
	})
	require.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)
	assert.Equal(t, PaymentTermsNet60, updated.PaymentTerms)

	badTerms := "whenever"
	_, err = svc.UpdateClient(created.ID, &UpdateClientRequest{PaymentTerms: &badTerms})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.UpdateClient(9999, &UpdateClientRequest{Phone: &newPhone})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteClient(t *testing.T) {
	svc, db := setupTestService(t)

	created, err := svc.CreateClient(&CreateClientRequest{
		FirstName: "Paul",
		LastName:  "Petit",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClient(created.ID))

	_, err = svc.GetClient(created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// Soft delete: the row survives for invoice and sale history
	var count int64
	require.NoError(t, db.Unscoped().Model(&Client{}).Where("id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.True(t, errors.Is(svc.DeleteClient(9999), apperrors.ErrNotFound))
}
