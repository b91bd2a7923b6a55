package company

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/licsync/backend/internal/domain/company"
	"github.com/licsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByName(ctx context.Context, name string) (*company.Company, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByNames(ctx context.Context, names []string) ([]company.Company, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]company.Company, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]company.Company), args.Error(1)
}

func (m *MockCompanyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) Insert(ctx context.Context, c *company.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) Update(ctx context.Context, c *company.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Record(ctx context.Context, entry *company.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]company.HistoryEntry, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]company.HistoryEntry), args.Error(1)
}

func newServiceUnderTest(repo *MockCompanyRepository, history *MockHistoryRepository) *Service {
	return NewService(repo, history, NewCascade(zap.NewNop()), zap.NewNop())
}

func serviceWithStores(repo *MockCompanyRepository, history *MockHistoryRepository, store *MockReferenceStore) *Service {
	return NewService(repo, history, NewCascade(zap.NewNop(), store), zap.NewNop())
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func storedCompany(name string) *company.Company {
	c, _ := company.New(name, company.StatusActive, company.LicenseTypeStart)
	c.ID = primitive.NewObjectID()
	return c
}

func TestService_Create(t *testing.T) {
	t.Run("creates company and records history", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		repo.On("ExistsByName", mock.Anything, "Acme").Return(false, nil).Once()
		repo.On("Insert", mock.Anything, mock.AnythingOfType("*company.Company")).Return(nil).Once()
		history.On("Record", mock.Anything, mock.MatchedBy(func(e *company.HistoryEntry) bool {
			return e.Action == company.HistoryActionCreated
		})).Return(nil).Once()

		svc := newServiceUnderTest(repo, history)
		c, err := svc.Create(context.Background(), "admin", CreateInput{
			Name:        "Acme",
			Status:      "active",
			LicenseType: "Start",
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme", c.Name)
		assert.True(t, c.IsOperational())
		repo.AssertExpectations(t)
		history.AssertExpectations(t)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		repo.On("ExistsByName", mock.Anything, "Acme").Return(true, nil).Once()

		svc := newServiceUnderTest(repo, history)
		_, err := svc.Create(context.Background(), "admin", CreateInput{Name: "Acme", Status: "active"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("audit failure does not fail the create", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		repo.On("ExistsByName", mock.Anything, "Acme").Return(false, nil).Once()
		repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
		history.On("Record", mock.Anything, mock.Anything).Return(errors.New("history collection down")).Once()

		svc := newServiceUnderTest(repo, history)
		_, err := svc.Create(context.Background(), "admin", CreateInput{Name: "Acme", Status: "active"})

		assert.NoError(t, err)
	})
}

func TestService_Update_Cascades(t *testing.T) {
	t.Run("rename cascades to reference stores", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		store := NewMockReferenceStore("customers")

		c := storedCompany("Acme")
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
		repo.On("Update", mock.Anything, c).Return(nil).Once()
		history.On("Record", mock.Anything, mock.Anything).Return(nil)
		store.On("RenameReferences", mock.Anything, c.ID, "Acme Global").Return(int64(2), nil).Once()

		svc := serviceWithStores(repo, history, store)
		newName := "Acme Global"
		updated, err := svc.Update(context.Background(), "admin", c.ID.Hex(), UpdateInput{Name: &newName})

		require.NoError(t, err)
		assert.Equal(t, "Acme Global", updated.Name)
		store.AssertExpectations(t)
	})

	t.Run("license type change cascades", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		store := NewMockReferenceStore("customers")

		c := storedCompany("Acme")
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
		repo.On("Update", mock.Anything, c).Return(nil).Once()
		history.On("Record", mock.Anything, mock.Anything).Return(nil)
		store.On("PropagateLicenseType", mock.Anything, c.ID, "Hub").Return(int64(3), nil).Once()

		svc := serviceWithStores(repo, history, store)
		hub := "Hub"
		_, err := svc.Update(context.Background(), "admin", c.ID.Hex(), UpdateInput{LicenseType: &hub})

		require.NoError(t, err)
		store.AssertExpectations(t)
		store.AssertNotCalled(t, "RenameReferences", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("status change recomputes isCompanyActive", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		store := NewMockReferenceStore("customers")

		c := storedCompany("Acme")
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
		repo.On("Update", mock.Anything, c).Return(nil).Once()
		history.On("Record", mock.Anything, mock.Anything).Return(nil)
		// suspended + active flag still true is not operational
		store.On("SetCompanyActive", mock.Anything, c.ID, false).Return(int64(2), nil).Once()

		svc := serviceWithStores(repo, history, store)
		suspended := "suspended"
		_, err := svc.Update(context.Background(), "admin", c.ID.Hex(), UpdateInput{Status: &suspended})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("non-denormalized field change skips cascade", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		store := NewMockReferenceStore("customers")

		c := storedCompany("Acme")
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
		repo.On("Update", mock.Anything, c).Return(nil).Once()
		history.On("Record", mock.Anything, mock.Anything).Return(nil)

		svc := serviceWithStores(repo, history, store)
		notes := "renewal call scheduled"
		_, err := svc.Update(context.Background(), "admin", c.ID.Hex(), UpdateInput{Notes: &notes})

		require.NoError(t, err)
		store.AssertNotCalled(t, "RenameReferences", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "PropagateLicenseType", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SetCompanyActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cascade failure does not fail the update", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		store := NewMockReferenceStore("customers")

		c := storedCompany("Acme")
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
		repo.On("Update", mock.Anything, c).Return(nil).Once()
		history.On("Record", mock.Anything, mock.Anything).Return(nil)
		store.On("RenameReferences", mock.Anything, c.ID, "Acme Two").Return(int64(0), errors.New("socket timeout")).Once()

		svc := serviceWithStores(repo, history, store)
		newName := "Acme Two"
		updated, err := svc.Update(context.Background(), "admin", c.ID.Hex(), UpdateInput{Name: &newName})

		require.NoError(t, err)
		assert.Equal(t, "Acme Two", updated.Name)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := newServiceUnderTest(new(MockCompanyRepository), new(MockHistoryRepository))
		_, err := svc.Update(context.Background(), "admin", "not-a-hex-id", UpdateInput{})
		assert.ErrorIs(t, err, shared.ErrInvalidIdentifier)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("strips references before deleting", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		store := NewMockReferenceStore("customers")

		c := storedCompany("Acme")
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
		store.On("RemoveReferences", mock.Anything, c.ID).Return(int64(4), nil).Once()
		repo.On("Delete", mock.Anything, c.ID).Return(nil).Once()
		history.On("Record", mock.Anything, mock.MatchedBy(func(e *company.HistoryEntry) bool {
			return e.Action == company.HistoryActionDeleted
		})).Return(nil).Once()

		svc := serviceWithStores(repo, history, store)
		err := svc.Delete(context.Background(), "admin", c.ID.Hex())

		require.NoError(t, err)
		repo.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("aborts when reference cleanup fails", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		history := new(MockHistoryRepository)
		store := NewMockReferenceStore("customers")

		c := storedCompany("Acme")
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
		store.On("RemoveReferences", mock.Anything, c.ID).Return(int64(0), errors.New("write concern error")).Once()

		svc := serviceWithStores(repo, history, store)
		err := svc.Delete(context.Background(), "admin", c.ID.Hex())

		require.Error(t, err)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_Renovate(t *testing.T) {
	repo := new(MockCompanyRepository)
	history := new(MockHistoryRepository)

	c := storedCompany("Acme")
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Once()
	repo.On("Update", mock.Anything, c).Return(nil).Once()
	history.On("Record", mock.Anything, mock.Anything).Return(nil)

	svc := newServiceUnderTest(repo, history)
	date := mustTime(t, "2026-01-15")
	expiration := mustTime(t, "2027-01-15")
	updated, err := svc.Renovate(context.Background(), "admin", c.ID.Hex(), RenovateInput{Date: date, Expiration: expiration})

	require.NoError(t, err)
	require.Len(t, updated.ContractRenovated, 1)
	require.NotNil(t, updated.ContractExpiration)
	assert.Equal(t, expiration, *updated.ContractExpiration)
}
