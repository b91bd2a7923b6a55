package affiliate

import (
	"context"
	"errors"
	"testing"

	"github.com/licsync/backend/internal/domain/affiliate"
	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/domain/company"
	"github.com/licsync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockAffiliateRepository struct {
	mock.Mock
	kind affiliate.Kind
}

func NewMockAffiliateRepository(kind affiliate.Kind) *MockAffiliateRepository {
	return &MockAffiliateRepository{kind: kind}
}

func (m *MockAffiliateRepository) Kind() affiliate.Kind {
	return m.kind
}

func (m *MockAffiliateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

func (m *MockAffiliateRepository) FindByPhone(ctx context.Context, phone string) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

func (m *MockAffiliateRepository) FindByEmail(ctx context.Context, email string) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

func (m *MockAffiliateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]affiliate.Affiliate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]affiliate.Affiliate), args.Error(1)
}

func (m *MockAffiliateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAffiliateRepository) Insert(ctx context.Context, a *affiliate.Affiliate) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAffiliateRepository) Update(ctx context.Context, a *affiliate.Affiliate) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAffiliateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAffiliateRepository) LoadReferences(ctx context.Context, id primitive.ObjectID) ([]affiliation.CompanyRef, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]affiliation.CompanyRef), args.Error(1)
}

func (m *MockAffiliateRepository) SaveReferences(ctx context.Context, id primitive.ObjectID, refs []affiliation.CompanyRef, licenseType string) error {
	args := m.Called(ctx, id, refs, licenseType)
	return args.Error(0)
}

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

func operationalCompany(name string, licenseType company.LicenseType) *company.Company {
	c, _ := company.New(name, company.StatusActive, licenseType)
	c.ID = primitive.NewObjectID()
	return c
}

func newCustomerService(repo *MockAffiliateRepository, companies *MockCompanyRepository) *Service {
	return NewService(repo, company.NewResolver(companies), zap.NewNop())
}

func TestService_Create(t *testing.T) {
	t.Run("creates with resolved companies, position 0 active", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		acme := operationalCompany("Acme", company.LicenseTypeStart)
		beta := operationalCompany("Beta", company.LicenseTypeHub)
		companies.On("FindByName", mock.Anything, "Acme").Return(acme, nil).Once()
		companies.On("FindByName", mock.Anything, "Beta").Return(beta, nil).Once()
		repo.On("Insert", mock.Anything, mock.AnythingOfType("*affiliate.Affiliate")).Return(nil).Once()

		svc := newCustomerService(repo, companies)
		created, err := svc.Create(context.Background(), CreateInput{
			Name:         "Alice",
			Phone:        "5511999990001",
			CompanyNames: []string{"Acme", "Beta"},
		})

		require.NoError(t, err)
		require.Len(t, created.Company, 2)
		assert.True(t, created.Company[0].IsActive)
		assert.Equal(t, "Acme", created.Company[0].Name)
		assert.False(t, created.Company[1].IsActive)
		assert.Equal(t, 1, affiliation.ActiveCount(created.Company))
		assert.Equal(t, "Start", created.LicenseType)
	})

	t.Run("unresolvable company fails the whole create", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)
		companies.On("FindByName", mock.Anything, "Ghost Corp").Return(nil, shared.ErrNotFound).Once()

		svc := newCustomerService(repo, companies)
		_, err := svc.Create(context.Background(), CreateInput{
			Name:         "Alice",
			CompanyNames: []string{"Ghost Corp"},
		})

		assert.ErrorIs(t, err, shared.ErrCompanyNotEligible)
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("no companies leaves empty reference array", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)
		repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

		svc := newCustomerService(repo, companies)
		created, err := svc.Create(context.Background(), CreateInput{Name: "Bob"})

		require.NoError(t, err)
		assert.NotNil(t, created.Company)
		assert.Empty(t, created.Company)
	})
}

func TestService_Link(t *testing.T) {
	t.Run("links Beta after Acme, Acme kept as history", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		acme := operationalCompany("Acme", company.LicenseTypeStart)
		beta := operationalCompany("Beta", company.LicenseTypeHub)
		affiliateID := primitive.NewObjectID()

		current := []affiliation.CompanyRef{
			{ID: acme.ID, Name: "Acme", IsActive: true, IsCompanyActive: true, LicenseType: "Start"},
		}

		companies.On("FindByName", mock.Anything, "Beta").Return(beta, nil).Once()
		repo.On("LoadReferences", mock.Anything, affiliateID).Return(current, nil).Once()

		var saved []affiliation.CompanyRef
		repo.On("SaveReferences", mock.Anything, affiliateID, mock.Anything, "Hub").
			Run(func(args mock.Arguments) {
				saved = args.Get(2).([]affiliation.CompanyRef)
			}).
			Return(nil).Once()

		svc := newCustomerService(repo, companies)
		refs, err := svc.Link(context.Background(), affiliateID.Hex(), "Beta")

		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, 1, affiliation.ActiveCount(refs))

		active, ok := affiliation.ActiveRef(saved)
		require.True(t, ok)
		assert.Equal(t, "Beta", active.Name)
		assert.Equal(t, beta.ID, active.ID)
		// Acme stays in the array as history.
		assert.Equal(t, "Acme", saved[0].Name)
		assert.False(t, saved[0].IsActive)
	})

	t.Run("linking the active company again is rejected", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		acme := operationalCompany("Acme", company.LicenseTypeStart)
		affiliateID := primitive.NewObjectID()
		current := []affiliation.CompanyRef{
			{ID: acme.ID, Name: "Acme", IsActive: true, IsCompanyActive: true, LicenseType: "Start"},
		}

		companies.On("FindByName", mock.Anything, "Acme").Return(acme, nil).Once()
		repo.On("LoadReferences", mock.Anything, affiliateID).Return(current, nil).Once()

		svc := newCustomerService(repo, companies)
		_, err := svc.Link(context.Background(), affiliateID.Hex(), "Acme")

		assert.ErrorIs(t, err, shared.ErrAlreadyLinked)
		repo.AssertNotCalled(t, "SaveReferences", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("relinking a historical company reactivates in place", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		acme := operationalCompany("Acme", company.LicenseTypeStart)
		beta := operationalCompany("Beta", company.LicenseTypeHub)
		affiliateID := primitive.NewObjectID()
		current := []affiliation.CompanyRef{
			{ID: acme.ID, Name: "Acme Old Name", IsActive: false, IsCompanyActive: true, LicenseType: "Start"},
			{ID: beta.ID, Name: "Beta", IsActive: true, IsCompanyActive: true, LicenseType: "Hub"},
		}

		companies.On("FindByName", mock.Anything, "Acme").Return(acme, nil).Once()
		repo.On("LoadReferences", mock.Anything, affiliateID).Return(current, nil).Once()

		var saved []affiliation.CompanyRef
		repo.On("SaveReferences", mock.Anything, affiliateID, mock.Anything, "Start").
			Run(func(args mock.Arguments) {
				saved = args.Get(2).([]affiliation.CompanyRef)
			}).
			Return(nil).Once()

		svc := newCustomerService(repo, companies)
		refs, err := svc.Link(context.Background(), affiliateID.Hex(), "Acme")

		require.NoError(t, err)
		// Reactivation, not duplication: array length unchanged.
		assert.Len(t, refs, 2)
		assert.Equal(t, 1, affiliation.ActiveCount(saved))
		assert.True(t, saved[0].IsActive)
		// Cached name refreshed from the resolved company.
		assert.Equal(t, "Acme", saved[0].Name)
		assert.False(t, saved[1].IsActive)
	})

	t.Run("suspended company is not eligible", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		suspended, _ := company.New("Dormant", company.StatusSuspended, company.LicenseTypeStart)
		suspended.ID = primitive.NewObjectID()
		companies.On("FindByName", mock.Anything, "Dormant").Return(suspended, nil).Once()

		svc := newCustomerService(repo, companies)
		_, err := svc.Link(context.Background(), primitive.NewObjectID().Hex(), "Dormant")

		assert.ErrorIs(t, err, shared.ErrCompanyNotEligible)
	})

	t.Run("invalid affiliate id", func(t *testing.T) {
		svc := newCustomerService(NewMockAffiliateRepository(affiliate.KindCustomer), new(MockCompanyRepository))
		_, err := svc.Link(context.Background(), "nope", "Acme")
		assert.ErrorIs(t, err, shared.ErrInvalidIdentifier)
	})

	t.Run("storage error passes through unchanged", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)
		storageErr := errors.New("server selection timeout")
		companies.On("FindByName", mock.Anything, "Acme").Return(nil, storageErr).Once()

		svc := newCustomerService(repo, companies)
		_, err := svc.Link(context.Background(), primitive.NewObjectID().Hex(), "Acme")

		assert.ErrorIs(t, err, storageErr)
	})
}

func TestService_Unlink(t *testing.T) {
	t.Run("removes active reference, keeps history", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		affiliateID := primitive.NewObjectID()
		acmeID := primitive.NewObjectID()
		betaID := primitive.NewObjectID()
		current := []affiliation.CompanyRef{
			{ID: acmeID, Name: "Acme", IsActive: false},
			{ID: betaID, Name: "Beta", IsActive: true},
		}

		repo.On("LoadReferences", mock.Anything, affiliateID).Return(current, nil).Once()

		var saved []affiliation.CompanyRef
		repo.On("SaveReferences", mock.Anything, affiliateID, mock.Anything, "").
			Run(func(args mock.Arguments) {
				saved = args.Get(2).([]affiliation.CompanyRef)
			}).
			Return(nil).Once()

		svc := newCustomerService(repo, companies)
		refs, err := svc.Unlink(context.Background(), affiliateID.Hex())

		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "Acme", saved[0].Name)
		assert.Equal(t, 0, affiliation.ActiveCount(saved))
	})

	t.Run("nothing to unlink on empty array", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		affiliateID := primitive.NewObjectID()
		repo.On("LoadReferences", mock.Anything, affiliateID).Return([]affiliation.CompanyRef{}, nil).Once()

		svc := newCustomerService(repo, new(MockCompanyRepository))
		_, err := svc.Unlink(context.Background(), affiliateID.Hex())

		assert.ErrorIs(t, err, shared.ErrNothingToUnlink)
		repo.AssertNotCalled(t, "SaveReferences", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("supplied company list replaces the reference array", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		beta := operationalCompany("Beta", company.LicenseTypeHub)
		companies.On("FindByName", mock.Anything, "Beta").Return(beta, nil).Once()

		existing, _ := affiliate.New(affiliate.KindCustomer, "Alice")
		existing.ID = primitive.NewObjectID()
		existing.Company = []affiliation.CompanyRef{
			{ID: primitive.NewObjectID(), Name: "Acme", IsActive: true, LicenseType: "Start"},
		}
		existing.LicenseType = "Start"

		repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil).Once()
		repo.On("Update", mock.Anything, existing).Return(nil).Once()

		svc := newCustomerService(repo, companies)
		names := []string{"Beta"}
		updated, err := svc.Update(context.Background(), existing.ID.Hex(), UpdateInput{CompanyNames: &names})

		require.NoError(t, err)
		require.Len(t, updated.Company, 1)
		assert.Equal(t, "Beta", updated.Company[0].Name)
		assert.True(t, updated.Company[0].IsActive)
		assert.Equal(t, "Hub", updated.LicenseType)
	})

	t.Run("nil company list leaves references untouched", func(t *testing.T) {
		repo := NewMockAffiliateRepository(affiliate.KindCustomer)
		companies := new(MockCompanyRepository)

		existing, _ := affiliate.New(affiliate.KindCustomer, "Alice")
		existing.ID = primitive.NewObjectID()
		existing.Company = []affiliation.CompanyRef{
			{ID: primitive.NewObjectID(), Name: "Acme", IsActive: true},
		}

		repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil).Once()
		repo.On("Update", mock.Anything, existing).Return(nil).Once()

		svc := newCustomerService(repo, companies)
		phone := "5511999990009"
		updated, err := svc.Update(context.Background(), existing.ID.Hex(), UpdateInput{Phone: &phone})

		require.NoError(t, err)
		assert.Equal(t, "5511999990009", updated.Phone)
		require.Len(t, updated.Company, 1)
		assert.Equal(t, "Acme", updated.Company[0].Name)
		companies.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
	})
}

func TestService_ParceiroClassification(t *testing.T) {
	repo := NewMockAffiliateRepository(affiliate.KindParceiro)
	companies := new(MockCompanyRepository)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newCustomerService(repo, companies)
	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "Partner One",
		Tipo:     affiliate.TipoAgenteAutorizado,
		Comissao: affiliate.ComissaoOuro,
	})

	require.NoError(t, err)
	assert.Equal(t, affiliate.TipoAgenteAutorizado, created.Tipo)

	_, err = svc.Create(context.Background(), CreateInput{
		Name: "Partner Two",
		Tipo: "invalid tier",
	})
	assert.Error(t, err)
}
