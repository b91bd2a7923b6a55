// Package company orchestrates company administration and the synchronous
// cascade that keeps affiliate-embedded references consistent with it.
package company

import (
	"context"
	"time"

	"github.com/licsync/backend/internal/domain/company"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service manages the company aggregate. Every mutation is recorded in the
// audit trail; mutations touching denormalized fields run the cascade
// synchronously after the company write commits.
type Service struct {
	repo    company.Repository
	history company.HistoryRepository
	cascade *Cascade
	logger  *zap.Logger
}

// NewService creates a company service
func NewService(repo company.Repository, history company.HistoryRepository, cascade *Cascade, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		history: history,
		cascade: cascade,
		logger:  logger,
	}
}

// Create creates a new company
func (s *Service) Create(ctx context.Context, user string, input CreateInput) (*company.Company, error) {
	c, err := company.New(input.Name, company.Status(input.Status), company.LicenseType(input.LicenseType))
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A company with this name already exists")
	}

	c.CNPJ = input.CNPJ
	c.LicenseTimeout = input.LicenseTimeout
	c.ContractExpiration = input.ContractExpiration
	c.EmployeeCount = input.EmployeeCount
	c.PortalID = input.PortalID
	c.Notes = input.Notes
	if input.Active != nil {
		c.Active = *input.Active
	}
	if input.Linked != nil {
		c.Linked = *input.Linked
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, c.ID, company.HistoryActionCreated, map[string]interface{}{"name": c.Name}, user)
	return c, nil
}

// Get retrieves a company by its hex id
func (s *Service) Get(ctx context.Context, id string) (*company.Company, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, oid)
}

// List retrieves companies matching the filter
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]company.Company, int64, error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update applies the changed fields, records the audit entry, and cascades
// the denormalized ones (name, license type, status/active/linked) into the
// affiliate collections. The company write commits first; cascade failures
// are logged and do not roll it back, leaving stale references until the next
// write. That partial-failure window is inherent to the storage model.
func (s *Service) Update(ctx context.Context, user, id string, input UpdateInput) (*company.Company, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]interface{})
	renamed := false
	licenseChanged := false
	activityChanged := false

	if input.Name != nil && *input.Name != c.Name {
		changes["name"] = change(c.Name, *input.Name)
		if err := c.Rename(*input.Name); err != nil {
			return nil, err
		}
		renamed = true
	}
	if input.Status != nil && company.Status(*input.Status) != c.Status {
		changes["status"] = change(string(c.Status), *input.Status)
		if err := c.SetStatus(company.Status(*input.Status)); err != nil {
			return nil, err
		}
		activityChanged = true
	}
	if input.Active != nil && *input.Active != c.Active {
		changes["active"] = change(c.Active, *input.Active)
		c.SetActive(*input.Active)
		activityChanged = true
	}
	if input.Linked != nil && *input.Linked != c.Linked {
		changes["linked"] = change(c.Linked, *input.Linked)
		c.SetLinked(*input.Linked)
		activityChanged = true
	}
	if input.LicenseType != nil && company.LicenseType(*input.LicenseType) != c.LicenseType {
		changes["license_type"] = change(string(c.LicenseType), *input.LicenseType)
		if err := c.SetLicenseType(company.LicenseType(*input.LicenseType)); err != nil {
			return nil, err
		}
		licenseChanged = true
	}
	if input.CNPJ != nil {
		c.CNPJ = *input.CNPJ
	}
	if input.LicenseTimeout != nil {
		c.LicenseTimeout = *input.LicenseTimeout
	}
	if input.ContractExpiration != nil {
		c.ContractExpiration = input.ContractExpiration
	}
	if input.EmployeeCount != nil {
		c.EmployeeCount = *input.EmployeeCount
	}
	if input.PortalID != nil {
		c.PortalID = *input.PortalID
	}
	if input.Notes != nil {
		c.Notes = *input.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, c.ID, company.HistoryActionUpdated, changes, user)

	if renamed {
		if err := s.cascade.Rename(ctx, c.ID, c.Name); err != nil {
			s.logger.Error("rename cascade incomplete", zap.String("company_id", id), zap.Error(err))
		}
	}
	if licenseChanged {
		if err := s.cascade.PropagateLicenseType(ctx, c.ID, string(c.LicenseType)); err != nil {
			s.logger.Error("license type cascade incomplete", zap.String("company_id", id), zap.Error(err))
		}
	}
	if activityChanged {
		if err := s.cascade.SetCompanyActive(ctx, c.ID, c.IsOperational()); err != nil {
			s.logger.Error("activity cascade incomplete", zap.String("company_id", id), zap.Error(err))
		}
	}
	if renamed || licenseChanged || activityChanged {
		s.record(ctx, c.ID, company.HistoryActionCascade, changes, user)
	}

	return c, nil
}

// Delete strips every embedded reference to the company from the affiliate
// collections, then removes the company document. A deleted company can have
// no valid future reference, active or historical. When stripping fails the
// deletion is aborted so no reference is orphaned.
func (s *Service) Delete(ctx context.Context, user, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	c, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return err
	}

	if err := s.cascade.RemoveReferences(ctx, oid); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}

	s.record(ctx, oid, company.HistoryActionDeleted, map[string]interface{}{"name": c.Name}, user)
	return nil
}

// Renovate appends a contract renovation record
func (s *Service) Renovate(ctx context.Context, user, id string, input RenovateInput) (*company.Company, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := c.Renovate(input.Date, input.Expiration); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, oid, company.HistoryActionUpdated, map[string]interface{}{
		"contract_renovated": change(len(c.ContractRenovated)-1, len(c.ContractRenovated)),
	}, user)
	return c, nil
}

// ExpireLatestRenovation marks the most recent renovation record expired
func (s *Service) ExpireLatestRenovation(ctx context.Context, user, id string) (*company.Company, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := c.ExpireLatestRenovation(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, oid, company.HistoryActionUpdated, map[string]interface{}{"latest_renovation_expired": true}, user)
	return c, nil
}

// History retrieves the most recent audit entries for a company
func (s *Service) History(ctx context.Context, id string, limit int64) ([]company.HistoryEntry, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.history.FindByCompany(ctx, oid, limit)
}

// record writes an audit entry; audit failures are logged, never surfaced
func (s *Service) record(ctx context.Context, companyID primitive.ObjectID, action company.HistoryAction, changes map[string]interface{}, user string) {
	entry := &company.HistoryEntry{
		CompanyID: companyID,
		Action:    action,
		Changes:   changes,
		User:      user,
		Timestamp: time.Now().UTC(),
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record company history",
			zap.String("company_id", companyID.Hex()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func change(old, new interface{}) map[string]interface{} {
	return map[string]interface{}{"old": old, "new": new}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, shared.ErrInvalidIdentifier
	}
	return oid, nil
}
