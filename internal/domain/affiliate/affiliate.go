// Package affiliate holds the entities that can reference a company:
// customers, indicadores and parceiros. The three collections are structurally
// identical with respect to company references; the parceiro carries two extra
// classification fields.
package affiliate

import (
	"strings"
	"time"

	"github.com/licsync/backend/internal/domain/affiliation"
	"github.com/licsync/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind identifies an affiliate collection
type Kind string

const (
	KindCustomer  Kind = "customers"
	KindIndicador Kind = "indicadores"
	KindParceiro  Kind = "parceiros"
)

// Parceiro classification values
const (
	TipoAgenteAutorizado = "Agente autorizado"
	TipoSindicato        = "Sindicato"
	TipoPrefeitura       = "Prefeitura"

	ComissaoOuro   = "Ouro"
	ComissaoPrata  = "Prata"
	ComissaoBronze = "Bronze"
)

// Affiliate is a document in one of the affiliate collections. Company holds
// the canonical reference array; raw legacy shapes are normalized at the
// persistence boundary and only the array form is ever written back.
type Affiliate struct {
	ID          primitive.ObjectID        `bson:"_id,omitempty" json:"id"`
	Kind        Kind                      `bson:"-" json:"-"`
	Name        string                    `bson:"name" json:"name"`
	Phone       string                    `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string                    `bson:"email,omitempty" json:"email,omitempty"`
	Company     []affiliation.CompanyRef  `bson:"company" json:"company"`
	LicenseType string                    `bson:"license_type,omitempty" json:"license_type,omitempty"`
	Status      string                    `bson:"status,omitempty" json:"status,omitempty"`
	PortalID    string                    `bson:"portal_id,omitempty" json:"portal_id,omitempty"` // customers only
	Tipo        string                    `bson:"tipo,omitempty" json:"tipo,omitempty"`           // parceiros only
	Comissao    string                    `bson:"comissao,omitempty" json:"comissao,omitempty"`   // parceiros only
	CreatedAt   time.Time                 `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time                 `bson:"updated_at" json:"updated_at"`
}

// New creates an affiliate with required fields validated. Company references
// are attached afterwards by the link path or supplied on create.
func New(kind Kind, name string) (*Affiliate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Affiliate name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Affiliate name cannot exceed 200 characters")
	}

	now := time.Now().UTC()
	return &Affiliate{
		Kind:      kind,
		Name:      name,
		Company:   []affiliation.CompanyRef{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetClassification sets the parceiro tipo/comissao pair, validating both
func (a *Affiliate) SetClassification(tipo, comissao string) error {
	if tipo != "" {
		switch tipo {
		case TipoAgenteAutorizado, TipoSindicato, TipoPrefeitura:
		default:
			return shared.NewDomainError("INVALID_TIPO", "Tipo must be 'Agente autorizado', 'Sindicato' or 'Prefeitura'")
		}
	}
	if comissao != "" {
		switch comissao {
		case ComissaoOuro, ComissaoPrata, ComissaoBronze:
		default:
			return shared.NewDomainError("INVALID_COMISSAO", "Comissao must be 'Ouro', 'Prata' or 'Bronze'")
		}
	}
	a.Tipo = tipo
	a.Comissao = comissao
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// ActiveCompany returns the affiliate's current company reference, if any
func (a *Affiliate) ActiveCompany() (affiliation.CompanyRef, bool) {
	return affiliation.ActiveRef(a.Company)
}
