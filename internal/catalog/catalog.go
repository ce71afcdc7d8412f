// Package catalog holds the option sets shared by every lead form, filter and report.
package catalog

import (
	"leadbook-backend/internal/lead/domain"
)

// PageSize is the number of leads shown per page.
const PageSize = 25

var (
	DefaultAccounts   = []string{"Arsalanco1", "Arsalanco2", "Arsalanco3"}
	DefaultQueryTypes = []string{"3D Jewelry", "3D Product", "3D Animation", "Rendering", "Other"}
	DefaultBrands     = []string{"IT CORP inc", "Arsalanco", "Other"}
)

// Catalog is the single source of lead option sets.
type Catalog struct {
	Statuses       []domain.Status `json:"statuses"`
	ActiveStatuses []domain.Status `json:"active_statuses"`
	Accounts       []string        `json:"accounts"`
	QueryTypes     []string        `json:"query_types"`
	Brands         []string        `json:"brands"`
	PageSize       int             `json:"page_size"`
}

// New builds a catalog. Empty lists fall back to the defaults.
func New(accounts, queryTypes, brands []string) *Catalog {
	return &Catalog{
		Statuses:       domain.Statuses,
		ActiveStatuses: domain.ActiveStatuses,
		Accounts:       orDefault(accounts, DefaultAccounts),
		QueryTypes:     orDefault(queryTypes, DefaultQueryTypes),
		Brands:         orDefault(brands, DefaultBrands),
		PageSize:       PageSize,
	}
}

// Default returns the catalog with every built-in option set.
func Default() *Catalog {
	return New(nil, nil, nil)
}

func (c *Catalog) DefaultAccount() string   { return c.Accounts[0] }
func (c *Catalog) DefaultQueryType() string { return c.QueryTypes[0] }
func (c *Catalog) DefaultBrand() string     { return c.Brands[0] }

func (c *Catalog) HasAccount(v string) bool   { return contains(c.Accounts, v) }
func (c *Catalog) HasQueryType(v string) bool { return contains(c.QueryTypes, v) }
func (c *Catalog) HasBrand(v string) bool     { return contains(c.Brands, v) }

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return append([]string(nil), fallback...)
	}
	return values
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
