// Package domain defines the persistence models for the lead marketplace:
// institutes, tenants, global leads, per-tenant lead access, claims, usage
// counters, and audit entries. These types are mapped with GORM and form the
// core data layer of the application.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Plan identifiers. The plan bounds how many seats a tenant has, which in
// turn bounds how many leads it may claim per plan period.
const (
	PlanSolo = "SOLO"
	PlanTeam = "TEAM"
)

// Tenant status values. Only ACTIVE tenants can receive or claim leads.
const (
	TenantStatusActive    = "ACTIVE"
	TenantStatusSuspended = "SUSPENDED"
)

// Claim modes. Exclusive claiming locks every other tenant out of a lead;
// shared claiming lets any number of tenants claim it independently.
const (
	ClaimModeExclusive = "FIRST_CLAIM_EXCLUSIVE"
	ClaimModeShared    = "MULTI_TENANT_SHARED"
)

// Visibility states of a TenantLeadAccess row.
const (
	AccessAvailable = "AVAILABLE"
	AccessLocked    = "LOCKED"
	AccessClaimed   = "CLAIMED"
)

// Audit actor types.
const (
	ActorUser   = "USER"
	ActorSystem = "SYSTEM"
)

// ActionLeadClaimed is the audit action recorded for each successful claim.
const ActionLeadClaimed = "LEAD_CLAIMED"

// PlanUserLimit maps a plan identifier to its seat count. Unknown plans fall
// back to a single seat.
func PlanUserLimit(plan string) int {
	switch plan {
	case PlanTeam:
		return 5
	default:
		return 1
	}
}

// StringList stores a set of strings as a JSON array in a single TEXT column.
// It backs the tenant targeting fields (cities, categories) where an empty
// list means "unrestricted".
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("StringList: unsupported source type %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// JSONMap stores loosely structured metadata as a JSON object in a TEXT
// column. Used for audit log payloads.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("JSONMap: unsupported source type")
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, (*map[string]any)(m))
}

// Institute is the CRM identity a tenant projection derives from. Institutes
// are owned by the upstream CRM; this core only reads id and name.
type Institute struct {
	ID        string         `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"    gorm:"index"`
}

// TableName returns the database table name for Institute.
func (Institute) TableName() string { return "institutes" }

// GlobalLead is a prospect sourced before any tenant assignment. Contact
// fields are presence-weighted by the scorer; their content is irrelevant to
// scoring. City and category drive tenant targeting; an empty string means
// the field is not set.
type GlobalLead struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	Phone     string         `json:"phone"    gorm:"type:varchar(32)"`
	Website   string         `json:"website"  gorm:"type:varchar(255)"`
	Email     string         `json:"email"    gorm:"type:varchar(255)"`
	Address   string         `json:"address"  gorm:"type:text"`
	Verified  bool           `json:"verified" gorm:"not null;default:false"`
	City      string         `json:"city"     gorm:"type:varchar(128);index"`
	Category  string         `json:"category" gorm:"type:varchar(128);index"`
	Score     int            `json:"score"    gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`
}

// TableName returns the database table name for GlobalLead.
func (GlobalLead) TableName() string { return "global_leads" }

// Tenant is a coaching institute's lead-allocation profile. It is a derived
// projection of an Institute, created lazily on first marketplace access.
// Name mirrors the Institute's current name and is never independently owned.
//
// Targeting fields:
//   - TargetCities / TargetCategories: empty list = unrestricted.
//   - MinimumScore: leads scoring below this floor are never distributed here.
//   - ClaimMode: the default lock behavior applied when this tenant claims.
type Tenant struct {
	ID               string         `json:"id"           gorm:"type:char(36);primaryKey"`
	InstituteID      string         `json:"institute_id" gorm:"type:char(36);not null;uniqueIndex:ux_tenant_institute"`
	Name             string         `json:"name"         gorm:"type:varchar(255);not null"`
	Plan             string         `json:"plan"         gorm:"type:varchar(16);not null;default:'SOLO';check:plan IN ('SOLO','TEAM')"`
	Status           string         `json:"status"       gorm:"type:varchar(16);not null;default:'ACTIVE';check:status IN ('ACTIVE','SUSPENDED')"`
	ClaimMode        string         `json:"claim_mode"   gorm:"type:varchar(32);not null;default:'FIRST_CLAIM_EXCLUSIVE';check:claim_mode IN ('FIRST_CLAIM_EXCLUSIVE','MULTI_TENANT_SHARED')"`
	TargetCities     StringList     `json:"target_cities"     gorm:"type:text"`
	TargetCategories StringList     `json:"target_categories" gorm:"type:text"`
	MinimumScore     int            `json:"minimum_score"     gorm:"not null;default:0"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`

	// Institute is the owning CRM record. Tenants are cascade-deleted if
	// their institute is removed.
	Institute Institute `json:"-" gorm:"foreignKey:InstituteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Tenant.
func (Tenant) TableName() string { return "tenants" }

// TenantLeadAccess is the join entity recording one tenant's visibility and
// ownership state over one global lead. Unique on (tenant_id, lead_id).
//
// The primary key is an autoincrement integer rather than a UUID: the listing
// endpoint pages by descending id, and the id doubles as the opaque cursor, so
// it must be monotonic under concurrent inserts.
//
// State machine: AVAILABLE → CLAIMED (by this tenant) or AVAILABLE → LOCKED
// (by a sibling tenant's exclusive claim). LOCKED and CLAIMED are terminal.
// Only the claim engine's transaction may move a row out of AVAILABLE;
// distribution may only create rows or reopen them to AVAILABLE.
type TenantLeadAccess struct {
	ID               uint64     `json:"id"                gorm:"primaryKey;autoIncrement"`
	TenantID         string     `json:"tenant_id"         gorm:"type:char(36);not null;uniqueIndex:ux_access_tenant_lead,priority:1"`
	LeadID           string     `json:"lead_id"           gorm:"type:char(36);not null;uniqueIndex:ux_access_tenant_lead,priority:2;index:idx_access_lead"`
	VisibilityStatus string     `json:"visibility_status" gorm:"type:varchar(16);not null;default:'AVAILABLE';check:visibility_status IN ('AVAILABLE','LOCKED','CLAIMED')"`
	FitScore         int        `json:"fit_score"         gorm:"not null;default:0"`
	ClaimedAt        *time.Time `json:"claimed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Lead is the distributed prospect, embedded in listing responses.
	Lead GlobalLead `json:"lead" gorm:"foreignKey:LeadID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	// Tenant is the owning allocation profile.
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TenantLeadAccess.
func (TenantLeadAccess) TableName() string { return "tenant_lead_access" }

// LeadClaim is the immutable audit record of a successful claim. ClaimMode is
// the mode in effect at claim time, not the tenant's current setting. Rows are
// never updated or deleted.
type LeadClaim struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	TenantID  string    `json:"tenant_id"  gorm:"type:char(36);not null;index"`
	LeadID    string    `json:"lead_id"    gorm:"type:char(36);not null;index"`
	AccessID  uint64    `json:"access_id"  gorm:"not null"`
	ClaimMode string    `json:"claim_mode" gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for LeadClaim.
func (LeadClaim) TableName() string { return "lead_claims" }

// TenantUsage is a monthly claim counter keyed by (tenant_id, month) with
// month in "YYYY-MM" UTC form. It is upserted by the claim engine and read
// back for reporting; the claim ceiling check uses a live CLAIMED count
// instead of this counter.
type TenantUsage struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	TenantID     string    `json:"tenant_id"     gorm:"type:char(36);not null;uniqueIndex:ux_usage_tenant_month,priority:1"`
	Month        string    `json:"month"         gorm:"type:char(7);not null;uniqueIndex:ux_usage_tenant_month,priority:2"`
	LeadsClaimed int       `json:"leads_claimed" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for TenantUsage.
func (TenantUsage) TableName() string { return "tenant_usage" }

// AuditLog is the generic append-only action trail. The claim engine writes
// one entry per successful claim; other subsystems may append their own
// actions. Entries are never updated or deleted.
type AuditLog struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	TenantID   string    `json:"tenant_id"   gorm:"type:char(36);not null;index"`
	ActorType  string    `json:"actor_type"  gorm:"type:varchar(16);not null"`
	Action     string    `json:"action"      gorm:"type:varchar(64);not null;index"`
	ResourceID string    `json:"resource_id" gorm:"type:char(36);not null"`
	Metadata   JSONMap   `json:"metadata"    gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for AuditLog.
func (AuditLog) TableName() string { return "audit_logs" }
