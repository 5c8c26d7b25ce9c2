package database

import (
	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.OrganizationInvitation{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Meeting{},
		&models.Notification{},
		&models.AuditLog{},
		&models.CacheEntry{},
	)
	if err != nil {
		return err
	}
	return createPendingProposalIndexes(db)
}

// createPendingProposalIndexes adds partial unique indexes over pending
// invitation rows, so the database itself rejects a second open proposal for
// the same owner/member pair or owner/email pair. MySQL has no partial
// indexes; there the row lock taken during proposal creation serializes the
// check instead.
func createPendingProposalIndexes(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite", "postgres":
	default:
		return nil
	}

	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_pending_proposal_pair
			ON organization_invitations (business_owner_id, member_id)
			WHERE status = 'pending' AND member_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_pending_external_email
			ON organization_invitations (business_owner_id, invited_email)
			WHERE status = 'pending' AND invited_email IS NOT NULL`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedData populates the system role catalogue.
func SeedData(db *gorm.DB) error {
	roles := []models.Role{
		{
			BaseModel:   models.BaseModel{ID: models.RoleBusinessOwner},
			Name:        "Business Owner",
			Description: "Owns an organization, invites members and manages their roles",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: models.RoleProjectManager},
			Name:        "Project Manager",
			Description: "Manages projects within the organization",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: models.RoleMember},
			Name:        "Member",
			Description: "Standard organization member",
			IsSystem:    true,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: role.ID}}).Attrs(role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	return nil
}
