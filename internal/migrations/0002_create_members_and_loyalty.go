package migrations

import (
	"gorm.io/gorm"

	"github.com/project-sy789/coffeeorder-sub000/internal/models"
)

type CreateMembersAndLoyalty struct{}

func (m CreateMembersAndLoyalty) Version() string { return "0002" }

func (m CreateMembersAndLoyalty) Name() string { return "create_members_promotions_and_points" }

func (m CreateMembersAndLoyalty) Up(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Member{},
		&models.Promotion{},
		&models.PointSetting{},
		&models.PointRedemptionRule{},
	)
}

func (m CreateMembersAndLoyalty) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&models.PointRedemptionRule{},
		&models.PointSetting{},
		&models.Promotion{},
		&models.Member{},
	)
}

func init() {
	register(CreateMembersAndLoyalty{})
}
