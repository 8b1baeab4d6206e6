package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/folio-engine/internal/repository"
	"gorm.io/gorm"
)

func createProjectsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_projects",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ProjectModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_slug ON projects (slug)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ProjectModel{})
		},
	}
}
