package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func addSubscribersTagsIndex() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_add_subscribers_tags_index",
		Migrate: func(tx *gorm.DB) error {
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_subscribers_tags ON subscribers USING GIN (tags)`,
				`CREATE INDEX IF NOT EXISTS idx_subscribers_created_at ON subscribers (created_at, id)`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return execAll(tx, []string{
				`DROP INDEX IF EXISTS idx_subscribers_created_at`,
				`DROP INDEX IF EXISTS idx_subscribers_tags`,
			})
		},
	}
}
