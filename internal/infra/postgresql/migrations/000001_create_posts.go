package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/folio-engine/internal/repository"
	"gorm.io/gorm"
)

// The unique slug index is what finally rejects two concurrent creates that
// resolved the same slug.
func createPostsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_posts",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.PostModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_slug ON posts (slug)`,
				`CREATE INDEX IF NOT EXISTS idx_posts_published ON posts (published, published_at DESC)`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.PostModel{})
		},
	}
}
