package delivery

import "gorm.io/gorm"

func RunSchemaMigration(db *gorm.DB) error {
	return db.AutoMigrate(&Zone{})
}
