package promo

import "gorm.io/gorm"

func RunSchemaMigration(db *gorm.DB) error {
	return db.AutoMigrate(&PromoCode{})
}
