package models

import "time"

// MenuCategory: Menü kategorisi (çorbalar, ana yemekler, içecekler vs.)
type MenuCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	NameEn    string `gorm:"size:100"`
	SortOrder int    `gorm:"not null;default:0"` // menüde gösterim sırası
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuItem: Sabit menüdeki satılabilir ürün
type MenuItem struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:150;not null"`
	NameEn      string  `gorm:"size:150"` // İngilizce menü için
	Price       float64 `gorm:"not null"` // TL, 2 ondalık
	IsAvailable bool    `gorm:"not null;default:true"`
	CategoryID  *uint   `gorm:"index"`
	Category    *MenuCategory
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
