package models

import "time"

// DailyPlan: Bir günün yayınlanan menüsü. Date kolonu unique - bir güne en
// fazla bir plan olabilir, "bugünün menüsü" her zaman tek satırdır.
type DailyPlan struct {
	ID        uint      `gorm:"primaryKey"`
	Date      time.Time `gorm:"type:date;uniqueIndex;not null"`
	SoupID    *uint     // günün çorbası (opsiyonel)
	Soup      *MenuItem `gorm:"foreignKey:SoupID"`
	Notes     string    `gorm:"size:500"` // serbest not (ör: "bayram nedeniyle erken kapanış")
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []DailyPlanItem `gorm:"foreignKey:DailyPlanID;constraint:OnDelete:CASCADE"`
}

// DailyPlanItem: Günün menüsündeki bir yemek. QuantityAvailable nil ise
// sınırsız satılır. SoldCount sadece ledger paketi üzerinden artar.
type DailyPlanItem struct {
	ID                uint `gorm:"primaryKey"`
	DailyPlanID       uint `gorm:"uniqueIndex:idx_plan_menu_item;not null"`
	DailyPlan         DailyPlan
	MenuItemID        uint `gorm:"uniqueIndex:idx_plan_menu_item;not null"` // aynı yemek bir güne bir kez
	MenuItem          MenuItem
	QuantityAvailable *int `gorm:"column:quantity_available"` // nil = sınırsız
	SoldCount         int  `gorm:"not null;default:0"`
	SoldOut           bool `gorm:"not null;default:false"` // türetilmiş: kapasite dolu mu
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Remaining: Kalan adet. Sınırsız ürün için nil döner.
func (i *DailyPlanItem) Remaining() *int {
	if i.QuantityAvailable == nil {
		return nil
	}
	r := *i.QuantityAvailable - i.SoldCount
	if r < 0 {
		r = 0
	}
	return &r
}

// IsSoldOut: SoldOut kolonunun saf hali (kapasite varsa ve dolmuşsa true).
func IsSoldOut(quantityAvailable *int, soldCount int) bool {
	return quantityAvailable != nil && soldCount >= *quantityAvailable
}
