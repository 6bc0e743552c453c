package models

import "time"

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online" // online ödeme (%4 komisyon)
	PaymentPickup PaymentMethod = "pickup" // gel-al, kasada ödeme
)

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order: Müşteri siparişi. Tutarlar oluşturma anında hesaplanır ve bir daha
// değişmez; menü fiyatı sonradan güncellense bile geçmiş siparişler etkilenmez.
type Order struct {
	ID            uint          `gorm:"primaryKey"`
	OrderNo       string        `gorm:"size:20;uniqueIndex;not null"` // müşteriye gösterilen sipariş numarası
	CustomerName  string        `gorm:"size:100;not null"`
	CustomerPhone string        `gorm:"size:30;not null"`
	CustomerEmail string        `gorm:"size:100"`
	PickupTime    time.Time     `gorm:"not null"`
	Note          string        `gorm:"size:500"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null"`
	Subtotal      float64       `gorm:"not null"`
	Surcharge     float64       `gorm:"not null"` // online ödeme komisyonu
	TotalAmount   float64       `gorm:"not null"`
	Status        OrderStatus   `gorm:"size:20;not null;default:'new'"`
	StockIssue    bool          `gorm:"not null;default:false"` // stok düşülemeyen satır var, personel müşteriyle mutabakat yapmalı
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderLine: Sipariş satırı. İsim ve birim fiyat sipariş anında kopyalanır
// (snapshot) - canlı MenuItem kaydına bağlı değildir.
type OrderLine struct {
	ID              uint    `gorm:"primaryKey"`
	OrderID         uint    `gorm:"index;not null"`
	MenuItemID      *uint   // sabit menü ürünü referansı (opsiyonel)
	DailyPlanItemID *uint   `gorm:"index"` // günün menüsünden sipariş edildiyse stok düşümü için
	ItemName        string  `gorm:"size:150;not null"`
	UnitPrice       float64 `gorm:"not null"`
	Quantity        int     `gorm:"not null"`
	LineTotal       float64 `gorm:"not null"`               // UnitPrice * Quantity
	StockFailed     bool    `gorm:"not null;default:false"` // stok düşümü başarısız oldu (tükenmişti)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
