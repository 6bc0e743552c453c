package ledger

import (
	"errors"
	"fmt"

	"siparis-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrItemNotFound     = errors.New("günün menüsünde böyle bir yemek yok")
	ErrCapacityExceeded = errors.New("yemek istenen adette kalmadı")
)

type ReserveResult struct {
	NewSoldCount int
	SoldOut      bool
}

// ReserveAndCommit: SoldCount'u artıran TEK yazma yolu. Artış ve sold_out
// hesabı tek bir koşullu UPDATE ile yapılır:
//
//	UPDATE daily_plan_items
//	SET sold_count = sold_count + N,
//	    sold_out   = (quantity_available IS NOT NULL AND sold_count + N >= quantity_available)
//	WHERE id = ? AND (quantity_available IS NULL OR sold_count + N <= quantity_available)
//
// Kapasite kontrolünü uygulama tarafında okuyup sonra yazmak eşzamanlı
// siparişlerde fazla satışa yol açar; serileştirme noktası veritabanının
// satır bazlı atomik update'idir. Guard tutmazsa (0 satır etkilenirse) son
// adetleri başka bir sipariş kapmış demektir - çağıran tekrar denemez,
// müşteriye "kalmadı" der.
func ReserveAndCommit(db *gorm.DB, dailyPlanItemID uint, quantity int) (*ReserveResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("adet pozitif olmalı: %d", quantity)
	}

	// RETURNING ile yeni değerler update'in kendisinden alınır; ayrı bir
	// re-read eşzamanlı bir sonraki siparişin sayaçlarını gösterebilirdi.
	var updated models.DailyPlanItem
	res := db.Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "sold_count"}, {Name: "sold_out"}}}).
		Where("id = ? AND (quantity_available IS NULL OR sold_count + ? <= quantity_available)", dailyPlanItemID, quantity).
		Updates(map[string]interface{}{
			"sold_count": gorm.Expr("sold_count + ?", quantity),
			"sold_out":   gorm.Expr("(quantity_available IS NOT NULL AND sold_count + ? >= quantity_available)", quantity),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("stok düşümü yapılamadı: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		// Satır yok mu, kapasite mi doldu? Ayrımı için tekrar oku.
		var item models.DailyPlanItem
		if err := db.First(&item, "id = ?", dailyPlanItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, fmt.Errorf("yemek okunamadı: %w", err)
		}
		return nil, ErrCapacityExceeded
	}

	return &ReserveResult{
		NewSoldCount: updated.SoldCount,
		SoldOut:      updated.SoldOut,
	}, nil
}
