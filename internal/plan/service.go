package plan

import (
	"errors"
	"fmt"
	"time"

	"siparis-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateDish      = errors.New("aynı yemek günün menüsüne iki kez eklenemez")
	ErrSourcePlanNotFound = errors.New("kopyalanacak tarihte plan bulunamadı")
	ErrPlanNotFound       = errors.New("plan bulunamadı")
)

// DishSelection: Plan düzenleme girdisi - bir yemek ve opsiyonel kapasitesi.
type DishSelection struct {
	MenuItemID        uint
	QuantityAvailable *int // nil = sınırsız
}

// DateOnly: Saat bilgisini atar, plan tarihleri gün hassasiyetinde tutulur.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UpsertPlan: Tarihe göre atomik upsert. Date kolonundaki unique index ile
// ON CONFLICT DO UPDATE - select + insert ikilisi yarış yaratır, burada tek
// statement kullanılır. Aynı tarihe ikinci satır hiçbir koşulda oluşmaz.
func UpsertPlan(db *gorm.DB, date time.Time, soupID *uint, notes string) (*models.DailyPlan, error) {
	p := models.DailyPlan{
		Date:   DateOnly(date),
		SoupID: soupID,
		Notes:  notes,
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"soup_id", "notes", "updated_at"}),
	}).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("plan kaydedilemedi: %w", err)
	}

	// Conflict-update durumunda ID struct'a yazılmayabilir, tarihle geri oku
	var saved models.DailyPlan
	if err := db.Where("date = ?", DateOnly(date)).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("plan okunamadı: %w", err)
	}
	return &saved, nil
}

// ReplaceDishes: Planın yemek listesini komple değiştirir (delete + insert,
// tek transaction). Kısmi düzenleme yok: çağıran mevcut listeyi okur, bellekte
// değiştirir, komple gönderir. Eski ve yeni listede ortak olan yemeklerin
// SoldCount değeri korunur - gün ortasında yapılan düzenleme o günün satış
// sayacını silmemeli.
//
// Aynı plan için eşzamanlı iki ReplaceDishes çağrısı güvenli değildir;
// düzenleme ekranı kaydetme sırasında ikinci kaydı engellemelidir.
func ReplaceDishes(db *gorm.DB, planID uint, selections []DishSelection) error {
	return replaceDishes(db, planID, selections, true)
}

func replaceDishes(db *gorm.DB, planID uint, selections []DishSelection, preserveSold bool) error {
	seen := make(map[uint]bool, len(selections))
	for _, sel := range selections {
		if seen[sel.MenuItemID] {
			return ErrDuplicateDish
		}
		seen[sel.MenuItemID] = true
	}

	var p models.DailyPlan
	if err := db.First(&p, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("plan okunamadı: %w", err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("işlem başlatılamadı: %w", tx.Error)
	}

	// Korunacak satış sayaçları (MenuItemID -> SoldCount). Okuma transaction
	// içinde ve satır kilidiyle yapılır: dışarıda okunsaydı, okuma ile silme
	// arasında işlenen bir stok düşümü eski sayaçla geri yazılırdı. Postgres
	// FOR UPDATE ile eşzamanlı stok düşümünü commit'imize kadar bekletir.
	soldByMenuItem := make(map[uint]int)
	if preserveSold {
		q := tx.Where("daily_plan_id = ?", planID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var existing []models.DailyPlanItem
		if err := q.Find(&existing).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("mevcut yemekler okunamadı: %w", err)
		}
		for _, item := range existing {
			soldByMenuItem[item.MenuItemID] = item.SoldCount
		}
	}

	if err := tx.Where("daily_plan_id = ?", planID).Delete(&models.DailyPlanItem{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("eski yemekler silinemedi: %w", err)
	}

	for _, sel := range selections {
		sold := soldByMenuItem[sel.MenuItemID]
		capacity := sel.QuantityAvailable
		if capacity != nil && *capacity < sold {
			// Kapasite satılmış adedin altına düşürülemez
			c := sold
			capacity = &c
		}

		item := models.DailyPlanItem{
			DailyPlanID:       planID,
			MenuItemID:        sel.MenuItemID,
			QuantityAvailable: capacity,
			SoldCount:         sold,
			SoldOut:           models.IsSoldOut(capacity, sold),
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("yemek eklenemedi (menu_item_id=%d): %w", sel.MenuItemID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("işlem tamamlanamadı: %w", err)
	}
	return nil
}

// GetPlanForDate: Günün planını yemekleriyle birlikte döner. Plan yoksa hata
// değil nil döner - plansız gün "bugün özel yemek yok" demektir.
func GetPlanForDate(db *gorm.DB, date time.Time) (*models.DailyPlan, error) {
	var p models.DailyPlan
	err := db.
		Preload("Soup").
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Preload("Items.MenuItem").
		Where("date = ?", DateOnly(date)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("plan okunamadı: %w", err)
	}
	return &p, nil
}

// CopyPlan: Kaynak günün planını hedef güne kopyalar. Çorba, not, yemekler ve
// kapasiteler aynen taşınır; SoldCount her yemek için sıfırlanır (dünün satış
// sayacını bugüne taşımak her durumda yanlıştır).
func CopyPlan(db *gorm.DB, sourceDate, targetDate time.Time) (*models.DailyPlan, error) {
	source, err := GetPlanForDate(db, sourceDate)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrSourcePlanNotFound
	}

	target, err := UpsertPlan(db, targetDate, source.SoupID, source.Notes)
	if err != nil {
		return nil, err
	}

	selections := make([]DishSelection, 0, len(source.Items))
	for _, item := range source.Items {
		var capacity *int
		if item.QuantityAvailable != nil {
			c := *item.QuantityAvailable
			capacity = &c
		}
		selections = append(selections, DishSelection{
			MenuItemID:        item.MenuItemID,
			QuantityAvailable: capacity,
		})
	}

	// preserveSold=false: hedef planda aynı yemek varsa bile sayaç sıfırlanır
	if err := replaceDishes(db, target.ID, selections, false); err != nil {
		return nil, err
	}

	return GetPlanForDate(db, targetDate)
}
