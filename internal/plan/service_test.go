package plan

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"siparis-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	if err := db.AutoMigrate(
		&models.MenuItem{},
		&models.DailyPlan{},
		&models.DailyPlanItem{},
	); err != nil {
		t.Fatalf("migration başarısız: %v", err)
	}
	return db
}

func createMenuItem(t *testing.T, db *gorm.DB, name string, price float64) *models.MenuItem {
	t.Helper()
	item := models.MenuItem{Name: name, Price: price, IsAvailable: true}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("menü ürünü oluşturulamadı: %v", err)
	}
	return &item
}

func intPtr(v int) *int { return &v }

func TestUpsertPlanNeverCreatesSecondRowForDate(t *testing.T) {
	db := newTestDB(t)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	soup := createMenuItem(t, db, "Mercimek Çorbası", 45)

	first, err := UpsertPlan(db, date, &soup.ID, "ilk not")
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	// Aynı tarihe N kez yaz - satır sayısı hep 1 kalmalı
	for i := 0; i < 5; i++ {
		if _, err := UpsertPlan(db, date, &soup.ID, "güncel not"); err != nil {
			t.Fatalf("upsert %d başarısız: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.DailyPlan{}).Where("date = ?", DateOnly(date)).Count(&count)
	if count != 1 {
		t.Fatalf("bir tarihe bir plan olmalı, bulunan: %d", count)
	}

	updated, err := GetPlanForDate(db, date)
	if err != nil || updated == nil {
		t.Fatalf("plan okunamadı: %v", err)
	}
	if updated.ID != first.ID {
		t.Fatalf("upsert yeni satır oluşturmuş: %d != %d", updated.ID, first.ID)
	}
	if updated.Notes != "güncel not" {
		t.Fatalf("notes güncellenmemiş: %q", updated.Notes)
	}
}

func TestReplaceDishesRejectsDuplicateDish(t *testing.T) {
	db := newTestDB(t)
	dish := createMenuItem(t, db, "Kuru Fasulye", 120)

	p, err := UpsertPlan(db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil, "")
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	err = ReplaceDishes(db, p.ID, []DishSelection{
		{MenuItemID: dish.ID, QuantityAvailable: intPtr(10)},
		{MenuItemID: dish.ID},
	})
	if !errors.Is(err, ErrDuplicateDish) {
		t.Fatalf("ErrDuplicateDish bekleniyordu, gelen: %v", err)
	}
}

func TestReplaceDishesPreservesSoldCountForSurvivingDishes(t *testing.T) {
	db := newTestDB(t)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dishA := createMenuItem(t, db, "Kuru Fasulye", 120)
	dishB := createMenuItem(t, db, "İzmir Köfte", 150)

	p, err := UpsertPlan(db, date, nil, "")
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if err := ReplaceDishes(db, p.ID, []DishSelection{
		{MenuItemID: dishA.ID, QuantityAvailable: intPtr(5)},
	}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	// Gün içi satış simülasyonu
	if err := db.Model(&models.DailyPlanItem{}).
		Where("daily_plan_id = ? AND menu_item_id = ?", p.ID, dishA.ID).
		Update("sold_count", 3).Error; err != nil {
		t.Fatalf("sold_count güncellenemedi: %v", err)
	}

	// Gün ortası düzenleme: A kalıyor (kapasite artıyor), B ekleniyor
	if err := ReplaceDishes(db, p.ID, []DishSelection{
		{MenuItemID: dishA.ID, QuantityAvailable: intPtr(10)},
		{MenuItemID: dishB.ID, QuantityAvailable: intPtr(8)},
	}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	saved, err := GetPlanForDate(db, date)
	if err != nil || saved == nil {
		t.Fatalf("plan okunamadı: %v", err)
	}
	if len(saved.Items) != 2 {
		t.Fatalf("2 yemek bekleniyordu, bulunan: %d", len(saved.Items))
	}

	for i := range saved.Items {
		item := &saved.Items[i]
		switch item.MenuItemID {
		case dishA.ID:
			if item.SoldCount != 3 {
				t.Fatalf("düzenleme satış sayacını silmiş: beklenen 3, gelen %d", item.SoldCount)
			}
		case dishB.ID:
			if item.SoldCount != 0 {
				t.Fatalf("yeni yemek sıfır satışla başlamalı, gelen %d", item.SoldCount)
			}
		}
	}
}

// Korunan sayaç, düzenleme anındaki EN SON commit'lenmiş değer olmalı;
// eski bir okuma araya giren satışı silerdi.
func TestReplaceDishesPreservesLatestCommittedSoldCount(t *testing.T) {
	db := newTestDB(t)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dish := createMenuItem(t, db, "Kuru Fasulye", 120)

	p, err := UpsertPlan(db, date, nil, "")
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if err := ReplaceDishes(db, p.ID, []DishSelection{
		{MenuItemID: dish.ID, QuantityAvailable: intPtr(10)},
	}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	// Satışlar art arda işleniyor, düzenleme en son değeri görmeli
	for _, sold := range []int{3, 4} {
		if err := db.Model(&models.DailyPlanItem{}).
			Where("daily_plan_id = ?", p.ID).
			Update("sold_count", sold).Error; err != nil {
			t.Fatalf("sold_count güncellenemedi: %v", err)
		}
	}

	if err := ReplaceDishes(db, p.ID, []DishSelection{
		{MenuItemID: dish.ID, QuantityAvailable: intPtr(12)},
	}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	var item models.DailyPlanItem
	db.First(&item, "daily_plan_id = ?", p.ID)
	if item.SoldCount != 4 {
		t.Fatalf("düzenleme satışı geri sarmış: beklenen 4, gelen %d", item.SoldCount)
	}
}

func TestReplaceDishesIdempotentWithSameSet(t *testing.T) {
	db := newTestDB(t)
	dish := createMenuItem(t, db, "Kuru Fasulye", 120)

	p, err := UpsertPlan(db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil, "")
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	selections := []DishSelection{{MenuItemID: dish.ID, QuantityAvailable: intPtr(5)}}
	for i := 0; i < 3; i++ {
		if err := ReplaceDishes(db, p.ID, selections); err != nil {
			t.Fatalf("replace %d başarısız: %v", i, err)
		}
	}

	var count int64
	db.Model(&models.DailyPlanItem{}).Where("daily_plan_id = ?", p.ID).Count(&count)
	if count != 1 {
		t.Fatalf("yemek başına tek satır olmalı, bulunan: %d", count)
	}
}

func TestReplaceDishesCapacityCannotDropBelowSold(t *testing.T) {
	db := newTestDB(t)
	dish := createMenuItem(t, db, "Kuru Fasulye", 120)

	p, _ := UpsertPlan(db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil, "")
	if err := ReplaceDishes(db, p.ID, []DishSelection{{MenuItemID: dish.ID, QuantityAvailable: intPtr(10)}}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	db.Model(&models.DailyPlanItem{}).Where("daily_plan_id = ?", p.ID).Update("sold_count", 4)

	// Kapasiteyi satılmışın altına indirmeye çalış
	if err := ReplaceDishes(db, p.ID, []DishSelection{{MenuItemID: dish.ID, QuantityAvailable: intPtr(2)}}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	var item models.DailyPlanItem
	db.First(&item, "daily_plan_id = ?", p.ID)
	if item.QuantityAvailable == nil || *item.QuantityAvailable != 4 {
		t.Fatalf("kapasite satılmış adede sabitlenmeli (4), gelen: %v", item.QuantityAvailable)
	}
	if !item.SoldOut {
		t.Fatalf("kapasite dolduğu için sold_out olmalıydı")
	}
}

func TestCopyPlanResetsSoldCount(t *testing.T) {
	db := newTestDB(t)
	sourceDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	soup := createMenuItem(t, db, "Ezogelin Çorbası", 45)
	dish := createMenuItem(t, db, "Kuru Fasulye", 120)

	p, err := UpsertPlan(db, sourceDate, &soup.ID, "pazartesi menüsü")
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if err := ReplaceDishes(db, p.ID, []DishSelection{{MenuItemID: dish.ID, QuantityAvailable: intPtr(5)}}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	// Kaynak gün tamamen satılmış
	db.Model(&models.DailyPlanItem{}).
		Where("daily_plan_id = ?", p.ID).
		Updates(map[string]interface{}{"sold_count": 5, "sold_out": true})

	copied, err := CopyPlan(db, sourceDate, targetDate)
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	if copied.Date.Format("2006-01-02") != "2024-01-02" {
		t.Fatalf("hedef tarih yanlış: %v", copied.Date)
	}
	if copied.SoupID == nil || *copied.SoupID != soup.ID {
		t.Fatalf("çorba kopyalanmamış")
	}
	if copied.Notes != "pazartesi menüsü" {
		t.Fatalf("not kopyalanmamış: %q", copied.Notes)
	}
	if len(copied.Items) != 1 {
		t.Fatalf("1 yemek bekleniyordu, bulunan: %d", len(copied.Items))
	}

	item := copied.Items[0]
	if item.QuantityAvailable == nil || *item.QuantityAvailable != 5 {
		t.Fatalf("kapasite kopyalanmamış: %v", item.QuantityAvailable)
	}
	if item.SoldCount != 0 {
		t.Fatalf("satış sayacı sıfırlanmalı, gelen: %d", item.SoldCount)
	}
	if item.SoldOut {
		t.Fatalf("kopyalanan yemek sold_out olmamalı")
	}

	// Kaynak plan değişmemiş olmalı
	source, _ := GetPlanForDate(db, sourceDate)
	if source.Items[0].SoldCount != 5 || !source.Items[0].SoldOut {
		t.Fatalf("kopyalama kaynak planı değiştirmiş")
	}
}

func TestCopyPlanFailsWithoutSource(t *testing.T) {
	db := newTestDB(t)

	_, err := CopyPlan(db,
		time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2099, 1, 2, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrSourcePlanNotFound) {
		t.Fatalf("ErrSourcePlanNotFound bekleniyordu, gelen: %v", err)
	}
}

func TestGetPlanForDateMissingIsNotAnError(t *testing.T) {
	db := newTestDB(t)

	p, err := GetPlanForDate(db, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("plansız gün hata olmamalı: %v", err)
	}
	if p != nil {
		t.Fatalf("plan beklenmiyor, gelen: %+v", p)
	}
}

func TestUnlimitedItemNeverSellsOut(t *testing.T) {
	db := newTestDB(t)
	dish := createMenuItem(t, db, "Pilav", 60)

	p, _ := UpsertPlan(db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil, "")
	if err := ReplaceDishes(db, p.ID, []DishSelection{{MenuItemID: dish.ID}}); err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}

	db.Model(&models.DailyPlanItem{}).Where("daily_plan_id = ?", p.ID).Update("sold_count", 1000)

	saved, _ := GetPlanForDate(db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	item := saved.Items[0]
	if item.SoldOut {
		t.Fatalf("sınırsız yemek asla sold_out olmaz")
	}
	if item.Remaining() != nil {
		t.Fatalf("sınırsız yemekte remaining nil olmalı")
	}
}
