package order

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"siparis-backend/internal/ledger"
	"siparis-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrMissingCustomer   = errors.New("müşteri adı ve telefon zorunlu")
	ErrMissingPickupTime = errors.New("teslim saati zorunlu")
	ErrInvalidPayment    = errors.New("geçersiz ödeme yöntemi")
	ErrLineWithoutItem   = errors.New("sipariş satırı bir ürüne bağlı olmalı")
)

// UnavailableError: Müşteriye hangi ürünün kalmadığını isimle söyleyebilmek
// için - genel bir hata mesajı sipariş düzeltmeye yetmez.
type UnavailableError struct {
	ItemName  string
	Requested int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s istenen adette mevcut değil (istenen: %d)", e.ItemName, e.Requested)
}

type SubmitLine struct {
	MenuItemID      *uint // sabit menüden sipariş
	DailyPlanItemID *uint // günün menüsünden sipariş
	Quantity        int
}

type SubmitRequest struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	PickupTime    time.Time
	Note          string
	PaymentMethod models.PaymentMethod
	OrderNoPrefix string
	Lines         []SubmitLine
}

type SubmitResult struct {
	Order            *models.Order
	UnavailableItems []string // stok düşümü başarısız olan satırların isimleri
}

const orderNoMaxAttempts = 3

// Testlerde sabit numara üretip çakışma senaryosu kurabilmek için değişken.
var generateOrderNo = GenerateOrderNo

// Submit: Sipariş alma akışının tamamı - doğrula, fiyatla, kaydet, stok düş.
//
// Stok düşümü sipariş kaydından SONRA yapılır ve başarısız olursa sipariş
// geri alınmaz: satır StockFailed, sipariş StockIssue olarak işaretlenir ve
// personel müşteriyle mutabakat yapar. Kaydedilmiş siparişi otomatik silmeye
// çalışmak (dağıtık rollback) bilerek yapılmıyor.
func Submit(db *gorm.DB, req SubmitRequest) (*SubmitResult, error) {
	// 1. Doğrulama - yazmadan önce net mesajla reddetmek için iyimser ön
	// kontrol; asıl kapasite garantisi 4. adımdaki atomik update'tedir.
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, ErrMissingCustomer
	}
	if req.PickupTime.IsZero() {
		return nil, ErrMissingPickupTime
	}
	if req.PaymentMethod != models.PaymentOnline && req.PaymentMethod != models.PaymentPickup {
		return nil, ErrInvalidPayment
	}
	if len(req.Lines) == 0 {
		return nil, ErrInvalidOrder
	}

	priceLines := make([]PriceLine, 0, len(req.Lines))
	orderLines := make([]models.OrderLine, 0, len(req.Lines))

	for _, line := range req.Lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidOrder
		}

		switch {
		case line.DailyPlanItemID != nil:
			var planItem models.DailyPlanItem
			if err := db.Preload("MenuItem").First(&planItem, "id = ?", *line.DailyPlanItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ledger.ErrItemNotFound
				}
				return nil, fmt.Errorf("günün menüsü okunamadı: %w", err)
			}

			if remaining := planItem.Remaining(); remaining != nil && *remaining < line.Quantity {
				return nil, &UnavailableError{ItemName: planItem.MenuItem.Name, Requested: line.Quantity}
			}

			planItemID := planItem.ID
			menuItemID := planItem.MenuItemID
			orderLines = append(orderLines, models.OrderLine{
				MenuItemID:      &menuItemID,
				DailyPlanItemID: &planItemID,
				ItemName:        planItem.MenuItem.Name,
				UnitPrice:       planItem.MenuItem.Price,
				Quantity:        line.Quantity,
				LineTotal:       Round2(planItem.MenuItem.Price * float64(line.Quantity)),
			})
			priceLines = append(priceLines, PriceLine{UnitPrice: planItem.MenuItem.Price, Quantity: line.Quantity})

		case line.MenuItemID != nil:
			var menuItem models.MenuItem
			if err := db.First(&menuItem, "id = ?", *line.MenuItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ledger.ErrItemNotFound
				}
				return nil, fmt.Errorf("menü okunamadı: %w", err)
			}
			if !menuItem.IsAvailable {
				return nil, &UnavailableError{ItemName: menuItem.Name, Requested: line.Quantity}
			}

			menuItemID := menuItem.ID
			orderLines = append(orderLines, models.OrderLine{
				MenuItemID: &menuItemID,
				ItemName:   menuItem.Name,
				UnitPrice:  menuItem.Price,
				Quantity:   line.Quantity,
				LineTotal:  Round2(menuItem.Price * float64(line.Quantity)),
			})
			priceLines = append(priceLines, PriceLine{UnitPrice: menuItem.Price, Quantity: line.Quantity})

		default:
			return nil, ErrLineWithoutItem
		}
	}

	// 2. Fiyatlama
	breakdown, err := Price(priceLines, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	// 3. Kayıt - sipariş ve satırları tek transaction'da (gorm association).
	// Numara çakışırsa yeni numarayla tekrar dene.
	var order models.Order
	for attempt := 1; ; attempt++ {
		order = models.Order{
			OrderNo:       generateOrderNo(req.OrderNoPrefix),
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			CustomerEmail: strings.TrimSpace(req.CustomerEmail),
			PickupTime:    req.PickupTime,
			Note:          req.Note,
			PaymentMethod: req.PaymentMethod,
			Subtotal:      breakdown.Subtotal,
			Surcharge:     breakdown.Surcharge,
			TotalAmount:   breakdown.Total,
			Status:        models.OrderStatusNew,
			Lines:         orderLines,
		}

		err := db.Create(&order).Error
		if err == nil {
			break
		}
		if isDuplicateOrderNo(err) && attempt < orderNoMaxAttempts {
			continue
		}
		return nil, fmt.Errorf("sipariş kaydedilemedi: %w", err)
	}

	// 4. Stok düşümü - günün menüsünden gelen her satır için. Başarısızlık
	// siparişi geri almaz, işaretler.
	result := &SubmitResult{Order: &order}
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.DailyPlanItemID == nil {
			continue
		}

		if _, err := ledger.ReserveAndCommit(db, *line.DailyPlanItemID, line.Quantity); err != nil {
			// Sipariş bu noktada kaydedilmiş durumda; hata ne olursa olsun
			// geri alınmaz, satır işaretlenir ve personel mutabakatına kalır.
			if !errors.Is(err, ledger.ErrCapacityExceeded) && !errors.Is(err, ledger.ErrItemNotFound) {
				log.Printf("Stok düşümü beklenmedik şekilde başarısız (sipariş %s, satır %d): %v", order.OrderNo, line.ID, err)
			}

			line.StockFailed = true
			order.StockIssue = true
			result.UnavailableItems = append(result.UnavailableItems, line.ItemName)

			markStockIssue(db, line, &order)
		}
	}

	return result, nil
}

// markStockIssue: Karşılanamayan satırı ve siparişi kalıcı olarak işaretler.
// Bu yazılar da başarısız olursa sipariş veritabanında işaretsiz kalır; en
// azından log'a düşmeli ki personel mutabakatının izi tamamen kaybolmasın.
func markStockIssue(db *gorm.DB, line *models.OrderLine, order *models.Order) {
	if err := db.Model(line).Update("stock_failed", true).Error; err != nil {
		log.Printf("Satır stok uyarısı yazılamadı (sipariş %s, satır %d): %v", order.OrderNo, line.ID, err)
	}
	if err := db.Model(order).Update("stock_issue", true).Error; err != nil {
		log.Printf("Sipariş stok uyarısı yazılamadı (sipariş %s): %v", order.OrderNo, err)
	}
}

// isDuplicateOrderNo: order_no unique index ihlali mi? Sürücüye göre mesaj
// değişir (Postgres "duplicate key", SQLite "UNIQUE constraint").
func isDuplicateOrderNo(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
