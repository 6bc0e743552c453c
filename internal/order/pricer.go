package order

import (
	"errors"
	"math"

	"siparis-backend/internal/models"
)

// Online ödemede sağlayıcı komisyonu müşteriye yansıtılır.
const OnlineSurchargeRate = 0.04

var ErrInvalidOrder = errors.New("sipariş en az bir geçerli satır içermeli")

type PriceLine struct {
	UnitPrice float64
	Quantity  int
}

type PriceBreakdown struct {
	Subtotal  float64
	Surcharge float64
	Total     float64
}

// Round2: Kuruş hassasiyetine yuvarlar.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Price: Saf fiyatlama - yan etkisi yok. Ara toplam ve komisyon ayrı ayrı
// yuvarlanır, fiş üzerinde satır satır görünen değerlerle birebir aynı olsun
// diye; toplam yuvarlanmış değerlerin üzerinden hesaplanır.
func Price(lines []PriceLine, method models.PaymentMethod) (*PriceBreakdown, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidOrder
	}

	subtotal := 0.0
	for _, l := range lines {
		if l.Quantity < 1 || l.UnitPrice < 0 {
			return nil, ErrInvalidOrder
		}
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	subtotal = Round2(subtotal)
	if subtotal <= 0 {
		return nil, ErrInvalidOrder
	}

	surcharge := 0.0
	if method == models.PaymentOnline {
		surcharge = Round2(subtotal * OnlineSurchargeRate)
	}

	return &PriceBreakdown{
		Subtotal:  subtotal,
		Surcharge: surcharge,
		Total:     Round2(subtotal + surcharge),
	}, nil
}
