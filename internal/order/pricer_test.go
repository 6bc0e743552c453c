package order

import (
	"errors"
	"testing"

	"siparis-backend/internal/models"
)

func TestPricePickupHasNoSurcharge(t *testing.T) {
	got, err := Price([]PriceLine{{UnitPrice: 10.00, Quantity: 2}}, models.PaymentPickup)
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if got.Subtotal != 20.00 || got.Surcharge != 0 || got.Total != 20.00 {
		t.Fatalf("beklenen 20.00/0/20.00, gelen %.2f/%.2f/%.2f", got.Subtotal, got.Surcharge, got.Total)
	}
}

func TestPriceOnlineAddsSurcharge(t *testing.T) {
	got, err := Price([]PriceLine{{UnitPrice: 10.00, Quantity: 2}}, models.PaymentOnline)
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if got.Subtotal != 20.00 || got.Surcharge != 0.80 || got.Total != 20.80 {
		t.Fatalf("beklenen 20.00/0.80/20.80, gelen %.2f/%.2f/%.2f", got.Subtotal, got.Surcharge, got.Total)
	}
}

func TestPriceRoundsEachDerivedValue(t *testing.T) {
	// 3 x 3.35 = 10.05; komisyon = round(10.05 * 0.04) = 0.40; toplam 10.45
	got, err := Price([]PriceLine{{UnitPrice: 3.35, Quantity: 3}}, models.PaymentOnline)
	if err != nil {
		t.Fatalf("beklenmeyen hata: %v", err)
	}
	if got.Subtotal != 10.05 {
		t.Fatalf("ara toplam beklenen 10.05, gelen %.4f", got.Subtotal)
	}
	if got.Surcharge != 0.40 {
		t.Fatalf("komisyon beklenen 0.40, gelen %.4f", got.Surcharge)
	}
	if got.Total != 10.45 {
		t.Fatalf("toplam beklenen 10.45, gelen %.4f", got.Total)
	}
}

func TestPriceRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		lines  []PriceLine
		method models.PaymentMethod
	}{
		{"boş sipariş", nil, models.PaymentPickup},
		{"sıfır adet", []PriceLine{{UnitPrice: 10, Quantity: 0}}, models.PaymentPickup},
		{"negatif fiyat", []PriceLine{{UnitPrice: -1, Quantity: 1}}, models.PaymentPickup},
		{"sıfır tutar", []PriceLine{{UnitPrice: 0, Quantity: 3}}, models.PaymentOnline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Price(tc.lines, tc.method); !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("ErrInvalidOrder bekleniyordu, gelen: %v", err)
			}
		})
	}
}
