package notify

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"siparis-backend/internal/models"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// OrderCreated: Sipariş tamamlandıktan sonra çağrılır (ateşle-unut).
// Başarısızlık sadece loglanır, siparişin sonucunu asla değiştirmez.
func OrderCreated(webhookURL string, order *models.Order) {
	log.Printf("Yeni sipariş: %s (%.2f TL, %d satır)", order.OrderNo, order.TotalAmount, len(order.Lines))

	if webhookURL == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_no":     order.OrderNo,
		"customer":     order.CustomerName,
		"pickup_time":  order.PickupTime.Format("2006-01-02 15:04"),
		"total_amount": order.TotalAmount,
		"stock_issue":  order.StockIssue,
	})
	if err != nil {
		log.Printf("Bildirim payload oluşturulamadı (%s): %v", order.OrderNo, err)
		return
	}

	resp, err := httpClient.Post(webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("Sipariş bildirimi gönderilemedi (%s): %v", order.OrderNo, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Sipariş bildirimi reddedildi (%s): HTTP %d", order.OrderNo, resp.StatusCode)
	}
}
