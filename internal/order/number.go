package order

import (
	"fmt"
	"math/rand"
	"time"
)

// 0/O ve 1/I karışmasın diye çıkarıldı
const orderNoChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const orderNoSuffixLen = 4

// GenerateOrderNo: İnsan okunur sipariş numarası üretir, ör: "SP-250901-K7KQ".
// Kriptografik benzersizlik hedeflenmez; order_no kolonundaki unique index
// son sözü söyler, çakışmada Submit yeni numarayla tekrar dener.
func GenerateOrderNo(prefix string) string {
	suffix := make([]byte, orderNoSuffixLen)
	for i := range suffix {
		suffix[i] = orderNoChars[rand.Intn(len(orderNoChars))]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("060102"), string(suffix))
}
