package backup

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mserebryaakov/delivery-panel/internal/delivery"
	"github.com/mserebryaakov/delivery-panel/internal/order"
	"github.com/mserebryaakov/delivery-panel/internal/product"
	"github.com/mserebryaakov/delivery-panel/internal/promo"
	"github.com/mserebryaakov/delivery-panel/internal/settings"
)

const Version = "1.0"

const fileLayout = "2006-01-02-15-04"

// Backup is the downloadable snapshot. Only DeliveryAreas and Orders are
// restored; the rest is there for inspection.
type Backup struct {
	Timestamp     string                    `json:"timestamp"`
	Version       string                    `json:"version"`
	Products      []product.Product         `json:"products"`
	Settings      *settings.CompanySettings `json:"settings"`
	DeliveryAreas json.RawMessage           `json:"deliveryAreas"`
	Orders        []order.Order             `json:"orders"`
	DeliveryZones []delivery.Zone           `json:"deliveryZones"`
	PromoCodes    []promo.PromoView         `json:"promoCodes"`
}

func FileName(t time.Time) string {
	return filePrefix + "-" + t.Format(fileLayout) + ".json"
}

type RestoreResult struct {
	Message         string `json:"message"`
	Orders          int    `json:"orders"`
	OrdersReplaced  bool   `json:"orders_replaced"`
	BusinessAddress bool   `json:"business_address"`
}

const filePrefix = "store-chicken-backup"

// ValidFileName accepts only files named like the ones Export produces.
func ValidFileName(name string) bool {
	return strings.Contains(name, filePrefix) && strings.HasSuffix(name, ".json")
}
