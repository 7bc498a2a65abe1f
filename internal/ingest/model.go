// Package ingest pulls invoiced orders from the commerce platform's OMS API
// into the relational store.
package ingest

import "time"

// Window is the inclusive invoiced-date range a sync run covers.
type Window struct {
	From time.Time
	To   time.Time
}

// OrderSummary is one entry of the paginated order listing.
type OrderSummary struct {
	OrderID string `json:"orderId"`
}

type listOrdersResponse struct {
	List []OrderSummary `json:"list"`
}

// OrderDetail is the full order payload. Monetary values arrive in integer
// minor units and are stored unchanged.
type OrderDetail struct {
	OrderID          string            `json:"orderId"`
	InvoicedDate     time.Time         `json:"invoicedDate"`
	Value            int64             `json:"value"`
	Status           string            `json:"status"`
	StorePreferences *StorePreferences `json:"storePreferencesData"`
	Items            []OrderItem       `json:"items"`
	Shipping         *ShippingData     `json:"shippingData"`
}

// StorePreferences carries store-level settings of the order.
type StorePreferences struct {
	CurrencyCode string `json:"currencyCode"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID      string    `json:"productId"`
	Name           string    `json:"name"`
	Quantity       int64     `json:"quantity"`
	Price          int64     `json:"price"`
	AdditionalInfo *ItemInfo `json:"additionalInfo"`
}

// ItemInfo holds catalogue metadata attached to a line item.
type ItemInfo struct {
	BrandName  string     `json:"brandName"`
	Categories []Category `json:"categories"`
}

// Category is one catalogue category node.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShippingData carries the order's shipping section.
type ShippingData struct {
	Address       *Address        `json:"address"`
	LogisticsInfo []LogisticsInfo `json:"logisticsInfo"`
}

// LogisticsInfo describes one delivery leg.
type LogisticsInfo struct {
	DeliveryIDs     []DeliveryID     `json:"deliveryIds"`
	PickupStoreInfo *PickupStoreInfo `json:"pickupStoreInfo"`
}

// DeliveryID references the fulfilling warehouse.
type DeliveryID struct {
	WarehouseID string `json:"warehouseId"`
}

// PickupStoreInfo names and locates the fulfilling warehouse.
type PickupStoreInfo struct {
	FriendlyName string   `json:"friendlyName"`
	Address      *Address `json:"address"`
}

// Address is a postal address as delivered by the platform.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// currencyCode tolerates a missing store preferences block.
func (o OrderDetail) currencyCode() string {
	if o.StorePreferences == nil {
		return ""
	}
	return o.StorePreferences.CurrencyCode
}

// warehouseID returns the fulfilling warehouse id, or "" when the shipping
// section omits it. Upstream payloads carry at most one logistics leg per
// order that matters for fulfilment; the first one wins.
func (o OrderDetail) warehouseID() string {
	if o.Shipping == nil || len(o.Shipping.LogisticsInfo) == 0 {
		return ""
	}
	leg := o.Shipping.LogisticsInfo[0]
	if len(leg.DeliveryIDs) == 0 {
		return ""
	}
	return leg.DeliveryIDs[0].WarehouseID
}

// warehouseInfo returns the warehouse metadata of the first logistics leg.
func (o OrderDetail) warehouseInfo() *PickupStoreInfo {
	if o.Shipping == nil || len(o.Shipping.LogisticsInfo) == 0 {
		return nil
	}
	return o.Shipping.LogisticsInfo[0].PickupStoreInfo
}

// destination returns the shipping address, or nil when the order has none.
func (o OrderDetail) destination() *Address {
	if o.Shipping == nil {
		return nil
	}
	return o.Shipping.Address
}

// brandName tolerates a missing catalogue info block.
func (i OrderItem) brandName() string {
	if i.AdditionalInfo == nil {
		return ""
	}
	return i.AdditionalInfo.BrandName
}

// category returns the item's first catalogue category.
func (i OrderItem) category() Category {
	if i.AdditionalInfo == nil || len(i.AdditionalInfo.Categories) == 0 {
		return Category{}
	}
	return i.AdditionalInfo.Categories[0]
}
