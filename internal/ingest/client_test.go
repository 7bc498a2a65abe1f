package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOrdersRequestShape(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"list":[{"orderId":"o-1"},{"orderId":"o-2"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", 50)
	summaries, err := c.ListOrders(context.Background(), 2, Window{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "o-1", summaries[0].OrderID)

	require.NotNil(t, got)
	assert.Equal(t, "/api/oms/pvt/orders", got.URL.Path)
	assert.Equal(t, "secret-token", got.Header.Get(authHeader))
	q := got.URL.Query()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "50", q.Get("per_page"))
	assert.Equal(t, "invoiced", q.Get("f_status"))
	assert.Equal(t, "invoicedDate:[2024-01-01T00:00:00.000Z TO 2024-01-31T23:59:59.000Z]", q.Get("f_invoicedDate"))
}

func TestGetOrderDecodesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/oms/pvt/orders/o-9", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"orderId": "o-9",
			"invoicedDate": "2024-01-05T10:00:00Z",
			"value": 150000,
			"status": "invoiced",
			"storePreferencesData": {"currencyCode": "COP"},
			"items": [{
				"productId": "p-1",
				"name": "Espresso Grinder",
				"quantity": 1,
				"price": 150000,
				"additionalInfo": {"brandName": "BrewCraft", "categories": [{"id": "C-10", "name": "Coffee Gear"}]}
			}],
			"shippingData": {
				"address": {"city": "Bogotá, D.C.", "state": "DC", "country": "COL"},
				"logisticsInfo": [{
					"deliveryIds": [{"warehouseId": "WH-BOG"}],
					"pickupStoreInfo": {"friendlyName": "Bogota Central"}
				}]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", 100)
	order, err := c.GetOrder(context.Background(), "o-9")
	require.NoError(t, err)
	assert.Equal(t, "o-9", order.OrderID)
	assert.Equal(t, int64(150000), order.Value)
	assert.Equal(t, "COP", order.currencyCode())
	assert.Equal(t, "WH-BOG", order.warehouseID())
	require.NotNil(t, order.destination())
	assert.Equal(t, "Bogotá, D.C.", order.destination().City)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "BrewCraft", order.Items[0].brandName())
	assert.Equal(t, "Coffee Gear", order.Items[0].category().Name)
}

func TestGetOrderSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", 100)
	_, err := c.GetOrder(context.Background(), "o-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestOrderAccessorsTolerateMissingSections(t *testing.T) {
	var order OrderDetail
	assert.Equal(t, "", order.currencyCode())
	assert.Equal(t, "", order.warehouseID())
	assert.Nil(t, order.destination())
	assert.Nil(t, order.warehouseInfo())

	var item OrderItem
	assert.Equal(t, "", item.brandName())
	assert.Equal(t, Category{}, item.category())
}
