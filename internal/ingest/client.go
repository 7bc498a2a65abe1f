package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	authHeader     = "VtexIdclientAutCookie"
	listOrdersPath = "/api/oms/pvt/orders"
	statusInvoiced = "invoiced"
	// invoicedDateFormat matches the OMS listing filter syntax.
	invoicedDateFormat = "2006-01-02T15:04:05.000Z"
)

// Client talks to the commerce platform's OMS API.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	http     *http.Client
}

// NewClient configures the OMS client. pageSize bounds how many summaries one
// listing page returns.
func NewClient(baseURL, token string, pageSize int) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		pageSize: pageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// ListOrders fetches one page of invoiced-order summaries inside the window.
// An empty page signals the end of the listing.
func (c *Client) ListOrders(ctx context.Context, page int, w Window) ([]OrderSummary, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))
	q.Set("f_status", statusInvoiced)
	q.Set("f_invoicedDate", fmt.Sprintf("invoicedDate:[%s TO %s]",
		w.From.UTC().Format(invoicedDateFormat),
		w.To.UTC().Format(invoicedDateFormat),
	))

	var resp listOrdersResponse
	if err := c.get(ctx, listOrdersPath+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("list orders page %d: %w", page, err)
	}
	return resp.List, nil
}

// GetOrder fetches the full detail of one order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (OrderDetail, error) {
	var detail OrderDetail
	if err := c.get(ctx, listOrdersPath+"/"+url.PathEscape(orderID), &detail); err != nil {
		return OrderDetail{}, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return detail, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(authHeader, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
