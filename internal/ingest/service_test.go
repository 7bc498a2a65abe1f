package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	pages      [][]OrderSummary
	listErr    map[int]error
	details    map[string]OrderDetail
	detailErr  map[string]error
	listCalls  int
	fetchOrder []string
}

func (m *mockSource) ListOrders(ctx context.Context, page int, w Window) ([]OrderSummary, error) {
	m.listCalls++
	if err := m.listErr[page]; err != nil {
		return nil, err
	}
	if page > len(m.pages) {
		return nil, nil
	}
	return m.pages[page-1], nil
}

func (m *mockSource) GetOrder(ctx context.Context, orderID string) (OrderDetail, error) {
	m.fetchOrder = append(m.fetchOrder, orderID)
	if err := m.detailErr[orderID]; err != nil {
		return OrderDetail{}, err
	}
	return m.details[orderID], nil
}

type mockStore struct {
	saved   []string
	saveErr map[string]error
}

func (m *mockStore) SaveOrder(ctx context.Context, order OrderDetail) error {
	if err := m.saveErr[order.OrderID]; err != nil {
		return err
	}
	m.saved = append(m.saved, order.OrderID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWindow() Window {
	return Window{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestRunProcessesAllPages(t *testing.T) {
	source := &mockSource{
		pages: [][]OrderSummary{
			{{OrderID: "o-1"}, {OrderID: "o-2"}},
			{{OrderID: "o-3"}},
		},
		details: map[string]OrderDetail{
			"o-1": {OrderID: "o-1"},
			"o-2": {OrderID: "o-2"},
			"o-3": {OrderID: "o-3"},
		},
	}
	store := &mockStore{}
	svc := NewService(source, store, testLogger(), nil, 0)

	res, err := svc.Run(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, []string{"o-1", "o-2", "o-3"}, store.saved)
	// Two data pages plus the empty page that terminates the loop.
	assert.Equal(t, 3, source.listCalls)
}

func TestRunSkipsFailedDetailFetch(t *testing.T) {
	source := &mockSource{
		pages: [][]OrderSummary{
			{{OrderID: "o-1"}, {OrderID: "o-2"}, {OrderID: "o-3"}},
		},
		details: map[string]OrderDetail{
			"o-1": {OrderID: "o-1"},
			"o-3": {OrderID: "o-3"},
		},
		detailErr: map[string]error{"o-2": errors.New("timeout")},
	}
	store := &mockStore{}
	svc := NewService(source, store, testLogger(), nil, 0)

	res, err := svc.Run(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"o-1", "o-3"}, store.saved)
}

func TestRunAbortsOnListingFailure(t *testing.T) {
	source := &mockSource{
		pages:   [][]OrderSummary{{{OrderID: "o-1"}}},
		details: map[string]OrderDetail{"o-1": {OrderID: "o-1"}},
		listErr: map[int]error{2: errors.New("upstream 500")},
	}
	store := &mockStore{}
	svc := NewService(source, store, testLogger(), nil, 0)

	res, err := svc.Run(context.Background(), testWindow())
	require.Error(t, err)
	assert.Equal(t, 1, res.Processed)
}

func TestRunAbortsOnStoreFailure(t *testing.T) {
	source := &mockSource{
		pages: [][]OrderSummary{
			{{OrderID: "o-1"}, {OrderID: "o-2"}},
		},
		details: map[string]OrderDetail{
			"o-1": {OrderID: "o-1"},
			"o-2": {OrderID: "o-2"},
		},
	}
	store := &mockStore{saveErr: map[string]error{"o-2": errors.New("constraint violated")}}
	svc := NewService(source, store, testLogger(), nil, 0)

	res, err := svc.Run(context.Background(), testWindow())
	require.Error(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, []string{"o-1"}, store.saved)
}

func TestRunHonoursCancellation(t *testing.T) {
	source := &mockSource{
		pages: [][]OrderSummary{
			{{OrderID: "o-1"}, {OrderID: "o-2"}},
		},
		details: map[string]OrderDetail{
			"o-1": {OrderID: "o-1"},
			"o-2": {OrderID: "o-2"},
		},
	}
	store := &mockStore{}
	// A long inter-request delay makes the cancellation race deterministic.
	svc := NewService(source, store, testLogger(), nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Run(ctx, testWindow())
	require.ErrorIs(t, err, context.Canceled)
}
