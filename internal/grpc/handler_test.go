package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/fjod/yofoo_cart/internal/cart"
	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func setupServer(t *testing.T) (*Client, *cart.CartStore) {
	store := cart.NewCartStore(nil, logger.Discard())
	srv, _ := NewServer(store, logger.Discard())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		srv.Stop()
		_ = store.Close(context.Background())
	})
	return client, store
}

func menuItem(id, price string) domain.MenuItem {
	return domain.MenuItem{ID: id, Name: "item " + id, Price: decimal.RequireFromString(price)}
}

func TestCartService_AddAndGet(t *testing.T) {
	client, store := setupServer(t)
	ctx := context.Background()

	resp, err := client.AddItem(ctx, menuItem("m1", "120"), "r1")
	require.NoError(t, err)
	resp, err = client.AddItem(ctx, menuItem("m1", "120"), "r1")
	require.NoError(t, err)

	require.Len(t, resp.Cart.Lines, 1)
	assert.Equal(t, 2, resp.Cart.Lines[0].Quantity)
	assert.True(t, resp.Cart.TotalAmount.Equal(decimal.NewFromInt(240)))
	assert.True(t, resp.Bill.DeliveryCharge.Equal(domain.DeliveryCharge))

	got, err := client.GetCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", got.Cart.RestaurantID)
	assert.Equal(t, 2, store.Snapshot().ItemCount())
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	client, _ := setupServer(t)
	ctx := context.Background()

	_, err := client.AddItem(ctx, menuItem("m1", "100"), "r1")
	require.NoError(t, err)
	_, err = client.AddItem(ctx, menuItem("m2", "50"), "r1")
	require.NoError(t, err)

	resp, err := client.UpdateQuantity(ctx, "m1", 3)
	require.NoError(t, err)
	assert.True(t, resp.Cart.TotalAmount.Equal(decimal.NewFromInt(350)))

	resp, err = client.UpdateQuantity(ctx, "m2", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Cart.Lines, 1)

	resp, err = client.RemoveItem(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, resp.Cart.IsEmpty())
	assert.Empty(t, resp.Cart.RestaurantID)

	_, err = client.AddItem(ctx, menuItem("m3", "10"), "r2")
	require.NoError(t, err)
	resp, err = client.ClearCart(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Cart.IsEmpty())
}

func TestCartService_InvalidArguments(t *testing.T) {
	client, _ := setupServer(t)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
	}{
		{"missing item id", func() error { _, err := client.AddItem(ctx, menuItem("", "1"), "r1"); return err }},
		{"missing restaurant", func() error { _, err := client.AddItem(ctx, menuItem("m1", "1"), ""); return err }},
		{"negative price", func() error { _, err := client.AddItem(ctx, menuItem("m1", "-1"), "r1"); return err }},
		{"update without id", func() error { _, err := client.UpdateQuantity(ctx, "", 1); return err }},
		{"remove without id", func() error { _, err := client.RemoveItem(ctx, ""); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestCartService_Health(t *testing.T) {
	client, _ := setupServer(t)
	ok, err := client.Healthy(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
