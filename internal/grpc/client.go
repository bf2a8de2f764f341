package grpc

import (
	"context"
	"fmt"

	"github.com/fjod/yofoo_cart/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Client talks to a running cart service.
type Client struct {
	conn *grpc.ClientConn
}

func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cart service: %w", err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in any) (*CartResponse, error) {
	out := new(CartResponse)
	err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCart(ctx context.Context) (*CartResponse, error) {
	return c.invoke(ctx, "GetCart", &GetCartRequest{})
}

func (c *Client) AddItem(ctx context.Context, item domain.MenuItem, restaurantID string) (*CartResponse, error) {
	return c.invoke(ctx, "AddItem", &AddItemRequest{Item: item, RestaurantID: restaurantID})
}

func (c *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*CartResponse, error) {
	return c.invoke(ctx, "UpdateQuantity", &UpdateQuantityRequest{ItemID: itemID, Quantity: quantity})
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) (*CartResponse, error) {
	return c.invoke(ctx, "RemoveItem", &RemoveItemRequest{ItemID: itemID})
}

func (c *Client) ClearCart(ctx context.Context) (*CartResponse, error) {
	return c.invoke(ctx, "ClearCart", &ClearCartRequest{})
}

// Healthy asks the standard health service whether the cart service is up.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	resp, err := grpc_health_v1.NewHealthClient(c.conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING, nil
}
