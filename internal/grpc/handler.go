package grpc

import (
	"context"
	"log/slog"

	"github.com/fjod/yofoo_cart/internal/cart"
	"github.com/fjod/yofoo_cart/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CartServer is the server side of yofoo.cart.v1.CartService.
type CartServer interface {
	GetCart(ctx context.Context, req *GetCartRequest) (*CartResponse, error)
	AddItem(ctx context.Context, req *AddItemRequest) (*CartResponse, error)
	UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartResponse, error)
	RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartResponse, error)
	ClearCart(ctx context.Context, req *ClearCartRequest) (*CartResponse, error)
}

type CartServiceServer struct {
	store cart.Store
	log   *slog.Logger
}

func NewCartServiceServer(store cart.Store, log *slog.Logger) *CartServiceServer {
	return &CartServiceServer{store: store, log: log}
}

func (s *CartServiceServer) response() *CartResponse {
	c := s.store.Snapshot()
	return &CartResponse{Cart: c, Bill: domain.NewBill(c.TotalAmount)}
}

func (s *CartServiceServer) GetCart(_ context.Context, _ *GetCartRequest) (*CartResponse, error) {
	return s.response(), nil
}

func (s *CartServiceServer) AddItem(_ context.Context, req *AddItemRequest) (*CartResponse, error) {
	if req.Item.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "item.id is required")
	}
	if req.Item.Name == "" {
		return nil, status.Error(codes.InvalidArgument, "item.name is required")
	}
	if req.Item.Price.IsNegative() {
		return nil, status.Error(codes.InvalidArgument, "item.price must not be negative")
	}
	if req.RestaurantID == "" {
		return nil, status.Error(codes.InvalidArgument, "restaurantId is required")
	}

	s.store.AddItem(req.Item, req.RestaurantID)
	return s.response(), nil
}

// UpdateQuantity with quantity <= 0 removes the line. Unknown ids are ignored.
func (s *CartServiceServer) UpdateQuantity(_ context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
	if req.ItemID == "" {
		return nil, status.Error(codes.InvalidArgument, "itemId is required")
	}
	s.store.UpdateQuantity(req.ItemID, req.Quantity)
	return s.response(), nil
}

func (s *CartServiceServer) RemoveItem(_ context.Context, req *RemoveItemRequest) (*CartResponse, error) {
	if req.ItemID == "" {
		return nil, status.Error(codes.InvalidArgument, "itemId is required")
	}
	s.store.RemoveItem(req.ItemID)
	return s.response(), nil
}

func (s *CartServiceServer) ClearCart(_ context.Context, _ *ClearCartRequest) (*CartResponse, error) {
	s.store.ClearCart()
	return s.response(), nil
}

func RegisterCartServiceServer(r grpc.ServiceRegistrar, srv CartServer) {
	r.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCart", Handler: unary("GetCart", func(s CartServer, ctx context.Context, req *GetCartRequest) (*CartResponse, error) {
			return s.GetCart(ctx, req)
		})},
		{MethodName: "AddItem", Handler: unary("AddItem", func(s CartServer, ctx context.Context, req *AddItemRequest) (*CartResponse, error) {
			return s.AddItem(ctx, req)
		})},
		{MethodName: "UpdateQuantity", Handler: unary("UpdateQuantity", func(s CartServer, ctx context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
			return s.UpdateQuantity(ctx, req)
		})},
		{MethodName: "RemoveItem", Handler: unary("RemoveItem", func(s CartServer, ctx context.Context, req *RemoveItemRequest) (*CartResponse, error) {
			return s.RemoveItem(ctx, req)
		})},
		{MethodName: "ClearCart", Handler: unary("ClearCart", func(s CartServer, ctx context.Context, req *ClearCartRequest) (*CartResponse, error) {
			return s.ClearCart(ctx, req)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "yofoo/cart/v1/cart.json",
}

// unary adapts a typed method to the generic handler shape grpc expects.
func unary[Req any](method string, call func(CartServer, context.Context, *Req) (*CartResponse, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(CartServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*Req))
		})
	}
}
