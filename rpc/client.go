package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"kartcore/rpc/pb"
)

// Client calls the reservation service on behalf of a token holder.
type Client struct {
	rc pb.ReservationsClient
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{rc: pb.NewReservationsClient(cc)}
}

// PlaceOrder places the token owner's cart.
func (c *Client) PlaceOrder(ctx context.Context, token string) (*pb.PlaceOrderResponse, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, authorizationKey, "Bearer "+token)
	return c.rc.PlaceOrder(ctx, &pb.PlaceOrderRequest{})
}
