package rpc

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"kartcore/auth"
	"kartcore/queue"
	"kartcore/rpc/pb"
	"kartcore/store"
)

const (
	authorizationKey  = "authorization"
	successMessage    = "Added order to queue"
	successResultType = "success"
)

// OrderPlacer turns a user's cart into queue admissions.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID string) ([]*queue.Admission, error)
}

// TokenVerifier resolves an Authorization value to a user id.
type TokenVerifier interface {
	VerifyHeader(ctx context.Context, header string) (string, error)
}

// Server implements the kartcore.v1.Reservations service.
type Server struct {
	pb.UnimplementedReservationsServer
	placer OrderPlacer
	tokens TokenVerifier
}

func NewServer(placer OrderPlacer, tokens TokenVerifier) *Server {
	return &Server{placer: placer, tokens: tokens}
}

func (s *Server) PlaceOrder(ctx context.Context, _ *pb.PlaceOrderRequest) (*pb.PlaceOrderResponse, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(authorizationKey); len(v) > 0 {
			header = v[0]
		}
	}
	userID, err := s.tokens.VerifyHeader(ctx, header)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return nil, status.Error(codes.Unauthenticated, "invalid bearer token")
		}
		log.Printf("rpc: verify token: %v", err)
		return nil, status.Error(codes.Internal, "token check failed")
	}

	admissions, err := s.placer.PlaceOrder(ctx, userID)
	if err != nil {
		log.Printf("rpc: place order for %s: %v", userID, err)
		return nil, status.Error(codeFor(err), err.Error())
	}
	res := &pb.PlaceOrderResponse{Type: successResultType, Message: successMessage}
	for _, a := range admissions {
		res.Orders = append(res.Orders, &pb.Admission{
			OrderId:       a.OrderID,
			CaseId:        a.CaseID,
			UserId:        a.UserID,
			QueuePosition: int32(a.Position),
		})
	}
	return res, nil
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, queue.ErrQueueContention):
		return codes.Unavailable
	case errors.Is(err, store.ErrNotFound):
		return codes.NotFound
	}
	return codes.Internal
}
