package grpcserver

import (
	"context"
	"log"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"rbstat/service"
)

// Server adapts TreeService to gRPC.
type Server struct {
	svc *service.TreeService
}

var _ TreeServiceServer = (*Server)(nil)

func NewServer(svc *service.TreeService) *Server {
	return &Server{svc: svc}
}

// -------------------- Commands --------------------

func (s *Server) Insert(
	ctx context.Context,
	req *wrapperspb.DoubleValue,
) (*wrapperspb.UInt64Value, error) {
	seq, err := s.svc.Insert(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	log.Printf("[gRPC] Insert value=%v seq=%d", req.GetValue(), seq)

	return wrapperspb.UInt64(seq), nil
}

// -------------------- Queries --------------------

func (s *Server) Preorder(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	return entriesToList(s.svc.Preorder()), nil
}

func (s *Server) Inorder(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	return entriesToList(s.svc.Inorder()), nil
}

func (s *Server) SumOfLeaves(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.DoubleValue, error) {
	return wrapperspb.Double(s.svc.SumOfLeaves()), nil
}

func (s *Server) Average(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.DoubleValue, error) {
	return wrapperspb.Double(s.svc.Average()), nil
}

func (s *Server) Stats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.svc.Stats()
	fields := map[string]any{
		"count":       float64(st.Count),
		"sum":         st.Sum,
		"average":     st.Average,
		"sumOfLeaves": st.SumOfLeaves,
		"height":      float64(st.Height),
		"rotations":   float64(st.Rotations),
		"recolors":    float64(st.Recolors),
		"lastSeq":     float64(st.LastSeq),
	}
	if st.HasRoot {
		fields["root"] = st.Root
		fields["rootColor"] = st.RootColor.String()
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode stats: %v", err)
	}
	return out, nil
}

// -------------------- Converters --------------------

func entriesToList(entries []service.Entry) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(entries))}
	for _, e := range entries {
		out.Values = append(out.Values, structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"value": structpb.NewNumberValue(e.Value),
				"color": structpb.NewStringValue(e.Color.String()),
			},
		}))
	}
	return out
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrNonFinite):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// LogErrors is a unary interceptor that logs failed calls.
func LogErrors(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("[gRPC] %s failed: %v", info.FullMethod, err)
	}
	return resp, err
}
