package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name. Messages are
// protobuf well-known types, so clients in any language can call it with
// nothing but the standard descriptors.
const ServiceName = "rbstat.v1.TreeService"

const (
	methodInsert      = "/" + ServiceName + "/Insert"
	methodPreorder    = "/" + ServiceName + "/Preorder"
	methodInorder     = "/" + ServiceName + "/Inorder"
	methodSumOfLeaves = "/" + ServiceName + "/SumOfLeaves"
	methodAverage     = "/" + ServiceName + "/Average"
	methodStats       = "/" + ServiceName + "/Stats"
)

// TreeServiceServer is the server API for rbstat.v1.TreeService.
type TreeServiceServer interface {
	Insert(context.Context, *wrapperspb.DoubleValue) (*wrapperspb.UInt64Value, error)
	Preorder(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	Inorder(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	SumOfLeaves(context.Context, *emptypb.Empty) (*wrapperspb.DoubleValue, error)
	Average(context.Context, *emptypb.Empty) (*wrapperspb.DoubleValue, error)
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func Register(s grpc.ServiceRegistrar, srv TreeServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed method to grpc.MethodHandler, honoring interceptors.
func unary[Req proto.Message, Resp proto.Message](
	fullMethod string,
	newReq func() Req,
	call func(TreeServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TreeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TreeServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TreeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Insert",
			Handler: unary(methodInsert, func() *wrapperspb.DoubleValue { return new(wrapperspb.DoubleValue) },
				TreeServiceServer.Insert),
		},
		{
			MethodName: "Preorder",
			Handler:    unary(methodPreorder, newEmpty, TreeServiceServer.Preorder),
		},
		{
			MethodName: "Inorder",
			Handler:    unary(methodInorder, newEmpty, TreeServiceServer.Inorder),
		},
		{
			MethodName: "SumOfLeaves",
			Handler:    unary(methodSumOfLeaves, newEmpty, TreeServiceServer.SumOfLeaves),
		},
		{
			MethodName: "Average",
			Handler:    unary(methodAverage, newEmpty, TreeServiceServer.Average),
		},
		{
			MethodName: "Stats",
			Handler:    unary(methodStats, newEmpty, TreeServiceServer.Stats),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rbstat/v1/tree.proto",
}
