package grpcserver

import (
	"context"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"rbstat/domain/rbtree"
	"rbstat/service"
)

// Client is a typed client for rbstat.v1.TreeService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Insert(ctx context.Context, value float64, opts ...grpc.CallOption) (uint64, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, methodInsert, wrapperspb.Double(value), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) Preorder(ctx context.Context, opts ...grpc.CallOption) ([]service.Entry, error) {
	return c.entries(ctx, methodPreorder, opts...)
}

func (c *Client) Inorder(ctx context.Context, opts ...grpc.CallOption) ([]service.Entry, error) {
	return c.entries(ctx, methodInorder, opts...)
}

func (c *Client) SumOfLeaves(ctx context.Context, opts ...grpc.CallOption) (float64, error) {
	return c.double(ctx, methodSumOfLeaves, opts...)
}

func (c *Client) Average(ctx context.Context, opts ...grpc.CallOption) (float64, error) {
	return c.double(ctx, methodAverage, opts...)
}

// Stats returns the server summary as a plain map (numbers are float64).
func (c *Client) Stats(ctx context.Context, opts ...grpc.CallOption) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodStats, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *Client) double(ctx context.Context, method string, opts ...grpc.CallOption) (float64, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, method, new(emptypb.Empty), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) entries(ctx context.Context, method string, opts ...grpc.CallOption) ([]service.Entry, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, method, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	entries := make([]service.Entry, 0, len(out.GetValues()))
	for i, v := range out.GetValues() {
		fields := v.GetStructValue().GetFields()
		color, err := parseColor(fields["color"].GetStringValue())
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		entries = append(entries, service.Entry{
			Value: fields["value"].GetNumberValue(),
			Color: color,
		})
	}
	return entries, nil
}

func parseColor(s string) (rbtree.Color, error) {
	switch s {
	case "RED":
		return rbtree.Red, nil
	case "BLACK":
		return rbtree.Black, nil
	default:
		return 0, errors.Newf("unknown color %q", s)
	}
}
