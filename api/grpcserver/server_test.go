package grpcserver_test

import (
	"context"
	"math"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"rbstat/api/grpcserver"
	"rbstat/domain/rbtree"
	"rbstat/service"
)

func newClient(t *testing.T) (*grpcserver.Client, *service.TreeService) {
	t.Helper()

	svc := service.NewTreeService(nil, nil, nil, nil, nil, nil)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LogErrors))
	grpcserver.Register(srv, grpcserver.NewServer(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return grpcserver.NewClient(conn), svc
}

func TestInsertAndTraversals(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	for i, v := range []float64{10, 20, 30, 40} {
		seq, err := client.Insert(ctx, v)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), seq)
	}

	pre, err := client.Preorder(ctx)
	require.NoError(t, err)
	require.Equal(t, []service.Entry{
		{Value: 20, Color: rbtree.Black},
		{Value: 10, Color: rbtree.Black},
		{Value: 30, Color: rbtree.Black},
		{Value: 40, Color: rbtree.Red},
	}, pre)

	in, err := client.Inorder(ctx)
	require.NoError(t, err)
	require.Equal(t, []service.Entry{
		{Value: 10, Color: rbtree.Black},
		{Value: 20, Color: rbtree.Black},
		{Value: 30, Color: rbtree.Black},
		{Value: 40, Color: rbtree.Red},
	}, in)

	leaves, err := client.SumOfLeaves(ctx)
	require.NoError(t, err)
	require.Equal(t, 50.0, leaves)

	avg, err := client.Average(ctx)
	require.NoError(t, err)
	require.Equal(t, 25.0, avg)
}

func TestEmptyTreeOverTheWire(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	pre, err := client.Preorder(ctx)
	require.NoError(t, err)
	require.Empty(t, pre)

	avg, err := client.Average(ctx)
	require.NoError(t, err)
	require.Zero(t, avg)

	st, err := client.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.0, st["count"])
	require.NotContains(t, st, "root")
}

func TestInsertNonFiniteIsInvalidArgument(t *testing.T) {
	client, svc := newClient(t)

	_, err := client.Insert(context.Background(), math.NaN())
	require.Error(t, err)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Zero(t, svc.Len())
}

func TestStats(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	for _, v := range []float64{10, 20, 30} {
		_, err := client.Insert(ctx, v)
		require.NoError(t, err)
	}

	st, err := client.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3.0, st["count"])
	require.Equal(t, 60.0, st["sum"])
	require.Equal(t, 20.0, st["average"])
	require.Equal(t, 40.0, st["sumOfLeaves"])
	require.Equal(t, 2.0, st["height"])
	require.Equal(t, 20.0, st["root"])
	require.Equal(t, "BLACK", st["rootColor"])
	require.Equal(t, 1.0, st["rotations"])
	require.Equal(t, 3.0, st["lastSeq"])
}
