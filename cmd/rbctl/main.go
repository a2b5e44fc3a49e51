// Command rbctl is a one-shot client for the rbstat gRPC service.
//
//	rbctl [-addr host:port] insert 10 20 30
//	rbctl preorder | inorder | leaves | avg | stats
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"rbstat/api/grpcserver"
	"rbstat/service"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "rbstat gRPC address")
	timeout := flag.Duration("timeout", 5*time.Second, "per-command deadline")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("dial %s: %v", *addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, grpcserver.NewClient(conn), flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func run(ctx context.Context, c *grpcserver.Client, cmd string, args []string) error {
	switch cmd {
	case "insert":
		if len(args) == 0 {
			return errors.New("need at least one value")
		}
		for _, a := range args {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return errors.Wrapf(err, "parse %q", a)
			}
			seq, err := c.Insert(ctx, v)
			if err != nil {
				return err
			}
			fmt.Printf("inserted %v (seq %d)\n", v, seq)
		}
	case "preorder":
		entries, err := c.Preorder(ctx)
		if err != nil {
			return err
		}
		printEntries(entries)
	case "inorder":
		entries, err := c.Inorder(ctx)
		if err != nil {
			return err
		}
		printEntries(entries)
	case "leaves":
		v, err := c.SumOfLeaves(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "avg":
		v, err := c.Average(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
	case "stats":
		st, err := c.Stats(ctx)
		if err != nil {
			return err
		}
		for _, k := range slices.Sorted(maps.Keys(st)) {
			fmt.Printf("%-12s %v\n", k, st[k])
		}
	default:
		usage()
		return errors.Newf("unknown command %q", cmd)
	}
	return nil
}

func printEntries(entries []service.Entry) {
	if len(entries) == 0 {
		fmt.Println("(empty)")
		return
	}
	for _, e := range entries {
		fmt.Printf("%v (%s)\n", e.Value, e.Color)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: rbctl [-addr host:port] insert V... | preorder | inorder | leaves | avg | stats\n")
}
