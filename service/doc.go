// Package service orchestrates the tree, the insert journal, the outbox
// and snapshots.
//
// It provides the single write entry point and consistent read queries,
// decoupled from transports like gRPC.
package service
