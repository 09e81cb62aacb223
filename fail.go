package main

import (
	"context"
	"log/slog"

	"cmania/chartdb"
)

// Fail logs a failure and, when store is non-nil, records it for `cmania
// failures`.
func Fail(ctx context.Context, store *chartdb.Store, cat, ref string, reason error) {
	slog.Error("fail", "category", cat, "ref", ref, "err", reason)
	if store == nil {
		return
	}
	if err := store.RecordFailure(ctx, chartdb.Failure{Category: cat, Ref: ref, Reason: reason.Error()}); err != nil {
		slog.Error("record failure", "err", err)
	}
}
