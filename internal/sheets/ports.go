package sheets

import (
	"context"

	"rastreador/internal/ledger"
)

// Ports for outbound adapters.
type (
	// SnapshotWriter replaces the remote spreadsheet contents with a full
	// ledger snapshot.
	SnapshotWriter interface {
		WriteSnapshot(ctx context.Context, snap ledger.Snapshot) error
	}
)
