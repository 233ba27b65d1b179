package volume

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"paygate/pkg/domain"
)

// Store is the contract the backed store decorates. The memory and Redis
// stores both satisfy it.
type Store interface {
	Volume(ctx context.Context, addr domain.Address) (decimal.Decimal, error)
	Add(ctx context.Context, addr domain.Address, amount decimal.Decimal) (decimal.Decimal, error)
}

// SnapshotSource reports an address's daily volume as the backend sees it.
type SnapshotSource interface {
	DailyVolume(ctx context.Context, address domain.Address) (decimal.Decimal, error)
}

// BackedStore layers a backend volume snapshot over a local store. A fresh
// process starts with an empty local window, so payments dispatched before
// the restart would not count against the daily limit; the snapshot keeps the
// limit honest until the local window catches up. Reads return whichever
// total is higher, writes stay local.
type BackedStore struct {
	local     Store
	snapshots SnapshotSource
	logger    *slog.Logger
}

func NewBacked(local Store, snapshots SnapshotSource, logger *slog.Logger) *BackedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackedStore{local: local, snapshots: snapshots, logger: logger}
}

func (s *BackedStore) Volume(ctx context.Context, addr domain.Address) (decimal.Decimal, error) {
	local, err := s.local.Volume(ctx, addr)
	if err != nil {
		return decimal.Zero, err
	}

	snapshot, err := s.snapshots.DailyVolume(ctx, addr)
	if err != nil {
		s.logger.WarnContext(ctx, "volume snapshot unavailable, using local window",
			"address", addr,
			"error", err,
		)
		return local, nil
	}
	if snapshot.GreaterThan(local) {
		return snapshot, nil
	}
	return local, nil
}

func (s *BackedStore) Add(ctx context.Context, addr domain.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.local.Add(ctx, addr, amount)
}
