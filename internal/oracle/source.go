package oracle

import (
	"context"
	"fmt"
)

// RefKind discriminates oracle reference variants.
type RefKind string

const (
	// RefKindFeed points at a price feed on a remote oracle service.
	RefKindFeed RefKind = "feed"
	// RefKindStub yields a fixed price, for tests and bootstrap baskets.
	RefKindStub RefKind = "stub"
)

// Ref identifies where an asset's price comes from. Stored inside basket
// asset records; immutable once constructed.
type Ref struct {
	Kind      RefKind `json:"kind"`
	FeedID    string  `json:"feedId,omitempty"`
	StubPrice int64   `json:"stubPrice,omitempty"`
	StubExpo  int32   `json:"stubExpo,omitempty"`
}

// FeedRef creates a Ref for a remote price feed.
func FeedRef(feedID string) Ref {
	return Ref{Kind: RefKindFeed, FeedID: feedID}
}

// StubRef creates a Ref that always yields the given price.
func StubRef(price int64, expo int32) Ref {
	return Ref{Kind: RefKindStub, StubPrice: price, StubExpo: expo}
}

// Source resolves an oracle reference to a current price sample. A failed
// query or a missing sample surfaces as an error immediately; the caller
// decides whether to retry the whole operation.
type Source interface {
	QueryPrice(ctx context.Context, ref Ref) (Price, error)
}

// StubSource resolves stub refs without any network access. Feed refs fail
// with ErrNoPrice. Suitable for baskets whose assets are all stub-priced.
type StubSource struct{}

func (StubSource) QueryPrice(_ context.Context, ref Ref) (Price, error) {
	if ref.Kind != RefKindStub {
		return Price{}, fmt.Errorf("feed %s requires a live oracle: %w", ref.FeedID, ErrNoPrice)
	}
	return resolveStub(ref)
}

// resolveStub turns a stub Ref into its fixed price sample.
func resolveStub(ref Ref) (Price, error) {
	if ref.Kind != RefKindStub {
		return Price{}, fmt.Errorf("oracle ref kind %q is not a stub", ref.Kind)
	}
	return Price{Mantissa: ref.StubPrice, Expo: ref.StubExpo}, nil
}
