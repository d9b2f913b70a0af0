package notify

import (
	"context"
	"fmt"
	"time"
)

// fallbackWisdom is used when the wisdom table is empty.
var fallbackWisdom = Wisdom{
	TextTH: "แท้จริงการงานทั้งหลายขึ้นอยู่กับเจตนา",
	TextEN: "Verily, actions are judged by intentions.",
	Source: "Sahih al-Bukhari 1",
}

// selectWisdom resolves the daily-wisdom content for the user's local day.
func (d *Dispatcher) selectWisdom(ctx context.Context, localNow time.Time) (*Wisdom, error) {
	return PreviewWisdom(ctx, d.store, localNow)
}

// PreviewWisdom returns the wisdom entry a given local day selects:
// a row pinned to the date wins; otherwise the undated pool is indexed by
// day-of-year modulo pool size, which keeps the pick deterministic for the
// whole day; an empty table falls back to a fixed quote.
func PreviewWisdom(ctx context.Context, store Store, day time.Time) (*Wisdom, error) {
	localDate := day.Format(localDateLayout)

	pinned, err := store.WisdomPinned(ctx, localDate)
	if err != nil {
		return nil, fmt.Errorf("pinned wisdom: %w", err)
	}
	if pinned != nil {
		return pinned, nil
	}

	pool, err := store.WisdomPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("wisdom pool: %w", err)
	}
	if len(pool) == 0 {
		w := fallbackWisdom
		return &w, nil
	}

	return &pool[day.YearDay()%len(pool)], nil
}
