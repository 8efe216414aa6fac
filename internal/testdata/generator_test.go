package testdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/triage"
)

func TestDeckIsValidAndCoversEveryCategory(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	d := Deck(now)

	s := cards.NewStore()
	require.NoError(t, s.Load(d))

	for _, cat := range cards.Categories {
		require.NotEmpty(t, s.Query(cat, nil), "category %s", cat)
	}

	readmitted, n := cards.ReadmitElapsed(d, now)
	require.Equal(t, 1, n)
	require.NoError(t, s.Load(readmitted))
	require.Len(t, s.Query(cards.CategoryStatusSeeker, nil), 2)
}

func TestDeckHasRepeatPromoSender(t *testing.T) {
	promo := triage.NewPromoDetector(triage.DefaultPromoKeywords(), 1)
	n := 0
	for _, c := range Deck(time.Now()) {
		if c.SenderDomain() == "techmart-deals.com" {
			n++
		}
	}
	require.GreaterOrEqual(t, n, 3)
	require.True(t, promo.IsPromotional("techmart-deals.com"))
}
