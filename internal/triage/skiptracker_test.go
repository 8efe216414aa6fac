package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSkipTracker(t *testing.T) {
	s := NewSkipTracker()
	require.Equal(t, 1, s.Increment("TechMart.com"))
	require.Equal(t, 2, s.Increment("techmart.com "))
	require.Equal(t, 0, s.Increment(""))
	require.Equal(t, 2, s.Count("techmart.com"))
	require.Equal(t, 0, s.Count("other.example"))
}

func TestPromoDetector(t *testing.T) {
	p := NewPromoDetector(DefaultPromoKeywords(), 1)
	cases := []struct {
		sender string
		want   bool
	}{
		{"techmart-deals.com", true},
		{"news@weekly-offers.example", true},
		{"noreply@bank.example", false},
		{"newsletter@gmail.com", false},
		{"deals@techmart.com", false},
		{"hello@summersale.shop", true},
		{"team@offer.example", true},
		{"digest@newsleter.example", true},
		{"anderson@riverside-elem.edu", false},
		{"hello@bookshop.example", false},
		{"admin@yale.edu", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, p.IsPromotional(tc.sender), tc.sender)
	}

	exact := NewPromoDetector([]string{" Deals "}, 0)
	require.True(t, exact.IsPromotional("deals.example"))
	require.False(t, exact.IsPromotional("deal.example"))

	var none *PromoDetector
	require.False(t, none.IsPromotional("techmart-deals.com"))
}

func TestTimers(t *testing.T) {
	tm := NewTimers()
	a := tm.Schedule(TimerAdvance, 300*time.Millisecond, "c1")
	b := tm.Schedule(TimerUndoExpiry, 3*time.Second, "c1")
	c := tm.Schedule(TimerUndoExpiry, 3*time.Second, "c2")
	require.True(t, a < b && b < c)

	require.True(t, tm.Cancel(b))
	require.False(t, tm.Cancel(b))

	taken := tm.Take()
	require.Len(t, taken, 2)
	require.Equal(t, a, taken[0].ID)
	require.Equal(t, c, taken[1].ID)
	require.Empty(t, tm.Take())

	_, ok := tm.Fire(b)
	require.False(t, ok, "cancelled timers never fire")
	fired, ok := tm.Fire(c)
	require.True(t, ok)
	require.Equal(t, "c2", fired.CardID)
	_, ok = tm.Fire(c)
	require.False(t, ok, "timers fire once")

	require.Equal(t, 1, tm.Pending(TimerAdvance))
	tm.CancelAll()
	require.Zero(t, tm.Pending(TimerAdvance))
}
