package binanceclient

import (
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{name: "first attempt is base plus margin", base: 5 * time.Second, attempt: 1, want: 5500 * time.Millisecond},
		{name: "second attempt doubles", base: 5 * time.Second, attempt: 2, want: 11 * time.Second},
		{name: "third attempt doubles again", base: 5 * time.Second, attempt: 3, want: 22 * time.Second},
		{name: "one second base", base: time.Second, attempt: 1, want: 1100 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, backoffDelay(tc.base, tc.attempt))
		})
	}
}

// The default reconnect delay must stay in the seconds range on the first
// retry; a unit slip here turns the retry wait into hours and the stream
// never comes back.
func TestBackoffDelayStaysInRetryRange(t *testing.T) {
	got := backoffDelay(5*time.Second, 1)
	assert.Less(t, got, time.Minute)
	assert.GreaterOrEqual(t, got, 5*time.Second)
}

func TestTranslateAggTrade(t *testing.T) {
	t.Run("valid event", func(t *testing.T) {
		point, err := translateAggTrade(&futures.WsAggTradeEvent{
			Price:     "2345.67",
			TradeTime: 1700000000123,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000), point.Timestamp)
		assert.Equal(t, 2345.67, point.Price)
	})

	t.Run("unparseable price", func(t *testing.T) {
		_, err := translateAggTrade(&futures.WsAggTradeEvent{Price: "not-a-number"})
		assert.Error(t, err)
	})

	t.Run("nil event", func(t *testing.T) {
		_, err := translateAggTrade(nil)
		assert.Error(t, err)
	})
}

func TestTranslateKline(t *testing.T) {
	t.Run("valid kline", func(t *testing.T) {
		point, err := translateKline(&futures.Kline{
			Close:     "99.5",
			CloseTime: 1700000059999,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1700000059), point.Timestamp)
		assert.Equal(t, 99.5, point.Price)
	})

	t.Run("unparseable close", func(t *testing.T) {
		_, err := translateKline(&futures.Kline{Close: "bad"})
		assert.Error(t, err)
	})

	t.Run("nil kline", func(t *testing.T) {
		_, err := translateKline(nil)
		assert.Error(t, err)
	})
}
