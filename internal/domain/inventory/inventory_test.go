package inventory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		current  Inventory
		quantity int
		foil     bool
		want     Delta
	}{
		{
			name:     "空库存普通卡:1张进收藏,其余进kiosk",
			quantity: 3,
			want:     Delta{CollectionRegular: 1, KioskRegular: 2},
		},
		{
			name:     "空库存单张普通卡",
			quantity: 1,
			want:     Delta{CollectionRegular: 1},
		},
		{
			name:     "已收藏普通版:全部进kiosk",
			current:  Inventory{CollectionRegular: 1},
			quantity: 2,
			want:     Delta{KioskRegular: 2},
		},
		{
			name:     "已收藏闪卡:普通卡全部进kiosk",
			current:  Inventory{CollectionFoil: 1},
			quantity: 1,
			want:     Delta{KioskRegular: 1},
		},
		{
			name:     "空库存闪卡:1张进收藏闪卡,其余进kiosk闪卡",
			quantity: 3,
			foil:     true,
			want:     Delta{CollectionFoil: 1, KioskFoil: 2},
		},
		{
			name:     "只收藏了普通版:闪卡仍进收藏",
			current:  Inventory{CollectionRegular: 1},
			quantity: 1,
			foil:     true,
			want:     Delta{CollectionFoil: 1},
		},
		{
			name:     "已收藏闪卡:闪卡全部进kiosk",
			current:  Inventory{CollectionFoil: 2, KioskFoil: 4},
			quantity: 2,
			foil:     true,
			want:     Delta{KioskFoil: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.current, tt.quantity, tt.foil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconcile_InvalidQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		_, err := Reconcile(Inventory{}, qty, false)
		assert.True(t, errors.Is(err, ErrInvalidRow), "qty=%d", qty)
	}
}

// 同一行导入两次:第一次进收藏,第二次进kiosk
func TestReconcile_NotIdempotent(t *testing.T) {
	inv := Inventory{}
	for i := 0; i < 2; i++ {
		d, err := Reconcile(inv, 1, false)
		require.NoError(t, err)
		inv, err = inv.Apply(d)
		require.NoError(t, err)
	}
	assert.Equal(t, Inventory{CollectionRegular: 1, KioskRegular: 1}, inv)
}

func TestRouteToKiosk(t *testing.T) {
	d, err := RouteToKiosk(4, true)
	require.NoError(t, err)
	assert.Equal(t, Delta{KioskFoil: 4}, d)

	d, err = RouteToKiosk(2, false)
	require.NoError(t, err)
	assert.Equal(t, Delta{KioskRegular: 2}, d)

	_, err = RouteToKiosk(0, false)
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestPlan(t *testing.T) {
	d, err := Plan(Kiosk, Inventory{}, 2, false)
	require.NoError(t, err)
	assert.Equal(t, Delta{KioskRegular: 2}, d)

	d, err = Plan(Collection, Inventory{}, 2, false)
	require.NoError(t, err)
	assert.Equal(t, Delta{CollectionRegular: 1, KioskRegular: 1}, d)
}

func TestInventory_ApplyNeverNegative(t *testing.T) {
	inv := Inventory{KioskRegular: 1}
	next, err := inv.Apply(Delta{KioskRegular: -2})
	assert.ErrorIs(t, err, ErrNegativeCounter)
	assert.Equal(t, inv, next)

	next, err = inv.Apply(Delta{KioskRegular: -1})
	require.NoError(t, err)
	assert.Equal(t, 0, next.KioskRegular)
}

func TestInventory_With(t *testing.T) {
	inv := Inventory{CollectionRegular: 3, KioskFoil: 1}

	next, err := inv.With(Kiosk, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, Inventory{CollectionRegular: 3, KioskRegular: 2}, next)

	_, err = inv.With(Collection, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.True(t, next.Held(Kiosk))
	assert.False(t, Inventory{}.Held(Collection))
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("Kiosk")
	require.NoError(t, err)
	assert.Equal(t, Kiosk, b)

	_, err = ParseBucket("wishlist")
	assert.ErrorIs(t, err, ErrInvalidBucket)

	reg, foil := Collection.Columns()
	assert.Equal(t, "quantity_collection_regular", reg)
	assert.Equal(t, "quantity_collection_foil", foil)
}

func TestParseFoil(t *testing.T) {
	trueValues := []string{"true", "TRUE", " 1 ", "yes", "Y", "foil", "Foil"}
	for _, v := range trueValues {
		got, err := ParseFoil(v)
		require.NoError(t, err, v)
		assert.True(t, got, v)
	}

	falseValues := []string{"", "  ", "false", "False", "0", "no", "n", "non-foil", "nonfoil", "normal"}
	for _, v := range falseValues {
		got, err := ParseFoil(v)
		require.NoError(t, err, v)
		assert.False(t, got, v)
	}

	for _, v := range []string{"etched", "2", "maybe"} {
		_, err := ParseFoil(v)
		assert.ErrorIs(t, err, ErrInvalidRow, v)
		assert.Equal(t, apperrors.ErrCodeInvalidRow, apperrors.GetAppError(err).Code)
	}
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, v := range []string{"0", "-2", "1.5", "abc", ""} {
		_, err := ParseQuantity(v)
		assert.ErrorIs(t, err, ErrInvalidRow, v)
	}
}

func TestSummarize(t *testing.T) {
	holdings := []Holding{
		{CardID: "a", RegularPrice: decimal.RequireFromString("0.25"), FoilPrice: decimal.RequireFromString("1.10"), Regular: 2, Foil: 1},
		{CardID: "b", RegularPrice: decimal.Zero, FoilPrice: decimal.RequireFromString("3.333"), Foil: 1},
		{CardID: "c", RegularPrice: decimal.RequireFromString("9.99")},
	}

	stats := Summarize(holdings)
	assert.Equal(t, 4, stats.TotalCards)
	assert.Equal(t, 2, stats.UniqueCards)
	// 0.25*2 + 1.10 + 3.333 = 4.933 → 4.93
	assert.Equal(t, 4.93, stats.TotalValue)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
}
