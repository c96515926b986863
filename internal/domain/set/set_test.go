package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(5, 0))
	assert.Equal(t, 50.0, Percentage(1, 2))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 0.0, Percentage(0, 280))
}

func TestNewSummary(t *testing.T) {
	s := NewSummary(Set{Code: "neo", CardCount: 4}, 3)
	assert.Equal(t, int64(3), s.CollectionCount)
	assert.Equal(t, 75.0, s.Percentage)
	assert.Equal(t, "neo", s.Code)
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("", "")
	require.NoError(t, err)
	assert.Equal(t, card.Sort{Field: SortReleasedAt, Order: card.OrderDesc}, s)

	s, err = ParseSort("collection_count", "asc")
	require.NoError(t, err)
	assert.False(t, s.Desc())

	_, err = ParseSort("bogus", "")
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, 400, appErr.HTTPStatus())
	assert.Equal(t, "invalid sort_by field: bogus", appErr.Message)

	// 卡牌字段不在系列白名单中
	_, err = ParseSort("cmc", "")
	assert.Error(t, err)
}
