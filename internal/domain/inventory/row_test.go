package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{
	"\ufeffName", "Edition", "Edition code", "Collector's number",
	"Price", "Foil", "Currency", "Scryfall ID", "Quantity", "Extra",
}

func TestMissingColumns(t *testing.T) {
	assert.Empty(t, MissingColumns(header))

	missing := MissingColumns([]string{"Name", "Foil", "Quantity"})
	assert.Equal(t, []string{ColEdition, ColEditionCode, ColCollectorNumber, ColPrice, ColCurrency, ColScryfallID}, missing)
}

func TestParseRow(t *testing.T) {
	idx := HeaderIndex(header)
	record := []string{"Lightning Bolt", "Magic 2010", "m10", "146", "1.00", "foil", "USD", " abc-123 ", "3", "x"}

	row, err := ParseRow(2, record, idx)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "Lightning Bolt", row.Name)
	assert.Equal(t, "abc-123", row.ScryfallID)
	assert.True(t, row.Foil)
	assert.Equal(t, 3, row.Quantity)
}

func TestParseRow_Invalid(t *testing.T) {
	idx := HeaderIndex(header)

	tests := map[string][]string{
		"missing id":   {"Bolt", "", "", "", "", "", "", "", "1", ""},
		"bad quantity": {"Bolt", "", "", "", "", "", "", "id", "zero", ""},
		"bad foil":     {"Bolt", "", "", "", "", "etched", "", "id", "1", ""},
	}
	for name, record := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRow(5, record, idx)
			assert.ErrorIs(t, err, ErrInvalidRow)
		})
	}
}
