package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

func TestRun_Usage(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"无命令", nil},
		{"未知命令", []string{"explode"}},
		{"import-csv缺参数", []string{"import-csv", "-bucket", "kiosk"}},
		{"未知flag", []string{"import-cards", "-nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			err := run(context.Background(), tc.args, &stderr)
			assert.ErrorIs(t, err, errUsage)
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestParseCommand_Known(t *testing.T) {
	for _, name := range []string{"refresh-collection-counts", "import-sets", "import-cards", "tail-events"} {
		cmd, err := parseCommand(name, nil, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, cmd, name)
	}

	cmd, err := parseCommand("import-csv", []string{"-bucket", "kiosk", "-file", "cards.csv"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NotNil(t, cmd)
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"inventory.*", "import.completed"}, splitKeys(" inventory.* ,,import.completed"))
	assert.Nil(t, splitKeys(""))
}

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	logger.Init(logger.Config{Level: "info", Format: "json", Output: &buf})
	defer logger.Init(logger.Config{Level: "info"})

	body := []byte(`{"bucket":"kiosk","card_id":"bolt","quantity_regular":2,"quantity_foil":1}`)
	require.NoError(t, logEvent(context.Background(), inventory.EventInventoryChanged, body))
	assert.Contains(t, buf.String(), `"card_id":"bolt"`)

	buf.Reset()
	require.NoError(t, logEvent(context.Background(), inventory.EventImportCompleted, []byte(`{"bucket":"collection","imported":3}`)))
	assert.Contains(t, buf.String(), `"imported":3`)

	// 无法解码的消息不重新入队
	buf.Reset()
	require.NoError(t, logEvent(context.Background(), inventory.EventImportCompleted, []byte(`not json`)))
	assert.Contains(t, buf.String(), zerolog.LevelWarnValue)
}
