package scryfall

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
)

// BatchFunc 处理一批卡牌
type BatchFunc func(ctx context.Context, cards []*card.Card) error

// StreamCards 流式解析bulk JSON数组,每batchSize张回调一次
// bulk文件有数百MB,不能一次性Unmarshal
func StreamCards(ctx context.Context, r io.Reader, batchSize int, fn BatchFunc) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("read bulk array: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return 0, fmt.Errorf("bulk data must be a JSON array")
	}

	var (
		total int64
		batch = make([]*card.Card, 0, batchSize)
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := fn(ctx, batch); err != nil {
			return err
		}
		total += int64(len(batch))
		batch = make([]*card.Card, 0, batchSize)
		return nil
	}

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		var c Card
		if err := dec.Decode(&c); err != nil {
			return total, fmt.Errorf("decode card #%d: %w", total+int64(len(batch))+1, err)
		}
		if c.ID == "" {
			continue
		}
		batch = append(batch, c.ToDomain())
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
