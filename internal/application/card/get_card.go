package card

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/mtgkiosk/pkg/cachekey"
)

// MaxBulkIDs 单次批量查询的ID上限
const MaxBulkIDs = 500

// GetCardUseCase 单卡查询(mtg:card:{id}缓存,与批量查询共用)
type GetCardUseCase struct {
	cards card.Repository
	cache redis.Cache
	ttl   time.Duration
}

// NewGetCardUseCase 创建单卡查询用例
func NewGetCardUseCase(cards card.Repository, cache redis.Cache, ttl time.Duration) *GetCardUseCase {
	return &GetCardUseCase{cards: cards, cache: cache, ttl: ttl}
}

// Execute bypass=true时跳过缓存读取(结果仍然写回)
func (uc *GetCardUseCase) Execute(ctx context.Context, id string, bypass bool) (*card.Card, error) {
	id = strings.TrimSpace(id)
	key := cachekey.Card(id)

	if !bypass {
		var cached card.Card
		if uc.cache.GetJSON(ctx, key, &cached) {
			return &cached, nil
		}
	}

	c, err := uc.cards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.cache.SetJSON(ctx, key, c, uc.ttl)
	return c, nil
}

// BulkCardsUseCase 批量查询
type BulkCardsUseCase struct {
	cards card.Repository
	cache redis.Cache
	ttl   time.Duration
}

// NewBulkCardsUseCase 创建批量查询用例
func NewBulkCardsUseCase(cards card.Repository, cache redis.Cache, ttl time.Duration) *BulkCardsUseCase {
	return &BulkCardsUseCase{cards: cards, cache: cache, ttl: ttl}
}

// Execute 按请求顺序返回,不存在的ID被忽略,重复ID只返回一次
// 先逐个读缓存,未命中的一次性查库再回填
func (uc *BulkCardsUseCase) Execute(ctx context.Context, ids []string) ([]*card.Card, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, card.ErrEmptyCardIDs
	}
	if len(ids) > MaxBulkIDs {
		return nil, card.ErrTooManyCardIDs
	}

	found := make(map[string]*card.Card, len(ids))
	var missing []string
	for _, id := range ids {
		var cached card.Card
		if uc.cache.GetJSON(ctx, cachekey.Card(id), &cached) {
			found[id] = &cached
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		loaded, err := uc.cards.FindByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, c := range loaded {
			found[c.ID] = c
			uc.cache.SetJSON(ctx, cachekey.Card(c.ID), c, uc.ttl)
		}
	}

	out := make([]*card.Card, 0, len(found))
	for _, id := range ids {
		if c, ok := found[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// KeywordsUseCase 关键字列表
type KeywordsUseCase struct {
	cards card.Repository
}

// NewKeywordsUseCase 创建关键字用例
func NewKeywordsUseCase(cards card.Repository) *KeywordsUseCase {
	return &KeywordsUseCase{cards: cards}
}

// Execute 去重排序后的全部关键字
func (uc *KeywordsUseCase) Execute(ctx context.Context) ([]string, error) {
	keywords, err := uc.cards.Keywords(ctx)
	if err != nil {
		return nil, err
	}
	if keywords == nil {
		keywords = []string{}
	}
	return keywords, nil
}
