package card

import (
	"context"
)

// Repository 卡牌仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 排序字段在进入仓储前已通过白名单校验,仓储只负责映射到列表达式
type Repository interface {
	// FindByID 根据Scryfall ID查找
	FindByID(ctx context.Context, id string) (*Card, error)

	// FindByIDs 批量查找,不存在的ID被忽略
	FindByIDs(ctx context.Context, ids []string) ([]*Card, error)

	// List 过滤+排序+分页
	List(ctx context.Context, params ListParams) ([]*Card, int64, error)

	// ListBySet 某系列全部卡牌(收集编号自然排序)
	ListBySet(ctx context.Context, setCode string) ([]*Card, error)

	// Keywords 所有卡牌关键字去重排序
	Keywords(ctx context.Context) ([]string, error)

	// UpsertBatch 目录导入:按ID插入或覆盖参考属性,库存计数保持不变
	UpsertBatch(ctx context.Context, cards []*Card) (int64, error)
}
