package set

import (
	"context"

	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
)

// Repository 系列仓储接口
type Repository interface {
	// FindByCode 根据系列代码查找(大小写不敏感)
	FindByCode(ctx context.Context, code string) (*Set, error)

	// List 系列列表(带收藏数量与完成度)
	List(ctx context.Context, params ListParams) ([]*Summary, int64, error)

	// UpsertBatch 目录导入:按ID插入或覆盖
	UpsertBatch(ctx context.Context, sets []*Set) (int64, error)
}

// CollectionCountRepository 系列收藏数量聚合(set_collection_counts)
// 设计说明:
// 1. Refresh在一个事务内DELETE + INSERT ... SELECT ... GROUP BY全量重算
// 2. 读取时聚合行缺失则回退到实时SUM,两条路径公式一致
type CollectionCountRepository interface {
	// Refresh 全量重算,返回写入的系列数
	Refresh(ctx context.Context) (int64, error)

	// Count 某系列在桶中的数量
	// collection桶优先读聚合表,kiosk桶实时计算
	Count(ctx context.Context, setCode string, bucket inventory.Bucket) (int64, error)
}
