package inventory

import (
	"context"
)

// Repository 库存仓储接口
// 设计说明:
// 1. 计数存放在cards表的四个列上,这里只暴露计数相关操作
// 2. LockByID/ApplyDelta需要在TxManager.Transaction内调用
type Repository interface {
	// LockByID 悲观锁读取计数(SELECT ... FOR UPDATE)
	// 卡牌不存在返回card.ErrCardNotFound
	LockByID(ctx context.Context, cardID string) (Inventory, error)

	// ApplyDelta 原子增量更新(col = col + ?),任何计数不会变负
	ApplyDelta(ctx context.Context, cardID string, delta Delta) error

	// SetQuantities 设置某个桶的绝对数量
	SetQuantities(ctx context.Context, cardID string, bucket Bucket, regular, foil int) error

	// Holdings 读取桶中所有持有记录(统计用)
	Holdings(ctx context.Context, bucket Bucket) ([]Holding, error)
}

// TxManager 事务管理器接口
// fn返回error时回滚,返回nil时提交;fn内的仓储调用共享同一事务
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
