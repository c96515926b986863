package inventory

import "strings"

// Bucket 库存桶
// collection: 个人收藏; kiosk: 店面待售
type Bucket string

const (
	Collection Bucket = "collection"
	Kiosk      Bucket = "kiosk"
)

// ParseBucket 解析桶名(大小写不敏感)
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(strings.ToLower(strings.TrimSpace(s))) {
	case Collection:
		return Collection, nil
	case Kiosk:
		return Kiosk, nil
	default:
		return "", ErrInvalidBucket
	}
}

func (b Bucket) String() string {
	return string(b)
}

// Valid 是否为已知桶
func (b Bucket) Valid() bool {
	return b == Collection || b == Kiosk
}

// Columns 该桶对应的(普通, 闪卡)计数列名
func (b Bucket) Columns() (regular, foil string) {
	if b == Kiosk {
		return "quantity_kiosk_regular", "quantity_kiosk_foil"
	}
	return "quantity_collection_regular", "quantity_collection_foil"
}
