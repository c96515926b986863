package inventory

// Inventory 单张卡牌的四个库存计数
// 业务规则:
// 1. 四个计数独立可变,均不能为负
// 2. 不存在"收藏最多1张"的存储约束,只是导入策略倾向于收藏1张
type Inventory struct {
	CollectionRegular int `json:"quantity_collection_regular"`
	CollectionFoil    int `json:"quantity_collection_foil"`
	KioskRegular      int `json:"quantity_kiosk_regular"`
	KioskFoil         int `json:"quantity_kiosk_foil"`
}

// Delta 计数增量(只做加法,从不覆盖)
type Delta struct {
	CollectionRegular int
	CollectionFoil    int
	KioskRegular      int
	KioskFoil         int
}

// IsZero 增量是否为空
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Reconcile 计算一行导入数据的库存增量
// 规则(收藏优先拿第一张):
//   - 闪卡: 收藏里已有闪卡 → 全部进kiosk_foil;否则1张进collection_foil,其余进kiosk_foil
//   - 普通: 收藏里已有任意版本(普通或闪卡) → 全部进kiosk_regular;
//     否则1张进collection_regular,其余进kiosk_regular
//
// 同一张卡导入两次不是幂等的:第二次全部进入kiosk
func Reconcile(current Inventory, quantity int, foil bool) (Delta, error) {
	if quantity < 1 {
		return Delta{}, InvalidRowf("quantity must be a positive integer, got %d", quantity)
	}

	if foil {
		if current.CollectionFoil >= 1 {
			return Delta{KioskFoil: quantity}, nil
		}
		return Delta{CollectionFoil: 1, KioskFoil: quantity - 1}, nil
	}

	if current.CollectionRegular >= 1 || current.CollectionFoil >= 1 {
		return Delta{KioskRegular: quantity}, nil
	}
	return Delta{CollectionRegular: 1, KioskRegular: quantity - 1}, nil
}

// RouteToKiosk kiosk导入:全部数量进入对应的kiosk计数
func RouteToKiosk(quantity int, foil bool) (Delta, error) {
	if quantity < 1 {
		return Delta{}, InvalidRowf("quantity must be a positive integer, got %d", quantity)
	}
	if foil {
		return Delta{KioskFoil: quantity}, nil
	}
	return Delta{KioskRegular: quantity}, nil
}

// Plan 按桶选择导入策略
func Plan(bucket Bucket, current Inventory, quantity int, foil bool) (Delta, error) {
	if bucket == Kiosk {
		return RouteToKiosk(quantity, foil)
	}
	return Reconcile(current, quantity, foil)
}

// Apply 应用增量,任一计数变负则返回错误且不修改
func (inv Inventory) Apply(d Delta) (Inventory, error) {
	next := Inventory{
		CollectionRegular: inv.CollectionRegular + d.CollectionRegular,
		CollectionFoil:    inv.CollectionFoil + d.CollectionFoil,
		KioskRegular:      inv.KioskRegular + d.KioskRegular,
		KioskFoil:         inv.KioskFoil + d.KioskFoil,
	}
	if !next.Valid() {
		return inv, ErrNegativeCounter
	}
	return next, nil
}

// Valid 所有计数非负
func (inv Inventory) Valid() bool {
	return inv.CollectionRegular >= 0 && inv.CollectionFoil >= 0 &&
		inv.KioskRegular >= 0 && inv.KioskFoil >= 0
}

// Get 读取某个桶的(普通, 闪卡)计数
func (inv Inventory) Get(b Bucket) (regular, foil int) {
	if b == Kiosk {
		return inv.KioskRegular, inv.KioskFoil
	}
	return inv.CollectionRegular, inv.CollectionFoil
}

// With 返回设置了某个桶绝对值后的库存
func (inv Inventory) With(b Bucket, regular, foil int) (Inventory, error) {
	if regular < 0 || foil < 0 {
		return inv, ErrInvalidQuantity
	}
	if b == Kiosk {
		inv.KioskRegular, inv.KioskFoil = regular, foil
	} else {
		inv.CollectionRegular, inv.CollectionFoil = regular, foil
	}
	return inv, nil
}

// Held 该桶中是否持有至少一张
func (inv Inventory) Held(b Bucket) bool {
	r, f := inv.Get(b)
	return r > 0 || f > 0
}
