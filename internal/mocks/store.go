package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/xiebiao/mtgkiosk/internal/domain/card"
	"github.com/xiebiao/mtgkiosk/internal/domain/inventory"
	"github.com/xiebiao/mtgkiosk/internal/domain/set"
)

// Store 内存仓储
type Store struct {
	mu     sync.Mutex
	cards  map[string]*card.Card
	sets   map[string]*set.Set
	counts map[string]int64 // 聚合表:set_code → collection_count

	// 错误注入
	ApplyErr   error
	RefreshErr error

	RefreshCalls     int
	TransactionCalls int
}

// NewStore 创建内存仓储
func NewStore() *Store {
	return &Store{
		cards:  make(map[string]*card.Card),
		sets:   make(map[string]*set.Set),
		counts: make(map[string]int64),
	}
}

// AddCards 预置卡牌
func (s *Store) AddCards(cards ...*card.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		s.cards[c.ID] = cloneCard(c)
	}
}

// AddSets 预置系列
func (s *Store) AddSets(sets ...*set.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range sets {
		cp := *st
		s.sets[strings.ToLower(st.Code)] = &cp
	}
}

// Inventory 读取某张卡当前计数(断言用)
func (s *Store) Inventory(id string) inventory.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cards[id]; ok {
		return c.Inventory
	}
	return inventory.Inventory{}
}

// AggregateCount 聚合表中的数量(断言用)
func (s *Store) AggregateCount(code string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.counts[strings.ToLower(code)]
	return n, ok
}

// =========================================
// TxManager
// =========================================

// Transaction fn返回错误时恢复进入事务前的计数
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.TransactionCalls++
	snapshot := make(map[string]inventory.Inventory, len(s.cards))
	for id, c := range s.cards {
		snapshot[id] = c.Inventory
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		for id, inv := range snapshot {
			if c, ok := s.cards[id]; ok {
				c.Inventory = inv
			}
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// =========================================
// card.Repository
// =========================================

func (s *Store) FindByID(_ context.Context, id string) (*card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, card.ErrCardNotFound
	}
	return cloneCard(c), nil
}

func (s *Store) FindByIDs(_ context.Context, ids []string) ([]*card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*card.Card
	for _, id := range ids {
		if c, ok := s.cards[id]; ok {
			out = append(out, cloneCard(c))
		}
	}
	return out, nil
}

func (s *Store) List(_ context.Context, params card.ListParams) ([]*card.Card, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*card.Card
	for _, c := range s.cards {
		if matches(c, params.Filter) {
			matched = append(matched, c)
		}
	}
	sortCards(matched, params.Sort)
	return paginate(matched, params.Pagination), int64(len(matched)), nil
}

func (s *Store) ListBySet(_ context.Context, setCode string) ([]*card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*card.Card
	for _, c := range s.cards {
		if strings.EqualFold(c.SetCode, setCode) {
			out = append(out, cloneCard(c))
		}
	}
	sortCards(out, card.Sort{Field: card.SortCollectorNumber, Order: card.OrderAsc})
	return out, nil
}

func (s *Store) Keywords(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	for _, c := range s.cards {
		for _, k := range c.Keywords {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// UpsertBatch 覆盖参考属性,保留计数
func (s *Store) UpsertBatch(_ context.Context, cards []*card.Card) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		next := cloneCard(c)
		if old, ok := s.cards[c.ID]; ok {
			next.Inventory = old.Inventory
		} else {
			next.Inventory = inventory.Inventory{}
		}
		s.cards[c.ID] = next
	}
	return int64(len(cards)), nil
}

// =========================================
// inventory.Repository
// =========================================

func (s *Store) LockByID(_ context.Context, cardID string) (inventory.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[cardID]
	if !ok {
		return inventory.Inventory{}, card.ErrCardNotFound
	}
	return c.Inventory, nil
}

func (s *Store) ApplyDelta(_ context.Context, cardID string, delta inventory.Delta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ApplyErr != nil {
		return s.ApplyErr
	}
	c, ok := s.cards[cardID]
	if !ok {
		return card.ErrCardNotFound
	}
	next, err := c.Inventory.Apply(delta)
	if err != nil {
		return err
	}
	c.Inventory = next
	return nil
}

func (s *Store) SetQuantities(_ context.Context, cardID string, bucket inventory.Bucket, regular, foil int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ApplyErr != nil {
		return s.ApplyErr
	}
	c, ok := s.cards[cardID]
	if !ok {
		return card.ErrCardNotFound
	}
	next, err := c.Inventory.With(bucket, regular, foil)
	if err != nil {
		return err
	}
	c.Inventory = next
	return nil
}

func (s *Store) Holdings(_ context.Context, bucket inventory.Bucket) ([]inventory.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []inventory.Holding
	for _, c := range s.cards {
		if c.Held(bucket) {
			out = append(out, c.Holding(bucket))
		}
	}
	return out, nil
}

// =========================================
// set.Repository / set.CollectionCountRepository
// =========================================

// Sets 返回set.Repository视图(方法名与card.Repository冲突)
func (s *Store) Sets() *SetStore {
	return &SetStore{s: s}
}

// Refresh 全量重算聚合表
func (s *Store) Refresh(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RefreshCalls++
	if s.RefreshErr != nil {
		return 0, s.RefreshErr
	}

	s.counts = make(map[string]int64)
	for _, c := range s.cards {
		s.counts[strings.ToLower(c.SetCode)] += int64(c.CollectionRegular + c.CollectionFoil)
	}
	return int64(len(s.counts)), nil
}

// Count collection优先读聚合表,缺失时实时计算;kiosk总是实时计算
func (s *Store) Count(_ context.Context, setCode string, bucket inventory.Bucket) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(setCode, bucket), nil
}

func (s *Store) countLocked(setCode string, bucket inventory.Bucket) int64 {
	code := strings.ToLower(setCode)
	if bucket != inventory.Kiosk {
		if n, ok := s.counts[code]; ok {
			return n
		}
	}
	var n int64
	for _, c := range s.cards {
		if strings.EqualFold(c.SetCode, code) {
			r, f := c.Get(bucket)
			n += int64(r + f)
		}
	}
	return n
}

// SetStore set.Repository实现
type SetStore struct {
	s *Store
}

func (ss *SetStore) FindByCode(_ context.Context, code string) (*set.Set, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	st, ok := ss.s.sets[strings.ToLower(code)]
	if !ok {
		return nil, set.ErrSetNotFound
	}
	cp := *st
	return &cp, nil
}

func (ss *SetStore) List(_ context.Context, params set.ListParams) ([]*set.Summary, int64, error) {
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := params.Bucket
	if bucket == "" {
		bucket = inventory.Collection
	}

	var out []*set.Summary
	for code, st := range s.sets {
		if params.Filter.Name != "" && !containsFold(st.Name, params.Filter.Name) {
			continue
		}
		if params.Filter.SetType != "" && st.SetType != params.Filter.SetType {
			continue
		}
		if params.Bucket != "" && !s.heldInSet(code, params.Bucket) {
			continue
		}
		out = append(out, set.NewSummary(*st, s.countLocked(code, bucket)))
	}

	sortSets(out, params.Sort)
	total := int64(len(out))

	start := params.Pagination.Offset()
	if start >= len(out) {
		return []*set.Summary{}, total, nil
	}
	end := start + params.Pagination.PerPage
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (ss *SetStore) UpsertBatch(_ context.Context, sets []*set.Set) (int64, error) {
	ss.s.AddSets(sets...)
	return int64(len(sets)), nil
}

func (s *Store) heldInSet(code string, bucket inventory.Bucket) bool {
	for _, c := range s.cards {
		if strings.EqualFold(c.SetCode, code) && c.Held(bucket) {
			return true
		}
	}
	return false
}

// =========================================
// 过滤/排序
// =========================================

func matches(c *card.Card, f card.Filter) bool {
	if f.Name != "" && !containsFold(c.Name, f.Name) {
		return false
	}
	if f.SetCode != "" && !strings.EqualFold(c.SetCode, f.SetCode) {
		return false
	}
	if len(f.Rarities) > 0 && !containsAny([]string{c.Rarity}, f.Rarities) {
		return false
	}
	if len(f.Colors) > 0 || f.Colorless {
		colorMatch := len(f.Colors) > 0 && containsAny(c.Colors, f.Colors)
		colorlessMatch := f.Colorless && len(c.Colors) == 0
		if !colorMatch && !colorlessMatch {
			return false
		}
	}
	if f.TypeLine != "" && !containsFold(c.TypeLine, f.TypeLine) {
		return false
	}
	for _, k := range f.Keywords {
		if !containsAny(c.Keywords, []string{k}) {
			return false
		}
	}
	if f.Query != "" && !containsFold(c.Name, f.Query) && !containsFold(c.TypeLine, f.Query) && !containsFold(c.OracleText, f.Query) {
		return false
	}
	if f.Bucket != "" && !c.Held(f.Bucket) {
		return false
	}
	return true
}

func sortCards(cards []*card.Card, s card.Sort) {
	less := func(a, b *card.Card) bool {
		switch s.Field {
		case card.SortCollectorNumber:
			if len(a.CollectorNumber) != len(b.CollectorNumber) {
				return len(a.CollectorNumber) < len(b.CollectorNumber)
			}
			return a.CollectorNumber < b.CollectorNumber
		case card.SortCMC:
			return a.CMC < b.CMC
		case card.SortRarity:
			return a.Rarity < b.Rarity
		case card.SortSetCode:
			return a.SetCode < b.SetCode
		case card.SortReleasedAt:
			return timeOf(a) < timeOf(b)
		default:
			return a.Name < b.Name
		}
	}
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if less(a, b) {
			return !s.Desc()
		}
		if less(b, a) {
			return s.Desc()
		}
		return a.ID < b.ID
	})
}

func sortSets(sets []*set.Summary, s card.Sort) {
	less := func(a, b *set.Summary) bool {
		switch s.Field {
		case set.SortName:
			return a.Name < b.Name
		case set.SortCollectionCount:
			return a.CollectionCount < b.CollectionCount
		case set.SortCardCount:
			return a.CardCount < b.CardCount
		default:
			var at, bt int64
			if a.ReleasedAt != nil {
				at = a.ReleasedAt.Unix()
			}
			if b.ReleasedAt != nil {
				bt = b.ReleasedAt.Unix()
			}
			return at < bt
		}
	}
	sort.SliceStable(sets, func(i, j int) bool {
		a, b := sets[i], sets[j]
		if less(a, b) {
			return !s.Desc()
		}
		if less(b, a) {
			return s.Desc()
		}
		return a.Code < b.Code
	})
}

func paginate(cards []*card.Card, p card.Pagination) []*card.Card {
	out := []*card.Card{}
	start := p.Offset()
	if start >= len(cards) {
		return out
	}
	end := start + p.PerPage
	if end > len(cards) {
		end = len(cards)
	}
	for _, c := range cards[start:end] {
		out = append(out, cloneCard(c))
	}
	return out
}

func timeOf(c *card.Card) int64 {
	if c.ReleasedAt == nil {
		return 0
	}
	return c.ReleasedAt.Unix()
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func cloneCard(c *card.Card) *card.Card {
	cp := *c
	return &cp
}
