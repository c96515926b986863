package database

import (
	"fmt"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dialect 屏蔽MySQL与PostgreSQL在JSON查询和大小写匹配上的差异
//
//	           MySQL                      PostgreSQL
//	交集       JSON_OVERLAPS(col, ?)      EXISTS(jsonb_array_elements_text ... IN ?)
//	全包含     JSON_CONTAINS(col, ?)      col @> CAST(? AS jsonb)
//	空数组     JSON_LENGTH(col) = 0       jsonb_array_length(col) = 0
//	子串匹配   LOWER(col) LIKE LOWER(?)   col ILIKE ?
type dialect struct {
	name string
}

func newDialect(db *gorm.DB) dialect {
	return dialect{name: db.Dialector.Name()}
}

func (d dialect) postgres() bool {
	return d.name == "postgres"
}

// contains 大小写不敏感子串匹配
func (d dialect) contains(col, value string) clause.Expr {
	pattern := "%" + escapeLike(value) + "%"
	if d.postgres() {
		return gorm.Expr(col+" ILIKE ?", pattern)
	}
	return gorm.Expr("LOWER("+col+") LIKE LOWER(?)", pattern)
}

// jsonOverlaps JSON数组与values有交集
func (d dialect) jsonOverlaps(col string, values []string) clause.Expr {
	if d.postgres() {
		return gorm.Expr(fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements_text(%s) AS elem WHERE elem IN ?)", col), values)
	}
	return gorm.Expr(fmt.Sprintf("JSON_OVERLAPS(%s, ?)", col), jsonArray(values))
}

// jsonContainsAll JSON数组包含values的全部元素
func (d dialect) jsonContainsAll(col string, values []string) clause.Expr {
	if d.postgres() {
		return gorm.Expr(col+" @> CAST(? AS jsonb)", jsonArray(values))
	}
	return gorm.Expr(fmt.Sprintf("JSON_CONTAINS(%s, ?)", col), jsonArray(values))
}

// jsonEmpty JSON数组为空或NULL
func (d dialect) jsonEmpty(col string) string {
	if d.postgres() {
		return fmt.Sprintf("(%s IS NULL OR jsonb_array_length(%s) = 0)", col, col)
	}
	return fmt.Sprintf("(%s IS NULL OR JSON_LENGTH(%s) = 0)", col, col)
}

// keywordsSQL 展开keywords数组并去重排序
func (d dialect) keywordsSQL() string {
	if d.postgres() {
		return "SELECT DISTINCT jsonb_array_elements_text(keywords) AS keyword FROM cards WHERE keywords IS NOT NULL ORDER BY keyword"
	}
	return "SELECT DISTINCT jt.keyword FROM cards, " +
		"JSON_TABLE(cards.keywords, '$[*]' COLUMNS (keyword VARCHAR(255) PATH '$')) AS jt " +
		"ORDER BY jt.keyword"
}

// lockTable 事务内独占锁表(阻塞其他写者,不阻塞普通读);MySQL返回空串
func (d dialect) lockTable(table string) string {
	if d.postgres() {
		return "LOCK TABLE " + table + " IN EXCLUSIVE MODE"
	}
	return ""
}

// naturalOrder 收集编号自然排序:先按长度再按值("2" < "10" < "10a")
func naturalOrder(col, dir string) string {
	return fmt.Sprintf("LENGTH(%s) %s, %s %s", col, dir, col, dir)
}

func jsonArray(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}
