package inventory

import (
	"strings"
)

// CSV必需列
const (
	ColName            = "Name"
	ColEdition         = "Edition"
	ColEditionCode     = "Edition code"
	ColCollectorNumber = "Collector's number"
	ColPrice           = "Price"
	ColFoil            = "Foil"
	ColCurrency        = "Currency"
	ColScryfallID      = "Scryfall ID"
	ColQuantity        = "Quantity"
)

// RequiredColumns 导入文件必须包含的列(顺序无关)
var RequiredColumns = []string{
	ColName, ColEdition, ColEditionCode, ColCollectorNumber,
	ColPrice, ColFoil, ColCurrency, ColScryfallID, ColQuantity,
}

// Row 一行导入数据(解析后)
type Row struct {
	Line            int // 文件行号,表头为第1行
	Name            string
	Edition         string
	EditionCode     string
	CollectorNumber string
	Price           string
	Currency        string
	ScryfallID      string
	Foil            bool
	Quantity        int
}

// RowError 行级错误报告
type RowError struct {
	Row        int    `json:"row"`
	ScryfallID string `json:"scryfall_id"`
	Error      string `json:"error"`
}

// MissingColumns 返回表头中缺失的必需列
func MissingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[normalizeHeader(h)] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// HeaderIndex 列名 → 下标
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}

// ParseRow 按表头映射解析一条记录
func ParseRow(line int, record []string, idx map[string]int) (Row, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := Row{
		Line:            line,
		Name:            get(ColName),
		Edition:         get(ColEdition),
		EditionCode:     get(ColEditionCode),
		CollectorNumber: get(ColCollectorNumber),
		Price:           get(ColPrice),
		Currency:        get(ColCurrency),
		ScryfallID:      get(ColScryfallID),
	}

	if row.ScryfallID == "" {
		return row, InvalidRowf("missing Scryfall ID")
	}

	foil, err := ParseFoil(get(ColFoil))
	if err != nil {
		return row, err
	}
	row.Foil = foil

	qty, err := ParseQuantity(get(ColQuantity))
	if err != nil {
		return row, err
	}
	row.Quantity = qty

	return row, nil
}

// 去掉UTF-8 BOM和首尾空白
func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
