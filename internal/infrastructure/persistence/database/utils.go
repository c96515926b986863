package database

import (
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义LIKE通配符,用户输入按字面匹配
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// toJSON 任意值 → datatypes.JSON
// nil切片写成[]而不是null,保证JSON查询函数的行为一致
func toJSON(v interface{}) datatypes.JSON {
	switch t := v.(type) {
	case []string:
		if t == nil {
			return datatypes.JSON("[]")
		}
	case map[string]string:
		if t == nil {
			return datatypes.JSON("{}")
		}
	case map[string]interface{}:
		if t == nil {
			return datatypes.JSON("{}")
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

// stringsFromJSON datatypes.JSON → []string,解析失败返回空切片
func stringsFromJSON(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func stringMapFromJSON(raw datatypes.JSON) map[string]string {
	out := map[string]string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]string{}
	}
	return out
}

func objectFromJSON(raw datatypes.JSON) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return map[string]interface{}{}
	}
	return out
}
