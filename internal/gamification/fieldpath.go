package gamification

import (
	"encoding/json"
	"strings"

	"coder_quest_backend/internal/model"
)

// FieldValue 路径解析结果。缺失的字段是 Absent，而不是 nil 值，
// 与任何操作数比较都为 false。
type FieldValue struct {
	raw     interface{}
	present bool
}

func Absent() FieldValue { return FieldValue{} }

func Present(v interface{}) FieldValue { return FieldValue{raw: v, present: true} }

func (v FieldValue) IsPresent() bool { return v.present }

func (v FieldValue) Raw() interface{} { return v.raw }

// recordDocument 将记录转换为与 JSON 字段名一致的通用文档，条件中的路径按 JSON 名书写
func recordDocument(rec *model.UserProgress) map[string]interface{} {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc
}

// ResolvePath 按点分路径（如 "stats.dailyStreak"）取值。
// 以 "length" 结尾且父级为列表时返回列表长度。
func ResolvePath(doc map[string]interface{}, path string) FieldValue {
	if doc == nil || strings.TrimSpace(path) == "" {
		return Absent()
	}

	var cur interface{} = doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[seg]
			if !ok || next == nil {
				return Absent()
			}
			cur = next
		case []interface{}:
			if seg != "length" {
				return Absent()
			}
			cur = float64(len(node))
		default:
			return Absent()
		}
	}
	return Present(cur)
}
