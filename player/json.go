package player

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// EncodeJSON 将快照记录编码为 JSON 对象，键按字典序写入
func EncodeJSON(s *Snapshot) ([]byte, error) {
	rec := s.ToRecord()
	buf := []byte(`{}`)
	var err error
	for _, k := range rec.Keys() {
		buf, err = sjson.SetBytes(buf, k, rec[k])
		if err != nil {
			return nil, fmt.Errorf("player: encode %s: %w", k, err)
		}
	}
	return buf, nil
}

// MarshalJSON 供观战推送等直接 json.Marshal 使用
func (s *Snapshot) MarshalJSON() ([]byte, error) { return EncodeJSON(s) }

// DecodeJSON 解析 EncodeJSON 的输出并重建快照
func DecodeJSON(b []byte, resolve MoveResolver) (*Snapshot, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("%w: malformed json", ErrRecord)
	}
	res := gjson.ParseBytes(b)
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: want json object", ErrRecord)
	}
	rec := Record{}
	res.ForEach(func(k, v gjson.Result) bool {
		rec[k.String()] = jsonValue(v)
		return true
	})
	return FromRecord(rec, resolve)
}

func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Number:
		return v.Int()
	case gjson.String:
		return v.Str
	case gjson.True, gjson.False:
		return v.Bool()
	case gjson.Null:
		return nil
	}
	if v.IsArray() {
		arr := v.Array()
		out := make([]any, 0, len(arr))
		for _, e := range arr {
			out = append(out, jsonValue(e))
		}
		return out
	}
	return v.Value()
}
