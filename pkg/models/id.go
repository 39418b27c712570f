package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID 记录标识符
// 后端可能返回数字或字符串形式的 id，这里统一按字符串形式比较。
type ID string

// String 返回字符串形式
func (id ID) String() string {
	return string(id)
}

// IsZero 是否为空 id
func (id ID) IsZero() bool {
	return id == ""
}

// Equal compares two identifiers by their string form, so 7 and "7" match.
func (id ID) Equal(other ID) bool {
	return id == other
}

// IsNumeric 是否为纯数字 id
func (id ID) IsNumeric() bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

// MarshalJSON writes canonical integers ("7", "-3") as JSON numbers and every
// other id, including "007" and "+7", as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON 接受数字、字符串或 null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	*id = ID(n.String())
	return nil
}
