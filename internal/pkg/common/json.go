package common

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ParseJSONBytes 解析 JSON 位元組切片到結構體
func ParseJSONBytes(data []byte, v interface{}) error {
	return DecodeJSON(bytes.NewReader(data), v)
}

// DecodeJSON 解析單一 JSON 文件，後面不得有多餘資料
func DecodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}
