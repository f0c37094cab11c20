package service

import (
	"encoding/json"
	"fmt"
	"os"
)

// LabelEncoder 类别名与整数编码的双向映射，与分类器共享同一套编码
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// LoadLabelEncoder 从JSON文件加载类别表
func LoadLabelEncoder(path string) (*LabelEncoder, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var encoder LabelEncoder
	if err := json.Unmarshal(payload, &encoder); err != nil {
		return nil, fmt.Errorf("failed to parse label encoder: %w", err)
	}
	if len(encoder.Classes) == 0 {
		return nil, fmt.Errorf("invalid label encoder: empty class list")
	}

	return &encoder, nil
}

// Decode 将整数编码还原为类别名。只要编码表与分类器一致就不会越界，
// 但这里仍然做保护，越界返回ErrUnknownLabel。
func (e *LabelEncoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.Classes) {
		return "", fmt.Errorf("%w: code %d, known classes %d", ErrUnknownLabel, code, len(e.Classes))
	}
	return e.Classes[code], nil
}

// Encode 将类别名转换为整数编码
func (e *LabelEncoder) Encode(name string) (int, error) {
	for i, c := range e.Classes {
		if c == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, name)
}

// ClassNames 返回类别名列表的副本
func (e *LabelEncoder) ClassNames() []string {
	names := make([]string, len(e.Classes))
	copy(names, e.Classes)
	return names
}
