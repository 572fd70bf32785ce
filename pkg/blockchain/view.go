package blockchain

import (
	"fmt"
	"strconv"

	"digitalwill-backend/internal/types"
)

// DecodeWillOption 解析 get_will 的 view 返回值
// None: [{"vec": []}]  Some: [{"vec": [{owner, recipient, amount, ...}]}]
func DecodeWillOption(data []any) (*types.WillRecord, error) {
	if len(data) != 1 {
		return nil, fmt.Errorf("%w: expected 1 return value, got %d", ErrMalformedWill, len(data))
	}
	option, ok := data[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: option is %T", ErrMalformedWill, data[0])
	}
	vec, ok := option["vec"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing vec", ErrMalformedWill)
	}
	switch len(vec) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: option holds %d values", ErrMalformedWill, len(vec))
	}

	fields, ok := vec[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: record is %T", ErrMalformedWill, vec[0])
	}

	var (
		w   types.WillRecord
		err error
	)
	if w.Owner, err = stringField(fields, "owner"); err != nil {
		return nil, err
	}
	if w.Recipient, err = stringField(fields, "recipient"); err != nil {
		return nil, err
	}
	if w.Amount, err = u64Field(fields, "amount"); err != nil {
		return nil, err
	}
	if w.LastPingTime, err = u64Field(fields, "last_ping_time"); err != nil {
		return nil, err
	}
	if w.TimeoutSecs, err = u64Field(fields, "timeout_secs"); err != nil {
		return nil, err
	}
	return &w, nil
}

func stringField(fields map[string]any, name string) (string, error) {
	s, ok := fields[name].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: field %s", ErrMalformedWill, name)
	}
	return s, nil
}

// u64 在 JSON 中以十进制字符串表示
func u64Field(fields map[string]any, name string) (uint64, error) {
	s, ok := fields[name].(string)
	if !ok {
		return 0, fmt.Errorf("%w: field %s", ErrMalformedWill, name)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s: %v", ErrMalformedWill, name, err)
	}
	return v, nil
}
