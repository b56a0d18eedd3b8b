package jsonx

import "github.com/bytedance/sonic"

// JSONS marshals v and swallows the error; for log output only.
func JSONS(v any) string {
	data, _ := sonic.Marshal(v)
	return string(data)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// Lazy defers encoding until the value is formatted, so disabled log levels
// pay nothing.
type Lazy struct {
	v any
}

func (lz Lazy) String() string {
	return JSONS(lz.v)
}

// MarshalJSON embeds the value as-is for json log encoders.
func (lz Lazy) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(lz.v)
}

func LzJSON(v any) Lazy {
	return Lazy{v: v}
}
