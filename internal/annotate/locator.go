package annotate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span 是 token 序列上的闭区间。
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Locate 在 token 序列中查找与 mention 相等的最左连续片段，比较前两侧都去掉空白。
// 找不到时返回 false；这是正常结果而不是错误。
func Locate(tokens []string, mention string) (Span, bool) {
	target := stripSpace(mention)
	if target == "" {
		return Span{}, false
	}

	stripped := make([]string, len(tokens))
	for i, t := range tokens {
		stripped[i] = stripSpace(t)
	}

	var sb strings.Builder
	for i := range stripped {
		sb.Reset()
		for j := i; j < len(stripped); j++ {
			sb.WriteString(stripped[j])
			acc := sb.String()
			if acc == target {
				return Span{Start: i, End: j}, true
			}
			if len(acc) > len(target) || !strings.HasPrefix(target, acc) {
				break
			}
		}
	}
	return Span{}, false
}

// stripSpace 去掉合法的空白字符，非法 UTF-8 字节原样保留。
func stripSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}
