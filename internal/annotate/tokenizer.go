// Package annotate 实现了文档标注的核心算法：字符级分词、序列对齐、
// 实体区间重对齐、token 标记同步以及实体提及定位。
// 包内函数均为纯计算，不访问存储。
package annotate

import "unicode/utf8"

// Tokenize 将文本按字符（Unicode 码点）切分为 token 序列。
// 不做任何归一化，空白与标点同样各自成为一个 token。
// 非法 UTF-8 字节按单字节原样保留，保证 token 拼接后与原文完全一致。
func Tokenize(text string) []string {
	tokens := make([]string, 0, utf8.RuneCountInString(text))
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		tokens = append(tokens, text[i:i+size])
		i += size
	}
	return tokens
}
