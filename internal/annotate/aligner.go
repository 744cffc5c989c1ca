package annotate

// Align 基于最长公共子序列计算旧序列到新序列的下标映射。
// 只有参与 LCS 的位置出现在结果中；映射单调递增，相同输入得到恒等映射。
func Align[T comparable](oldSeq, newSeq []T) map[int]int {
	n, m := len(oldSeq), len(newSeq)
	mapping := make(map[int]int)
	if n == 0 || m == 0 {
		return mapping
	}

	// dp[i][j] 为 oldSeq[i:] 与 newSeq[j:] 的 LCS 长度
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldSeq[i] == newSeq[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else {
				dp[i][j] = max(dp[i+1][j], dp[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case oldSeq[i] == newSeq[j]:
			mapping[i] = j
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return mapping
}
