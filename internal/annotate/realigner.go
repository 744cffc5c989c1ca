package annotate

import "doc-annotator-go/internal/model"

// RealignResult 是一次内容编辑后实体区间的重对齐结果。
type RealignResult struct {
	// Updated 包含所有仍有 token 存活的实体，区间已换算到新序列。
	Updated []model.EntityItem
	// Deleted 包含区间内 token 全部被删除的实体。
	Deleted []model.EntityItem
}

// Realign 把实体区间从旧 token 序列迁移到新 token 序列。
// 新区间取存活下标的最小值与最大值（包络），中间被删掉的部分不会让实体分裂。
func Realign(oldTokens, newTokens []string, entities []model.EntityItem) RealignResult {
	mapping := Align(oldTokens, newTokens)
	return realignWith(mapping, entities)
}

func realignWith(mapping map[int]int, entities []model.EntityItem) RealignResult {
	var result RealignResult
	for _, e := range entities {
		start, end, ok := mappedHull(mapping, e.TokenStart, e.TokenEnd)
		if !ok {
			result.Deleted = append(result.Deleted, e)
			continue
		}
		e.TokenStart = start
		e.TokenEnd = end
		result.Updated = append(result.Updated, e)
	}
	return result
}

func mappedHull(mapping map[int]int, from, to int) (int, int, bool) {
	start, end, found := 0, 0, false
	for i := from; i <= to; i++ {
		j, ok := mapping[i]
		if !ok {
			continue
		}
		if !found {
			start, end, found = j, j, true
			continue
		}
		start = min(start, j)
		end = max(end, j)
	}
	return start, end, found
}
