package annotate

import (
	"sort"

	"doc-annotator-go/internal/model"
)

// PlanMarks 计算全量重同步后每个 token 下标对应的实体 id，未被覆盖的位置为 nil。
// 实体按 id 升序处理，重叠部分由 id 较大（较晚创建）的实体覆盖；越界部分被忽略。
func PlanMarks(tokenCount int, entities []model.EntityItem) []*uint {
	plan := make([]*uint, tokenCount)
	for _, e := range sortedByID(entities) {
		id := e.ID
		from := max(e.TokenStart, 0)
		to := min(e.TokenEnd, tokenCount-1)
		for i := from; i <= to; i++ {
			plan[i] = &id
		}
	}
	return plan
}

// ApplyPlan 将 PlanMarks 的结果写入 tokens，返回标记发生变化的 token。
func ApplyPlan(tokens []model.DocumentToken, plan []*uint) []model.DocumentToken {
	var changed []model.DocumentToken
	for i := range tokens {
		var owner *uint
		if idx := tokens[i].TokenIndex; idx >= 0 && idx < len(plan) {
			owner = plan[idx]
		}
		if setOwner(&tokens[i], owner) {
			changed = append(changed, tokens[i])
		}
	}
	return changed
}

// MarkEntity 增量地为一个新建或修改后的实体打标记，结果与 PlanMarks 的全量计算一致：
// 区间内的 token 指向覆盖它的实体中 id 最大者；区间外原本指向它的 token 交还给其他覆盖实体或清空。
// tokens 会被就地修改，返回值只包含发生变化的 token。
func MarkEntity(tokens []model.DocumentToken, entity model.EntityItem, others []model.EntityItem) []model.DocumentToken {
	id := entity.ID
	var changed []model.DocumentToken
	for i := range tokens {
		t := &tokens[i]
		var owner *uint
		switch {
		case entity.Covers(t.TokenIndex):
			owner = &id
			if higher := coveringOwner(others, t.TokenIndex, id); higher != nil && *higher > id {
				owner = higher
			}
		case t.EntityID != nil && *t.EntityID == id:
			owner = coveringOwner(others, t.TokenIndex, id)
		default:
			continue
		}
		if setOwner(t, owner) {
			changed = append(changed, *t)
		}
	}
	return changed
}

// UnmarkEntity 清除所有指向 entityID 的 token 标记，
// 若该位置仍被其他实体覆盖则改为指向其中 id 最大者。
func UnmarkEntity(tokens []model.DocumentToken, entityID uint, others []model.EntityItem) []model.DocumentToken {
	var changed []model.DocumentToken
	for i := range tokens {
		t := &tokens[i]
		if t.EntityID == nil || *t.EntityID != entityID {
			continue
		}
		if setOwner(t, coveringOwner(others, t.TokenIndex, entityID)) {
			changed = append(changed, *t)
		}
	}
	return changed
}

func coveringOwner(entities []model.EntityItem, index int, exclude uint) *uint {
	var owner *uint
	for _, e := range entities {
		if e.ID == exclude || !e.Covers(index) {
			continue
		}
		if owner == nil || e.ID > *owner {
			id := e.ID
			owner = &id
		}
	}
	return owner
}

func setOwner(t *model.DocumentToken, owner *uint) bool {
	if owner == nil {
		if !t.IsEntity && t.EntityID == nil {
			return false
		}
		t.IsEntity = false
		t.EntityID = nil
		return true
	}
	if t.IsEntity && t.EntityID != nil && *t.EntityID == *owner {
		return false
	}
	id := *owner
	t.IsEntity = true
	t.EntityID = &id
	return true
}

func sortedByID(entities []model.EntityItem) []model.EntityItem {
	sorted := make([]model.EntityItem, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}
