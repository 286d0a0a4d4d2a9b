package tree

import (
	"strings"

	"family-atlas/internal/datenorm"
	"family-atlas/internal/model"
)

// 文档注释：由在线成员与关系边构建家族树
// 背景：只有 parent 边（From 是 To 的父/母）建立挂接关系；child 边是冗余的反向表述，不参与建树；
// spouse 边把对方名字写入双方的 spouse 属性，每位成员以最先声明的配偶为准。
// 约束：引用未知成员的边静默忽略。
func FromRelationships(members []model.Member, edges []model.Relationship) *model.TreeNode {
	b := newBuilder(len(members))
	byID := make(map[string]model.Member, len(members))
	for _, m := range members {
		if _, ok := byID[m.ID]; ok {
			continue
		}
		byID[m.ID] = m
		b.add(m.ID, memberName(m), memberAttrs(m))
	}
	for _, e := range edges {
		switch e.Type {
		case model.RelationParent:
			b.attach(e.FromID, e.ToID)
		case model.RelationSpouse:
			if !b.known(e.FromID) || !b.known(e.ToID) || e.FromID == e.ToID {
				continue
			}
			from, to := byID[e.FromID], byID[e.ToID]
			b.setSpouse(e.FromID, memberName(to), years(datenorm.Year(to.BirthDate), datenorm.Year(to.DeathDate)))
			b.setSpouse(e.ToID, memberName(from), years(datenorm.Year(from.BirthDate), datenorm.Year(from.DeathDate)))
		}
	}
	return b.build()
}

func memberName(m model.Member) string {
	if n := strings.Join(strings.Fields(m.Name), " "); n != "" {
		return n
	}
	return "Unknown"
}

func memberAttrs(m model.Member) map[string]string {
	a := map[string]string{}
	putIf(a, "birthYear", datenorm.Year(m.BirthDate))
	putIf(a, "deathYear", datenorm.Year(m.DeathDate))
	putIf(a, "sex", string(m.Sex))
	return a
}
