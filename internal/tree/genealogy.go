package tree

import (
	"strings"

	"family-atlas/internal/datenorm"
	"family-atlas/internal/events"
	"family-atlas/internal/model"
)

// 文档注释：由导入的人员与家庭链接构建祖先树
// 背景：每个家庭链接选一位主父母（丈夫可解析时取丈夫，否则取妻子），子女挂在主父母下；
// 夫妻双方都可解析时，把妻子的名字与年份作为 spouse/spouseYears 属性并入丈夫节点，而不是单独的边。
// 约束：子女 id 未声明（前向引用等）时静默忽略；同一子女出现在多个链接中时以第一个为准。
func FromGenealogy(persons []model.Person, links []model.FamilyLink) *model.TreeNode {
	b := newBuilder(len(persons))
	for _, p := range persons {
		b.add(p.ExternalID, events.PersonName(p), personAttrs(p))
	}
	byID := make(map[string]model.Person, len(persons))
	for _, p := range persons {
		if _, ok := byID[p.ExternalID]; !ok {
			byID[p.ExternalID] = p
		}
	}
	for _, l := range links {
		primary := ""
		switch {
		case b.known(l.HusbandID):
			primary = l.HusbandID
		case b.known(l.WifeID):
			primary = l.WifeID
		}
		if primary == "" {
			continue
		}
		if primary == l.HusbandID && b.known(l.WifeID) && l.WifeID != l.HusbandID {
			wife := byID[l.WifeID]
			b.setSpouse(primary, events.PersonName(wife), years(datenorm.Year(wife.Birth.Date), datenorm.Year(wife.Death.Date)))
		}
		for _, c := range l.ChildIDs {
			b.attach(primary, c)
		}
	}
	return b.build()
}

func personAttrs(p model.Person) map[string]string {
	m := map[string]string{}
	putIf(m, "birthYear", datenorm.Year(p.Birth.Date))
	putIf(m, "deathYear", datenorm.Year(p.Death.Date))
	putIf(m, "sex", string(p.Sex))
	putIf(m, "birthPlace", strings.TrimSpace(p.Birth.Place))
	putIf(m, "deathPlace", strings.TrimSpace(p.Death.Place))
	return m
}
