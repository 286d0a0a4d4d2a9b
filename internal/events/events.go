// 包 events：由个人记录派生出生/死亡/安葬事件候选
package events

import (
	"fmt"
	"strings"

	"family-atlas/internal/datenorm"
	"family-atlas/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 文档注释：展示名
// 背景：源数据大小写混杂（"john" / "SMITH"），逐词首字母大写其余小写，结果确定。
// 约束：空的名/姓被忽略；两者皆空时返回 "Unknown"。
func DisplayName(given, surname string) string {
	var parts []string
	for _, p := range []string{given, surname} {
		if f := strings.Fields(p); len(f) > 0 {
			parts = append(parts, f...)
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	// Caser 有内部状态，不能跨 goroutine 共享
	return cases.Title(language.English).String(strings.Join(parts, " "))
}

// PersonName 返回个人记录的展示名
func PersonName(p model.Person) string { return DisplayName(p.GivenName, p.Surname) }

type source struct {
	kind  model.EventKind
	label string
	verb  string
	date  string
	place string
}

// 文档注释：派生事件
// 约束：事件存在 ⇔ 日期可归一化 且 地点非空且不是占位符 "?"；
// 安葬记录只有地点，日期取死亡日期。输出顺序为人员顺序，每人按出生、死亡、安葬。
// 返回：事件列表，以及日期可归一化但地点为占位符 "?" 的候选数（导入时计为跳过）。
func Derive(persons []model.Person) (out []model.DerivedEvent, placeholders int) {
	for _, p := range persons {
		name := PersonName(p)
		for _, s := range []source{
			{model.KindBirth, "Birth", "Born", p.Birth.Date, p.Birth.Place},
			{model.KindDeath, "Death", "Died", p.Death.Date, p.Death.Place},
			{model.KindBurial, "Burial", "Buried", p.Death.Date, p.BurialPlace},
		} {
			place := strings.TrimSpace(s.place)
			if place == "" {
				continue
			}
			iso, ok := datenorm.Normalize(s.date)
			if !ok {
				continue
			}
			if place == "?" {
				placeholders++
				continue
			}
			out = append(out, model.DerivedEvent{
				PersonDisplayName: name,
				Kind:              s.kind,
				Title:             name + " - " + s.label,
				Description:       fmt.Sprintf("%s in %s (%s)", s.verb, place, strings.TrimSpace(s.date)),
				ISODate:           iso,
				RawDate:           s.date,
				Place:             place,
				Category:          string(s.kind),
			})
		}
	}
	return out, placeholders
}
