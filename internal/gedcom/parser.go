package gedcom

import (
	"bufio"
	"io"
	"strings"

	"family-atlas/internal/logger"
	"family-atlas/internal/model"
)

type recordKind int

const (
	outside recordKind = iota
	inPerson
	inFamily
)

type subcontext int

const (
	subNone subcontext = iota
	subName
	subBirth
	subDeath
	subBurial
)

// 文档注释：解析状态值
// 背景：每一行产生一个新的状态值，由主循环显式传递；新记录开始时整体重置，避免复用外部变量造成残留。
type state struct {
	kind   recordKind
	sub    subcontext
	person model.Person
	family model.FamilyLink
}

// completed：step 在 0 级行上交出的已完成记录
type completed struct {
	person *model.Person
	family *model.FamilyLink
}

// Result：解析输出，均保持源顺序
type Result struct {
	Persons     []model.Person
	FamilyLinks []model.FamilyLink
	Skipped     int
}

// 文档注释：解析输入流
// 背景：按行扫描，单行上限 1MiB；格式错误的行计入 Skipped 并跳过。
// 异常：仅在读取失败时返回错误（基础设施层面），解析本身从不失败。
func Parse(r io.Reader) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024), 1024*1024)
	res := &Result{}
	st := state{}
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		var done completed
		st, done = step(st, rec)
		res.collect(done)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	res.collect(flush(st))
	logger.L().Debug("gedcom_parse_done", "persons", len(res.Persons), "families", len(res.FamilyLinks), "skipped", res.Skipped)
	return res, nil
}

// ParseString 解析内存中的文本
func ParseString(s string) *Result {
	res, _ := Parse(strings.NewReader(s))
	return res
}

func (r *Result) collect(c completed) {
	if c.person != nil {
		c.person.Position = len(r.Persons)
		r.Persons = append(r.Persons, *c.person)
	}
	if c.family != nil {
		c.family.Position = len(r.FamilyLinks)
		r.FamilyLinks = append(r.FamilyLinks, *c.family)
	}
}

func flush(st state) completed {
	switch st.kind {
	case inPerson:
		p := st.person
		return completed{person: &p}
	case inFamily:
		f := st.family
		return completed{family: &f}
	}
	return completed{}
}

// 文档注释：状态转移
// 约束：0 级行交出上一条记录并按记录类型进入新状态；1 级行设置子上下文或直接赋值；
// 2 级行依子上下文解释；更深层级与未知标签忽略。重复的子字段覆盖旧值，CHIL 按出现顺序累加。
func step(st state, rec RawRecord) (state, completed) {
	if rec.Level == 0 {
		done := flush(st)
		switch rec.Tag {
		case "INDI":
			return state{kind: inPerson, person: model.Person{ExternalID: rec.Xref, Sex: model.SexUnknown}}, done
		case "FAM":
			return state{kind: inFamily, family: model.FamilyLink{ExternalFamilyID: rec.Xref}}, done
		}
		return state{}, done
	}
	switch st.kind {
	case inPerson:
		return stepPerson(st, rec), completed{}
	case inFamily:
		return stepFamily(st, rec), completed{}
	}
	return st, completed{}
}

func stepPerson(st state, rec RawRecord) state {
	switch rec.Level {
	case 1:
		st.sub = subNone
		switch rec.Tag {
		case "NAME":
			st.sub = subName
			if rec.Value != "" {
				st.person.GivenName, st.person.Surname = splitName(rec.Value)
			}
		case "SEX":
			st.person.Sex = parseSex(rec.Value)
		case "BIRT":
			st.sub = subBirth
		case "DEAT":
			st.sub = subDeath
		case "BURI":
			st.sub = subBurial
		}
	case 2:
		switch st.sub {
		case subName:
			switch rec.Tag {
			case "GIVN":
				st.person.GivenName = rec.Value
			case "SURN":
				st.person.Surname = stripParens(rec.Value)
			}
		case subBirth:
			st.person.Birth = applyVital(st.person.Birth, rec)
		case subDeath:
			st.person.Death = applyVital(st.person.Death, rec)
		case subBurial:
			if rec.Tag == "PLAC" {
				st.person.BurialPlace = rec.Value
			}
		}
	}
	return st
}

func applyVital(v model.Vital, rec RawRecord) model.Vital {
	switch rec.Tag {
	case "DATE":
		v.Date = rec.Value
	case "PLAC":
		v.Place = rec.Value
	}
	return v
}

func stepFamily(st state, rec RawRecord) state {
	if rec.Level != 1 {
		return st
	}
	switch rec.Tag {
	case "HUSB":
		st.family.HusbandID = trimXref(rec.Value)
	case "WIFE":
		st.family.WifeID = trimXref(rec.Value)
	case "CHIL":
		if id := trimXref(rec.Value); id != "" {
			kids := make([]string, len(st.family.ChildIDs), len(st.family.ChildIDs)+1)
			copy(kids, st.family.ChildIDs)
			st.family.ChildIDs = append(kids, id)
		}
	}
	return st
}

func parseSex(v string) model.Sex {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M":
		return model.SexMale
	case "F":
		return model.SexFemale
	}
	return model.SexUnknown
}
