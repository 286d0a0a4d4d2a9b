// 包 model：导入流水线与家谱树共用的实体结构，保持无依赖以便各层引用
package model

// Sex 取值 M/F/U
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "U"
)

// Vital：出生/死亡的原始日期与地点，均为源文本，空串表示缺失
type Vital struct {
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
}

// 文档注释：个人记录（解析产物）
// 背景：ExternalID 为源格式的原生标识（去掉 @），在一次导入内唯一；重新导入时整体替换，不做合并。
type Person struct {
	ExternalID  string `json:"externalId"`
	GivenName   string `json:"givenName,omitempty"`
	Surname     string `json:"surname,omitempty"`
	Sex         Sex    `json:"sex"`
	Birth       Vital  `json:"birth"`
	Death       Vital  `json:"death"`
	BurialPlace string `json:"burialPlace,omitempty"`
	Position    int    `json:"-"`
}

// 文档注释：家庭链接记录
// 约束：HusbandID/WifeID 为空串表示缺失；ChildIDs 保持源顺序，可能引用未声明的人员（前向引用）。
type FamilyLink struct {
	ExternalFamilyID string   `json:"externalFamilyId"`
	HusbandID        string   `json:"husbandId,omitempty"`
	WifeID           string   `json:"wifeId,omitempty"`
	ChildIDs         []string `json:"childIds"`
	Position         int      `json:"-"`
}

// Member：在线维护的家族成员（非导入数据）
type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Sex       Sex    `json:"sex,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	DeathDate string `json:"deathDate,omitempty"`
}

// RelationType parent/child/spouse
type RelationType string

const (
	RelationParent RelationType = "parent"
	RelationChild  RelationType = "child"
	RelationSpouse RelationType = "spouse"
)

// Relationship：有向关系边，parent 边表示 From 是 To 的父/母
type Relationship struct {
	FromID string       `json:"fromId"`
	ToID   string       `json:"toId"`
	Type   RelationType `json:"type"`
}
