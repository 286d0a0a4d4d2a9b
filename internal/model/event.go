package model

import "time"

// EventKind birth/death/burial
type EventKind string

const (
	KindBirth  EventKind = "birth"
	KindDeath  EventKind = "death"
	KindBurial EventKind = "burial"
)

// 文档注释：派生事件（导入期临时结构）
// 约束：仅当 ISO 日期与有效地点同时存在时才会生成；只有地理编码成功的子集会持久化为 Event。
type DerivedEvent struct {
	PersonDisplayName string    `json:"personDisplayName"`
	Kind              EventKind `json:"kind"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ISODate           string    `json:"isoDate"`
	RawDate           string    `json:"rawDate"`
	Place             string    `json:"place"`
	Category          string    `json:"category"`
}

// Coordinate：地理编码结果；缺失以 nil 指针表示
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SourceGedcom：由家谱文件导入产生的事件来源标记；重新导入只清除此来源的事件
const SourceGedcom = "gedcom"

// 文档注释：持久化的应用事件
// 背景：地图/时间线渲染的数据来源；Geohash 便于下游按网格聚合。
type Event struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	PersonName  string    `json:"personName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	RawDate     string    `json:"rawDate"`
	Place       string    `json:"place"`
	Category    string    `json:"category"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Geohash     string    `json:"geohash"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
}
