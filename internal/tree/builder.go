// 包 tree：把人员与关系转换为单一根的展示树
package tree

import (
	"family-atlas/internal/model"
)

// RootName：存在多个自然根时合成的虚拟根名称
const RootName = "Family"

type proto struct {
	name  string
	attrs map[string]string
}

// 文档注释：一次构建的工作状态
// 背景："已有父节点" 与子节点列表都记录在按 id 索引的旁路表中，不写回节点对象；
// 输出节点在最后一步重新生成，同一实体被两次构建也不会共享节点。
type builder struct {
	order     []string
	nodes     map[string]*proto
	children  map[string][]string
	hasParent map[string]bool
}

func newBuilder(n int) *builder {
	return &builder{
		order:     make([]string, 0, n),
		nodes:     make(map[string]*proto, n),
		children:  make(map[string][]string),
		hasParent: make(map[string]bool),
	}
}

// add 重复 id 只保留首次声明
func (b *builder) add(id, name string, attrs map[string]string) {
	if _, ok := b.nodes[id]; ok {
		return
	}
	b.order = append(b.order, id)
	b.nodes[id] = &proto{name: name, attrs: attrs}
}

func (b *builder) known(id string) bool {
	_, ok := b.nodes[id]
	return id != "" && ok
}

// 文档注释：挂接子节点
// 约束：未知 id 静默丢弃；自指忽略；同一子节点只接受第一次挂接（先到先得）。
func (b *builder) attach(parent, child string) {
	if parent == child || !b.known(parent) || !b.known(child) || b.hasParent[child] {
		return
	}
	b.children[parent] = append(b.children[parent], child)
	b.hasParent[child] = true
}

// 文档注释：生成输出树
// 背景：根为从未被标记 "已有父节点" 的实体，按发现顺序；父环上的实体不会成为自然根，
// 在自然根展开后仍未输出的实体按发现顺序提升为额外根，保证每个实体恰好出现一次。
// 返回：无人员时返回 nil；单根直接返回；多根时包一层虚拟根。
func (b *builder) build() *model.TreeNode {
	if len(b.order) == 0 {
		return nil
	}
	emitted := make(map[string]bool, len(b.order))
	var roots []*model.TreeNode
	for _, id := range b.order {
		if !b.hasParent[id] {
			roots = append(roots, b.materialize(id, emitted))
		}
	}
	for _, id := range b.order {
		if !emitted[id] {
			roots = append(roots, b.materialize(id, emitted))
		}
	}
	if len(roots) == 1 {
		return roots[0]
	}
	return &model.TreeNode{Name: RootName, Attributes: map[string]string{}, Children: roots}
}

func (b *builder) materialize(id string, emitted map[string]bool) *model.TreeNode {
	emitted[id] = true
	p := b.nodes[id]
	attrs := make(map[string]string, len(p.attrs))
	for k, v := range p.attrs {
		attrs[k] = v
	}
	n := &model.TreeNode{Name: p.name, Attributes: attrs, Children: []*model.TreeNode{}}
	for _, c := range b.children[id] {
		if !emitted[c] {
			n.Children = append(n.Children, b.materialize(c, emitted))
		}
	}
	return n
}

// 文档注释：写入配偶属性
// 约束：节点已有 spouse 时整体跳过，保证 spouse 与 spouseYears 来自同一人；与节点自身的日期属性无关。
func (b *builder) setSpouse(id, name, yrs string) {
	n, ok := b.nodes[id]
	if !ok {
		return
	}
	if _, exists := n.attrs["spouse"]; exists {
		return
	}
	n.attrs["spouse"] = name
	putIf(n.attrs, "spouseYears", yrs)
}

// years 依出生/死亡年份生成 "1950-2010"、"1950-"、"-2010"；都缺失时为空串
func years(birth, death string) string {
	if birth == "" && death == "" {
		return ""
	}
	return birth + "-" + death
}

func putIf(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}
