package model

// 文档注释：展示树节点
// 约束：Children 中的每个节点只归属于一个父节点；Attributes 为扁平字符串映射（出生/死亡年份、配偶等）。
type TreeNode struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Children   []*TreeNode       `json:"children"`
}

// Count 返回以该节点为根的子树节点总数
func (n *TreeNode) Count() int {
	if n == nil {
		return 0
	}
	c := 1
	for _, ch := range n.Children {
		c += ch.Count()
	}
	return c
}
