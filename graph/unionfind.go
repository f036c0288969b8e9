package graph

// unionFind groups person ids into disjoint sets with path compression.
// Sibling cliques are closed by unioning every stated sibling pair and then
// materializing each component as a complete clique.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(id string) string {
	root, ok := u.parent[id]
	if !ok {
		u.parent[id] = id
		return id
	}
	if root == id {
		return id
	}
	top := u.find(root)
	u.parent[id] = top
	return top
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// components returns every set with two or more members. Member order within
// a component follows first insertion into the structure.
func (u *unionFind) components(order []string) [][]string {
	groups := make(map[string][]string)
	var roots []string
	for _, id := range order {
		if _, ok := u.parent[id]; !ok {
			continue
		}
		root := u.find(id)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], id)
	}
	var out [][]string
	for _, root := range roots {
		if len(groups[root]) > 1 {
			out = append(out, groups[root])
		}
	}
	return out
}
