package vendorcategory

import "time"

// Taxonomy describes the vendor category classification.
type Taxonomy struct {
	Name         string `json:"name"`
	Object       string `json:"object_type"`
	Singular     string `json:"singular_name"`
	Plural       string `json:"name_plural"`
	Hierarchical bool   `json:"hierarchical"`
	RewriteSlug  string `json:"rewrite_slug"`
}

// VendorTaxonomy is the single taxonomy this module manages.
var VendorTaxonomy = Taxonomy{
	Name:         "vendor_category",
	Object:       "seller",
	Singular:     "Vendor Category",
	Plural:       "Vendor Categories",
	Hierarchical: true,
	RewriteSlug:  "vendor-category",
}

// Category is a node of the vendor category tree.
// @Description Vendor category
// @Description with id, slug, name, description, parent_id and the number of assigned vendors
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	ParentID    *int64    `json:"parent_id" db:"parent_id"`
	Count       int       `json:"count" db:"count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Node is a category with its children, used for the management screen.
type Node struct {
	*Category
	Children []*Node `json:"children"`
}

// SelectOption is one entry of a hierarchical select control.
type SelectOption struct {
	*Category
	Depth int
}

// BuildTree arranges categories into a forest. A category whose parent is not
// part of the input becomes a root. Siblings keep their input order. Parent
// links that form a cycle are cut so that one member of the cycle becomes a
// root and no category is dropped.
func BuildTree(categories []*Category) []*Node {
	nodes := make(map[int64]*Node, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &Node{Category: c, Children: []*Node{}}
	}

	roots := []*Node{}
	attached := make(map[int64]*Node, len(categories))
	for _, c := range categories {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				attached[c.ID] = parent
				continue
			}
		}
		roots = append(roots, n)
	}

	reached := make(map[int64]bool, len(categories))
	var mark func(n *Node)
	mark = func(n *Node) {
		if reached[n.ID] {
			return
		}
		reached[n.ID] = true
		for _, child := range n.Children {
			mark(child)
		}
	}
	for _, n := range roots {
		mark(n)
	}
	for _, c := range categories {
		if reached[c.ID] {
			continue
		}
		// Walk up until a category repeats; that one sits on the cycle.
		n := nodes[c.ID]
		seen := map[int64]bool{}
		for !seen[n.ID] {
			seen[n.ID] = true
			n = attached[n.ID]
		}
		parent := attached[n.ID]
		for i, child := range parent.Children {
			if child == n {
				parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
				break
			}
		}
		roots = append(roots, n)
		mark(n)
	}
	return roots
}

// Flatten walks the forest depth first, producing select options.
func Flatten(roots []*Node) []SelectOption {
	var out []SelectOption
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			out = append(out, SelectOption{Category: n.Category, Depth: depth})
			walk(n.Children, depth+1)
		}
	}
	walk(roots, 0)
	return out
}
