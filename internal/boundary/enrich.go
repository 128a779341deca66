package boundary

import (
	"fmt"

	"github.com/hcm-console/project-factory/internal/domain"
)

// Expand walks the relationship tree fetched from the boundary service and
// produces the complete boundary set the campaign operates over. A node is
// included when its code was explicitly selected by the operator, or when any
// ancestor was selected with includeAllChildren. A node's parent pointer
// references the nearest included ancestor; hierarchy roots carry nil.
func Expand(tree []domain.BoundaryTreeNode, selection []domain.BoundarySelection) ([]domain.BoundaryNode, error) {
	if len(selection) == 0 {
		return nil, fmt.Errorf("campaign has no boundary selection")
	}

	selected := make(map[string]domain.BoundarySelection, len(selection))
	for _, s := range selection {
		selected[s.Code] = s
	}

	var nodes []domain.BoundaryNode
	for _, root := range tree {
		expand(root, nil, false, selected, &nodes)
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("boundary selection matched no node in the relationship tree")
	}
	return nodes, nil
}

func expand(node domain.BoundaryTreeNode, parent *string, ancestorCascades bool, selected map[string]domain.BoundarySelection, out *[]domain.BoundaryNode) {
	pick, explicitly := selected[node.Code]
	include := explicitly || ancestorCascades

	next := parent
	cascades := ancestorCascades || (explicitly && pick.IncludeAllChildren)

	if include {
		*out = append(*out, domain.BoundaryNode{
			Code:               node.Code,
			Level:              node.BoundaryType,
			Parent:             parent,
			IncludeAllChildren: explicitly && pick.IncludeAllChildren,
			IsRoot:             parent == nil,
		})
		code := node.Code
		next = &code
	}

	for _, child := range node.Children {
		expand(child, next, cascades, selected, out)
	}
}

// CodeSet returns the set of codes in an enriched boundary list, used for
// membership validation of sheet-cited boundary codes.
func CodeSet(nodes []domain.BoundaryNode) map[string]struct{} {
	set := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		set[node.Code] = struct{}{}
	}
	return set
}
