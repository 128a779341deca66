package boundary

import (
	"fmt"

	"github.com/hcm-console/project-factory/internal/domain"
)

// TopologicalOrder sorts boundary nodes so that every parent precedes all of
// its children (Kahn's algorithm). A parent reference pointing outside the
// node set does not order the child; whether that child may still be created
// is decided by the creation engine, not here. A cycle in the parent relation
// is a precondition failure and aborts the whole operation.
func TopologicalOrder(nodes []domain.BoundaryNode) ([]domain.BoundaryNode, error) {
	byCode := make(map[string]domain.BoundaryNode, len(nodes))
	for _, node := range nodes {
		byCode[node.Code] = node
	}

	inDegree := make(map[string]int, len(nodes))
	children := make(map[string][]string)
	for _, node := range nodes {
		if _, ok := inDegree[node.Code]; !ok {
			inDegree[node.Code] = 0
		}
		if node.Parent == nil {
			continue
		}
		if _, known := byCode[*node.Parent]; !known {
			continue
		}
		inDegree[node.Code]++
		children[*node.Parent] = append(children[*node.Parent], node.Code)
	}

	var queue []string
	for _, node := range nodes {
		if inDegree[node.Code] == 0 {
			queue = append(queue, node.Code)
		}
	}

	ordered := make([]domain.BoundaryNode, 0, len(nodes))
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]
		ordered = append(ordered, byCode[code])
		for _, child := range children[code] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(ordered) != len(nodes) {
		return nil, fmt.Errorf("boundary hierarchy contains a cycle: %d of %d nodes ordered", len(ordered), len(nodes))
	}
	return ordered, nil
}
