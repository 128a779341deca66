package boundary

import (
	"github.com/hcm-console/project-factory/internal/domain"
)

// RollUpTargets seeds each boundary's numeric columns from its sheet row and
// aggregates them up the hierarchy: every boundary without an explicit sheet
// row receives, per numeric column, the sum over its subtree (post-order
// DFS). Non-numeric columns are dropped during aggregation. After this pass
// every node in the returned map carries a consistent additive rollup.
func RollUpTargets(nodes []domain.BoundaryNode, sheetData map[string]map[string]any) map[string]map[string]int64 {
	children := make(map[string][]string)
	var roots []string
	for _, node := range nodes {
		if node.Parent == nil {
			roots = append(roots, node.Code)
			continue
		}
		children[*node.Parent] = append(children[*node.Parent], node.Code)
	}

	totals := make(map[string]map[string]int64, len(nodes))
	for _, root := range roots {
		aggregate(root, children, sheetData, totals)
	}
	return totals
}

func aggregate(code string, children map[string][]string, sheetData map[string]map[string]any, totals map[string]map[string]int64) map[string]int64 {
	sum := make(map[string]int64)
	for _, child := range children[code] {
		for column, value := range aggregate(child, children, sheetData, totals) {
			sum[column] += value
		}
	}

	// An explicit sheet row wins over the aggregate for this node.
	if row, ok := sheetData[code]; ok {
		seeded := make(map[string]int64)
		for column, value := range row {
			if n, numeric := asInt64(value); numeric {
				seeded[column] = n
			}
		}
		totals[code] = seeded
		return seeded
	}

	totals[code] = sum
	return sum
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}
