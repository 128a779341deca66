package domain

// BoundaryNode is one node of the enriched boundary set a campaign operates
// over. Parent is nil for hierarchy roots; the upstream "undefined" parent
// placeholder is never stored.
type BoundaryNode struct {
	Code               string  `json:"code"`
	Level              string  `json:"level"`
	Parent             *string `json:"parent,omitempty"`
	IncludeAllChildren bool    `json:"include_all_children"`
	IsRoot             bool    `json:"is_root"`
}

// BoundaryTreeNode is one node of the relationship tree fetched from the
// boundary service.
type BoundaryTreeNode struct {
	Code         string             `json:"code"`
	BoundaryType string             `json:"boundaryType"`
	Children     []BoundaryTreeNode `json:"children,omitempty"`
}

// BoundarySelection is one boundary the operator explicitly picked when
// configuring the campaign.
type BoundarySelection struct {
	Code               string `json:"code"`
	Type               string `json:"type"`
	IncludeAllChildren bool   `json:"includeAllChildren"`
	IsRoot             bool   `json:"isRoot"`
}
