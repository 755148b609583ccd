// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"parqcel/fileio"
)

// TreeNodeType represents the type of node in the navigation tree
type TreeNodeType string

const (
	NodeTypeShare  TreeNodeType = "share"
	NodeTypeSchema TreeNodeType = "schema"
	NodeTypeTable  TreeNodeType = "table"
)

// TreeNode represents a node in the navigation tree
type TreeNode struct {
	ID       string
	NodeType TreeNodeType
	Name     string
	Table    fileio.TableRef // set for table nodes
	Children []string
}

// NavigationTree holds the shares, schemas and tables of a Delta Sharing
// profile.
type NavigationTree struct {
	nodes   map[string]*TreeNode
	rootIDs []string
	profile string
	mu      sync.RWMutex
}

// NewNavigationTree creates an empty navigation tree.
func NewNavigationTree() *NavigationTree {
	return &NavigationTree{nodes: make(map[string]*TreeNode)}
}

// GenerateNodeID creates a unique ID for a tree node
func GenerateNodeID(nodeType TreeNodeType, share, schema, table string) string {
	switch nodeType {
	case NodeTypeShare:
		return fmt.Sprintf("share:%s", share)
	case NodeTypeSchema:
		return fmt.Sprintf("share:%s:schema:%s", share, schema)
	case NodeTypeTable:
		return fmt.Sprintf("share:%s:schema:%s:table:%s", share, schema, table)
	default:
		return ""
	}
}

// LoadShares lists every table of profile and rebuilds the tree.
func (nt *NavigationTree) LoadShares(ctx context.Context, profile string) error {
	refs, err := fileio.ListDeltaTables(ctx, profile)
	if err != nil {
		return err
	}
	nt.mu.Lock()
	defer nt.mu.Unlock()
	nt.profile = profile
	nt.build(refs)
	return nil
}

// Profile returns the profile the tree was loaded from.
func (nt *NavigationTree) Profile() string {
	nt.mu.RLock()
	defer nt.mu.RUnlock()
	return nt.profile
}

// build replaces the nodes with the hierarchy of refs, keeping their order.
func (nt *NavigationTree) build(refs []fileio.TableRef) {
	nt.nodes = make(map[string]*TreeNode)
	nt.rootIDs = nt.rootIDs[:0]

	node := func(id string, typ TreeNodeType, name string, parent *TreeNode) *TreeNode {
		if n, ok := nt.nodes[id]; ok {
			return n
		}
		n := &TreeNode{ID: id, NodeType: typ, Name: name}
		nt.nodes[id] = n
		if parent == nil {
			nt.rootIDs = append(nt.rootIDs, id)
		} else {
			parent.Children = append(parent.Children, id)
		}
		return n
	}

	for _, ref := range refs {
		share := node(GenerateNodeID(NodeTypeShare, ref.Share, "", ""), NodeTypeShare, ref.Share, nil)
		schema := node(GenerateNodeID(NodeTypeSchema, ref.Share, ref.Schema, ""), NodeTypeSchema, ref.Schema, share)
		table := node(GenerateNodeID(NodeTypeTable, ref.Share, ref.Schema, ref.Name), NodeTypeTable, ref.Name, schema)
		table.Table = ref
	}
}

// GetChildren returns the child node IDs for a given parent node
// Returns root nodes if nodeID is empty
func (nt *NavigationTree) GetChildren(nodeID widget.TreeNodeID) []widget.TreeNodeID {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if nodeID == "" {
		return nt.rootIDs
	}
	if node, exists := nt.nodes[nodeID]; exists {
		return node.Children
	}
	return nil
}

// IsBranch returns true if the node can have children
func (nt *NavigationTree) IsBranch(nodeID widget.TreeNodeID) bool {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	if nodeID == "" {
		return true
	}
	node, exists := nt.nodes[nodeID]
	return exists && node.NodeType != NodeTypeTable
}

// GetNode retrieves a node by ID
func (nt *NavigationTree) GetNode(nodeID widget.TreeNodeID) *TreeNode {
	nt.mu.RLock()
	defer nt.mu.RUnlock()

	return nt.nodes[nodeID]
}

// Widget creates the tree widget. onTable is called when a table is chosen.
func (nt *NavigationTree) Widget(onTable func(fileio.TableRef)) *widget.Tree {
	tree := widget.NewTree(nt.GetChildren, nt.IsBranch,
		func(branch bool) fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FolderIcon()), widget.NewLabel("template"))
		},
		nt.UpdateNodeDisplay)

	tree.OnSelected = func(id widget.TreeNodeID) {
		node := nt.GetNode(id)
		if node == nil {
			return
		}
		if node.NodeType != NodeTypeTable {
			tree.ToggleBranch(id)
			tree.Unselect(id)
			return
		}
		onTable(node.Table)
		tree.Unselect(id)
	}
	return tree
}

// UpdateNodeDisplay updates the visual representation of a tree node
func (nt *NavigationTree) UpdateNodeDisplay(nodeID widget.TreeNodeID, branch bool, obj fyne.CanvasObject) {
	node := nt.GetNode(nodeID)
	if node == nil {
		return
	}
	box, ok := obj.(*fyne.Container)
	if !ok || len(box.Objects) < 2 {
		return
	}
	if icon, ok := box.Objects[0].(*widget.Icon); ok {
		switch node.NodeType {
		case NodeTypeShare:
			icon.SetResource(theme.FolderOpenIcon())
		case NodeTypeSchema:
			icon.SetResource(theme.FolderIcon())
		case NodeTypeTable:
			icon.SetResource(theme.DocumentIcon())
		}
	}
	if label, ok := box.Objects[1].(*widget.Label); ok {
		label.SetText(node.Name)
	}
}
