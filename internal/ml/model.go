package ml

import (
	"encoding/json"
	"fmt"
	"math"
)

// treeNode mirrors one node of an XGBoost JSON dump (get_dump with stats).
// Interior nodes carry a split; leaves carry a margin. Cover is the number
// of training rows that passed through the node and drives attribution.
type treeNode struct {
	NodeID         int        `json:"nodeid"`
	Split          string     `json:"split"`
	SplitCondition float64    `json:"split_condition"`
	Yes            int        `json:"yes"`
	No             int        `json:"no"`
	Missing        int        `json:"missing"`
	Leaf           *float64   `json:"leaf"`
	Cover          float64    `json:"cover"`
	Children       []treeNode `json:"children"`

	expected float64
}

func (n *treeNode) isLeaf() bool { return n.Leaf != nil }

func (n *treeNode) child(id int) *treeNode {
	for i := range n.Children {
		if n.Children[i].NodeID == id {
			return &n.Children[i]
		}
	}
	return nil
}

// prepare fills expected with the cover-weighted mean leaf margin under
// each node. That is what the model would output from the node knowing
// nothing further, which makes the step in expectation at each split a
// per-feature contribution. Computed once at load.
func (n *treeNode) prepare() float64 {
	if n.isLeaf() {
		n.expected = *n.Leaf
		return n.expected
	}
	var sum, cover float64
	for i := range n.Children {
		c := &n.Children[i]
		w := c.Cover
		if w <= 0 {
			w = 1
		}
		sum += c.prepare() * w
		cover += w
	}
	if cover > 0 {
		n.expected = sum / cover
	}
	return n.expected
}

type modelDump struct {
	BaseScore float64    `json:"base_score"`
	Trees     []treeNode `json:"trees"`
}

// parseModel accepts either a bare JSON array of trees or an object with
// base_score and trees.
func parseModel(data []byte) (*modelDump, error) {
	var dump modelDump
	if err := json.Unmarshal(data, &dump.Trees); err == nil {
		return &dump, nil
	}
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("model dump: %w", err)
	}
	if dump.Trees == nil {
		return nil, fmt.Errorf("model dump: no trees")
	}
	return &dump, nil
}

// traverse walks one tree for a feature vector and returns the leaf margin.
// NaN takes the default direction.
func traverse(root *treeNode, features map[string]float64) float64 {
	n := root
	for !n.isLeaf() {
		v, ok := features[n.Split]
		var next *treeNode
		if !ok || math.IsNaN(v) {
			next = n.child(n.Missing)
		} else if v < n.SplitCondition {
			next = n.child(n.Yes)
		} else {
			next = n.child(n.No)
		}
		if next == nil {
			return 0
		}
		n = next
	}
	return *n.Leaf
}

// pathContributions attributes one tree's margin across the features on the
// decision path: each split's contribution is the change in expected value
// caused by taking its branch. The attributions are additive, so
// root expectation + sum(contributions) equals the leaf margin exactly.
func pathContributions(root *treeNode, features map[string]float64, out map[string]float64) float64 {
	n := root
	rootValue := n.expected
	current := rootValue
	for !n.isLeaf() {
		v, ok := features[n.Split]
		var next *treeNode
		if !ok || math.IsNaN(v) {
			next = n.child(n.Missing)
		} else if v < n.SplitCondition {
			next = n.child(n.Yes)
		} else {
			next = n.child(n.No)
		}
		if next == nil {
			break
		}
		nextValue := next.expected
		out[n.Split] += nextValue - current
		current = nextValue
		n = next
	}
	return rootValue
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
