package ml

import (
	"fmt"
	"sort"
)

// treeNode is one node of a flattened regression tree. Leaves have Left == -1.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// regressionTree is a CART tree grown on squared error.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// minImpurityDecrease guards against splits that only shuffle float noise.
const minImpurityDecrease = 1e-12

// growTree fits a tree on the rows of X selected by idx (duplicates allowed,
// as in a bootstrap sample). maxDepth 0 grows until leaves are pure.
func growTree(X [][]float64, y []float64, idx []int, maxDepth int) regressionTree {
	t := regressionTree{Nodes: make([]treeNode, 0, 2*len(idx))}
	t.build(X, y, idx, 0, maxDepth)
	return t
}

func (t *regressionTree) build(X [][]float64, y []float64, idx []int, depth, maxDepth int) int {
	var sum, sumSq float64
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Left: -1, Right: -1, Value: sum / n})

	if len(idx) < 2 || (maxDepth > 0 && depth >= maxDepth) {
		return node
	}

	parentSSE := sumSq - sum*sum/n
	feature, threshold, bestSSE, ok := bestSplit(X, y, idx)
	if !ok || parentSSE-bestSSE <= minImpurityDecrease {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return node
	}

	l := t.build(X, y, left, depth+1, maxDepth)
	r := t.build(X, y, right, depth+1, maxDepth)
	t.Nodes[node].Feature = feature
	t.Nodes[node].Threshold = threshold
	t.Nodes[node].Left = l
	t.Nodes[node].Right = r
	return node
}

// bestSplit scans every feature for the threshold minimising the summed
// squared error of both children. Ties keep the lowest feature and threshold.
func bestSplit(X [][]float64, y []float64, idx []int) (feature int, threshold, bestSSE float64, ok bool) {
	sorted := make([]int, len(idx))
	width := len(X[idx[0]])

	for f := 0; f < width; f++ {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool {
			return X[sorted[a]][f] < X[sorted[b]][f]
		})

		var totalSum, totalSq float64
		for _, i := range sorted {
			totalSum += y[i]
			totalSq += y[i] * y[i]
		}

		var leftSum, leftSq float64
		for k := 1; k < len(sorted); k++ {
			prev := sorted[k-1]
			leftSum += y[prev]
			leftSq += y[prev] * y[prev]

			lo, hi := X[prev][f], X[sorted[k]][f]
			if lo == hi {
				continue
			}

			nl := float64(k)
			nr := float64(len(sorted) - k)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			if !ok || sse < bestSSE-minImpurityDecrease {
				feature, threshold, bestSSE, ok = f, lo+(hi-lo)/2, sse, true
			}
		}
	}
	return feature, threshold, bestSSE, ok
}

func (t regressionTree) predictRow(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (t regressionTree) depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Left < 0 {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// validate checks a decoded tree: children are stored after their parent, so
// indices must point forward and inside Nodes.
func (t regressionTree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Left < 0 {
			if n.Right >= 0 {
				return fmt.Errorf("node %d has a right child but no left child", i)
			}
			continue
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d children (%d, %d) outside (%d, %d)", i, n.Left, n.Right, i, len(t.Nodes))
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, width)
		}
	}
	return nil
}

func validateTrees(trees []regressionTree, n, width int) error {
	if width <= 0 {
		return fmt.Errorf("width must be positive, got %d", width)
	}
	if len(trees) != n {
		return fmt.Errorf("%d trees stored for n_estimators=%d", len(trees), n)
	}
	for i, t := range trees {
		if err := t.validate(width); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
