package opt

import (
	"math"
	"math/rand"
)

// dependencyTree is the MIMIC probability model: a tree over state
// positions where each position depends only on its parent.
type dependencyTree struct {
	n      int
	maxVal int
	order  []int // breadth-first from the root
	parent []int // -1 for the root
	// probs[i][pv*maxVal+v] = P(x_i = v | x_parent = pv). The root uses pv = 0.
	probs [][]float64
}

// fitDependencyTree estimates the tree from a sample of states. Edges form
// the maximum spanning tree over pairwise mutual information, grown from
// position 0 with Prim's algorithm on the dense MI matrix.
func fitDependencyTree(sample [][]int, n, maxVal int) *dependencyTree {
	m := float64(len(sample))
	marg := make([][]float64, n)
	for i := range marg {
		marg[i] = make([]float64, maxVal)
	}
	for _, s := range sample {
		for i, v := range s {
			marg[i][v]++
		}
	}

	mi := make([][]float64, n)
	for i := range mi {
		mi[i] = make([]float64, n)
	}
	joint := make([]float64, maxVal*maxVal)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := range joint {
				joint[k] = 0
			}
			for _, s := range sample {
				joint[s[i]*maxVal+s[j]]++
			}
			var info float64
			for a := 0; a < maxVal; a++ {
				if marg[i][a] == 0 {
					continue
				}
				for b := 0; b < maxVal; b++ {
					c := joint[a*maxVal+b]
					if c == 0 {
						continue
					}
					info += c / m * math.Log(c*m/(marg[i][a]*marg[j][b]))
				}
			}
			mi[i][j] = info
			mi[j][i] = info
		}
	}

	t := &dependencyTree{
		n:      n,
		maxVal: maxVal,
		order:  make([]int, 0, n),
		parent: make([]int, n),
		probs:  make([][]float64, n),
	}

	inTree := make([]bool, n)
	bestLink := make([]float64, n)
	for i := range bestLink {
		bestLink[i] = math.Inf(-1)
		t.parent[i] = -1
	}
	next := 0
	for len(t.order) < n {
		inTree[next] = true
		t.order = append(t.order, next)
		for j := 0; j < n; j++ {
			if !inTree[j] && mi[next][j] > bestLink[j] {
				bestLink[j] = mi[next][j]
				t.parent[j] = next
			}
		}
		next = -1
		for j := 0; j < n; j++ {
			if !inTree[j] && (next == -1 || bestLink[j] > bestLink[next]) {
				next = j
			}
		}
		if next == -1 {
			break
		}
	}

	root := t.order[0]
	t.order = breadthFirst(t.parent, root)
	t.probs[root] = make([]float64, maxVal)
	for v := 0; v < maxVal; v++ {
		t.probs[root][v] = marg[root][v] / m
	}
	for _, i := range t.order[1:] {
		par := t.parent[i]
		table := make([]float64, maxVal*maxVal)
		for _, s := range sample {
			table[s[par]*maxVal+s[i]]++
		}
		for pv := 0; pv < maxVal; pv++ {
			row := table[pv*maxVal : (pv+1)*maxVal]
			if marg[par][pv] == 0 {
				for v := range row {
					row[v] = 1 / float64(maxVal)
				}
				continue
			}
			for v := range row {
				row[v] /= marg[par][pv]
			}
		}
		t.probs[i] = table
	}
	return t
}

// breadthFirst lists the tree's nodes level by level from root. Children
// are visited in index order.
func breadthFirst(parent []int, root int) []int {
	children := make([][]int, len(parent))
	for i, p := range parent {
		if p >= 0 {
			children[p] = append(children[p], i)
		}
	}
	order := make([]int, 0, len(parent))
	order = append(order, root)
	for head := 0; head < len(order); head++ {
		order = append(order, children[order[head]]...)
	}
	return order
}

// sample draws a state from the tree in breadth-first order. With permutation set, values already
// used by earlier positions are masked out and the remainder renormalized.
func (t *dependencyTree) sample(rng *rand.Rand, permutation bool) []int {
	state := make([]int, t.n)
	var used []bool
	if permutation {
		used = make([]bool, t.maxVal)
	}
	weights := make([]float64, t.maxVal)

	for _, i := range t.order {
		pv := 0
		if t.parent[i] >= 0 {
			pv = state[t.parent[i]]
		}
		row := t.probs[i][pv*t.maxVal : (pv+1)*t.maxVal]
		copy(weights, row)
		if permutation {
			for v := range weights {
				if used[v] {
					weights[v] = 0
				}
			}
		}
		v := drawCategorical(weights, used, rng)
		state[i] = v
		if permutation {
			used[v] = true
		}
	}
	return state
}

// drawCategorical picks an index proportionally to weights. If every weight
// is zero it falls back to a uniform pick among indices not marked used.
func drawCategorical(weights []float64, used []bool, rng *rand.Rand) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total > 0 {
		x := rng.Float64() * total
		last := 0
		for v, w := range weights {
			if w <= 0 {
				continue
			}
			last = v
			if x < w {
				return v
			}
			x -= w
		}
		return last
	}

	free := make([]int, 0, len(weights))
	for v := range weights {
		if used == nil || !used[v] {
			free = append(free, v)
		}
	}
	return free[rng.Intn(len(free))]
}
