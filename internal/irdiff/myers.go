package irdiff

// OpKind is the kind of a single edit operation.
type OpKind int

const (
	OpEqual OpKind = iota
	OpDelete
	OpInsert
)

// edit is one line of an edit script. Src and Dst are 0-based positions in
// the source and destination sequences; Dst is meaningless for OpDelete and
// Src for OpInsert, but both still record the cursor position there.
type edit struct {
	Kind OpKind
	Src  int
	Dst  int
}

// editScript returns a minimal edit script turning a into b.
func editScript(a, b []string) []edit {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}

	// Compare small ints rather than strings in the inner loop.
	ids := make(map[string]int, n+m)
	intern := func(lines []string) []int {
		out := make([]int, len(lines))
		for i, l := range lines {
			id, ok := ids[l]
			if !ok {
				id = len(ids)
				ids[l] = id
			}
			out[i] = id
		}
		return out
	}
	x, y := intern(a), intern(b)

	trace := forward(x, y)
	return backtrack(trace, n, m)
}

// frontier holds the furthest-reaching x for each diagonal k in [-d-1, d+1]
// before round d.
type frontier struct {
	d int
	v []int
}

func (f frontier) at(k int) int {
	return f.v[k+f.d+1]
}

// forward runs the greedy forward pass and records, for every round d, the
// frontier it started from.
func forward(a, b []int) []frontier {
	n, m := len(a), len(b)
	limit := n + m
	offset := limit + 1
	v := make([]int, 2*limit+3)

	var trace []frontier
	for d := 0; d <= limit; d++ {
		snap := make([]int, 2*d+3)
		copy(snap, v[offset-d-1:offset+d+2])
		trace = append(trace, frontier{d: d, v: snap})

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				return trace
			}
		}
	}
	return trace
}

// backtrack walks the recorded frontiers from (n, m) back to the origin and
// returns the edit script in forward order.
func backtrack(trace []frontier, n, m int) []edit {
	var rev []edit
	x, y := n, m

	for d := len(trace) - 1; d >= 0; d-- {
		f := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && f.at(k-1) < f.at(k+1)) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := f.at(prevK)
		prevY := prevX - prevK
		if d == 0 {
			prevX, prevY = 0, 0
		}

		for x > prevX && y > prevY {
			x--
			y--
			rev = append(rev, edit{Kind: OpEqual, Src: x, Dst: y})
		}
		if d > 0 {
			if x == prevX {
				y--
				rev = append(rev, edit{Kind: OpInsert, Src: x, Dst: y})
			} else {
				x--
				rev = append(rev, edit{Kind: OpDelete, Src: x, Dst: y})
			}
		}
	}

	out := make([]edit, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}
