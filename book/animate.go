package book

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Page side tags.
const (
	SideLeft   = "left"
	SideRight  = "right"
	SideSingle = "single"
)

// maximum rotation of a turning page in degrees
const turnAngle = 30

// Window returns range of page indices visible at position: floor and ceil
// page (pair) and, in two page mode, their right pages.
func Window(pos float64, twoPages bool) (floor, ceil, least, most int) {
	if twoPages {
		floor = int(math.Floor(pos/2)) * 2
		ceil = int(math.Ceil(pos/2)) * 2
	} else {
		floor = int(math.Floor(pos))
		ceil = int(math.Ceil(pos))
	}
	least, most = floor, ceil
	if twoPages {
		most++
	}
	return floor, ceil, least, most
}

// Cover returns depth offset and rotation recovery factor of cover rotation
// for openness.
func Cover(openness, pageWidth float64) (depth, recovery float64) {
	closed := 1 - openness
	depth = math.Pow(math.Max(0, closed), 1.5) * -pageWidth * 1.3
	recovery = math.Min(0.625*math.Log(4*closed+1), 1)
	return depth, recovery
}

// pageState collects visual state of one page during tick.
type pageState struct {
	transform []string
	opacity   string
	side      string
}

// tick derives visual state from current spring values.
func (v *View) tick() {
	if v.closed {
		return
	}
	open := v.openness.Value
	v.style(v.ui.background, "opacity", num(math.Max(0, math.Min(open, 1))))

	if open <= 0 {
		v.style(v.ui.container, "display", "none")
		return
	}
	v.style(v.ui.container, "display", "")
	v.style(v.ui.header, "transform", "translateY("+num(-100*(1-open))+"%)")

	var (
		twoPages = v.layout.TwoPages
		cur      = v.position.Value
	)
	floor, ceil, least, most := Window(cur, twoPages)
	v.mount(least, most)

	states := make(map[int]*pageState)
	state := func(i int) *pageState {
		if i < least || i > most || !v.valid(i) {
			return nil
		}
		if states[i] == nil {
			states[i] = &pageState{}
		}
		return states[i]
	}
	for i := least; i <= most; i++ {
		state(i)
	}

	depth, recovery := Cover(open, v.ctx.Width)

	if floor == ceil {
		left, right := state(floor), state(floor+1)
		if left != nil {
			left.side = SideSingle
			if twoPages {
				left.side = SideLeft
			}
		}
		if !twoPages {
			right = nil
		}
		if right != nil {
			right.side = SideRight
		}
		if open != 1 {
			if left != nil {
				left.transform = append(left.transform, translateZ(depth), rotateY(recovery*90))
			}
			if right != nil {
				right.transform = append(right.transform, translateZ(depth), rotateY(-recovery*90))
			}
		}
		if !twoPages && left != nil {
			left.transform = append(left.transform, "translateX(-50%)")
		}
	} else {
		var p float64
		if twoPages {
			p = math.Mod(cur, 2) / 2
		} else {
			p = math.Mod(cur, 1)
		}

		turn := func(ps *pageState, p, cover float64) {
			if ps == nil {
				return
			}
			if open != 1 {
				ps.transform = append(ps.transform, translateZ(depth), rotateY(open*p*turnAngle+recovery*cover))
			} else {
				ps.transform = append(ps.transform, rotateY(p*turnAngle))
			}
			ps.opacity = num(1 - math.Abs(p))
		}

		prevLeft, nextLeft := state(floor), state(ceil)
		turn(prevLeft, -p, 90)
		turn(nextLeft, 1-p, 90)
		for _, ps := range []*pageState{prevLeft, nextLeft} {
			if ps == nil {
				continue
			}
			if twoPages {
				ps.side = SideLeft
			} else {
				ps.side = SideSingle
				ps.transform = append(ps.transform, "translateX(-50%)")
			}
		}
		if twoPages {
			prevRight, nextRight := state(floor+1), state(ceil+1)
			turn(prevRight, -p, -90)
			turn(nextRight, 1-p, -90)
			for _, ps := range []*pageState{prevRight, nextRight} {
				if ps != nil {
					ps.side = SideRight
				}
			}
		}
	}

	for i, ps := range states {
		n := v.nodes[i]
		v.style(n, "transform", strings.Join(ps.transform, " "))
		v.style(n, "opacity", ps.opacity)
		v.set(n, "data-position", ps.side)
	}
}

func (v *View) valid(i int) bool {
	return i >= 0 && i < len(v.nodes)
}

// mount makes mounted pages exactly the existing pages in [least, most].
func (v *View) mount(least, most int) {
	keep := v.mounted[:0:0]
	for _, i := range v.mounted {
		switch {
		case !v.valid(i):
		case i >= least && i <= most:
			keep = append(keep, i)
		default:
			v.detach(v.ui.pages, v.nodes[i])
		}
	}
	for i := least; i <= most; i++ {
		if !v.valid(i) || slices.Contains(keep, i) {
			continue
		}
		v.attach(v.ui.pages, v.nodes[i])
		keep = append(keep, i)
	}
	v.mounted = keep
}

// Mounted returns sorted indices of pages attached to the tree.
func (v *View) Mounted() []int {
	return slices.Sorted(slices.Values(v.mounted))
}

func translateZ(z float64) string {
	return "translateZ(" + num(z) + "px)"
}

func rotateY(deg float64) string {
	return "rotateY(" + num(deg) + "deg)"
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
