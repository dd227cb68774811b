package workload

import (
	"math"
	mrand "math/rand"
	"sort"
	"strconv"
	"strings"
)

// Trig accumulates a chain of trigonometric, logarithmic and exponential
// terms.
func Trig(terms int) float64 {
	result := 0.0

	for j := 1; j <= terms; j++ {
		x := float64(j)
		result += math.Sqrt(x) + math.Sin(x)*math.Cos(x) + math.Log(x+1)/math.Tan(x+0.1)
		result *= math.Exp(math.Mod(-x, 5)) + math.Atan(x/10.0)
	}

	return result
}

// Series sums a short special-function series.
func Series(terms int) float64 {
	result := 0.0

	for j := 1; j <= terms; j++ {
		x := float64(j)
		result += math.Sqrt(x)*math.Sin(x)*math.Log10(x+1) + math.Exp(-x)*math.Cos(math.Tan(x))
	}

	return result
}

// Multiply builds two size x size matrices and returns their product.
func Multiply(size int) [][]float64 {
	a := make([][]float64, size)
	b := make([][]float64, size)
	product := make([][]float64, size)

	for x := 0; x < size; x++ {
		a[x] = make([]float64, size)
		b[x] = make([]float64, size)
		product[x] = make([]float64, size)

		for y := 0; y < size; y++ {
			a[x][y] = math.Sin(float64(x + y))
			b[x][y] = math.Cos(float64(x - y))
		}
	}

	for x := 0; x < size; x++ {
		row := product[x]
		for k := 0; k < size; k++ {
			ak := a[x][k]
			for y := 0; y < size; y++ {
				row[y] += ak * b[k][y]
			}
		}
	}

	return product
}

// Text builds and rewrites a string of lines, probes a set and searches a
// sorted slice of random values. The RNG is seeded from index so a given
// index always does the same work. It returns the position found by the
// search, or -1.
func Text(index, lines int) int {
	prefix := "Task-" + strconv.Itoa(index) + "-Line-"

	var b strings.Builder
	for j := 0; j < lines; j++ {
		b.WriteString(prefix)
		b.WriteString(strconv.Itoa(j))
		b.WriteByte(';')
	}

	processed := strings.ReplaceAll(b.String(), "Line", "ProcessedLine")
	if len(processed) == 0 {
		return -1
	}

	set := make(map[int]struct{}, lines)
	for j := 0; j < lines; j++ {
		set[j] = struct{}{}
	}

	hits := 0
	for j := 0; j < lines; j++ {
		if _, ok := set[j]; ok {
			hits++
		}
	}

	if hits != lines {
		return -1
	}

	rng := mrand.New(mrand.NewSource(int64(index)))

	values := make([]int, lines/2)
	for i := range values {
		values[i] = rng.Intn(1_000_000)
	}

	sort.Ints(values)

	target := rng.Intn(1_000_000)
	pos := sort.SearchInts(values, target)

	if pos == len(values) {
		return -1
	}

	return pos
}
