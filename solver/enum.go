package solver

import (
	"math"
	"sort"
	"time"

	"github.com/ajalab/concolic/expr"
)

// Enum is a bounded solver that enumerates candidate assignments.
//
// Each variable is drawn from a candidate set made of zero, small values,
// the constants of the assertions and their neighbours, and the bounds of its
// kind. Booleans and 8-bit integers range over their whole domain. Enum
// reports Unsat when the comparisons of variables against constants admit no
// value, or when every variable has a full domain and none satisfies the
// assertions. Other failed searches are reported as DontKnow.
type Enum struct {
	frames
	opts Options
}

// NewEnum creates an enumerating solver.
func NewEnum(opts Options) *Enum {
	opts = DefaultOptions().Merge(opts)
	return &Enum{opts: opts}
}

// Push opens a new frame.
func (s *Enum) Push() error {
	s.push()
	return nil
}

// Pop discards the n innermost frames.
func (s *Enum) Pop(n int) error {
	return s.pop(n)
}

// Add asserts constraints in the innermost frame.
func (s *Enum) Add(constraints ...expr.Expr) error {
	if err := checkBool(constraints); err != nil {
		return err
	}
	s.add(constraints...)
	return nil
}

// Solve searches for an assignment satisfying every assertion.
func (s *Enum) Solve() (Result, expr.Valuation, error) {
	as := s.assertions()
	bounds, feasible := intervals(as)
	if !feasible {
		return Unsat, expr.Valuation{}, nil
	}
	vars := expr.Vars(as...)
	consts := expr.Constants(as...)

	domains := make([][]expr.Value, len(vars))
	complete := true
	total := 1
	for i, x := range vars {
		d, full := candidates(x.Type, consts)
		if b, ok := bounds[x.Name]; ok && !full {
			d = b.prefer(x.Type, d)
		}
		domains[i] = d
		complete = complete && full
		if total <= s.opts.MaxCandidates {
			total *= len(d)
		}
	}
	if total > s.opts.MaxCandidates {
		complete = false
	}

	var deadline time.Time
	if s.opts.Timeout > 0 {
		deadline = time.Now().Add(s.opts.Timeout)
	}

	idx := make([]int, len(vars))
	m := make(map[string]expr.Value, len(vars))
	for tried := 0; tried < s.opts.MaxCandidates; tried++ {
		if tried&0xff == 0xff && !deadline.IsZero() && time.Now().After(deadline) {
			return DontKnow, expr.Valuation{}, nil
		}
		for i, x := range vars {
			m[x.Name] = domains[i][idx[i]]
		}
		v := expr.NewValuation(m)
		if satisfies(as, v) {
			return Sat, v, nil
		}
		if !next(idx, domains) {
			if complete {
				return Unsat, expr.Valuation{}, nil
			}
			break
		}
	}
	return DontKnow, expr.Valuation{}, nil
}

// next advances idx as an odometer over domains. It returns false after the last assignment.
func next(idx []int, domains [][]expr.Value) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(domains[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}

// satisfies reports whether every assertion holds under v.
// An assertion whose evaluation is undefined does not hold.
func satisfies(as []expr.Expr, v expr.Valuation) bool {
	for _, a := range as {
		ok, err := expr.IsTrue(a, v)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// candidates returns the values tried for a variable of kind k and whether
// they cover the whole domain of k.
func candidates(k expr.Kind, consts []expr.Value) ([]expr.Value, bool) {
	switch {
	case k == expr.Bool:
		return []expr.Value{expr.BoolValue(false), expr.BoolValue(true)}, true
	case k.IsInteger() && k.Bits() <= 8:
		var vs []expr.Value
		for i := k.Min(); i <= k.Max(); i++ {
			vs = append(vs, expr.IntValue(k, i))
		}
		sortByMagnitude(vs)
		return vs, true
	case k.IsFloat():
		return floatCandidates(k, consts), false
	}
	return intCandidates(k, consts), false
}

func intCandidates(k expr.Kind, consts []expr.Value) []expr.Value {
	seen := make(map[int64]struct{})
	var vs []expr.Value
	add := func(i int64) {
		if i < k.Min() || i > k.Max() {
			return
		}
		if _, ok := seen[i]; ok {
			return
		}
		seen[i] = struct{}{}
		vs = append(vs, expr.IntValue(k, i))
	}
	for _, i := range []int64{0, 1, -1, 2, -2} {
		add(i)
	}
	for _, c := range consts {
		var i int64
		if c.Kind().IsFloat() {
			i = int64(c.Float())
		} else {
			i = c.Int()
		}
		add(i)
		if i > math.MinInt64 {
			add(i - 1)
		}
		if i < math.MaxInt64 {
			add(i + 1)
		}
		if i != math.MinInt64 {
			add(-i)
		}
	}
	add(k.Min())
	add(k.Max())
	sortByMagnitude(vs)
	return vs
}

func floatCandidates(k expr.Kind, consts []expr.Value) []expr.Value {
	seen := make(map[float64]struct{})
	var vs []expr.Value
	add := func(f float64) {
		v := expr.FloatValue(k, f)
		if _, ok := seen[v.Float()]; ok {
			return
		}
		seen[v.Float()] = struct{}{}
		vs = append(vs, v)
	}
	for _, f := range []float64{0, 1, -1, 0.5, -0.5} {
		add(f)
	}
	for _, c := range consts {
		var f float64
		if c.Kind().IsFloat() {
			f = c.Float()
		} else {
			f = float64(c.Int())
		}
		add(f)
		add(f - 1)
		add(f + 1)
		add(f - 0.5)
		add(f + 0.5)
		add(-f)
	}
	sortByMagnitude(vs)
	return vs
}

// sortByMagnitude orders values by absolute value, non-negative first on ties.
func sortByMagnitude(vs []expr.Value) {
	key := func(v expr.Value) float64 {
		if v.Kind().IsFloat() {
			return v.Float()
		}
		return float64(v.Int())
	}
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := key(vs[i]), key(vs[j])
		if math.Abs(a) != math.Abs(b) {
			return math.Abs(a) < math.Abs(b)
		}
		return a > b
	})
}

type interval struct {
	lo, hi int64
	// ne holds the values excluded by disequalities.
	ne map[int64]struct{}
}

// shrink moves the bounds of iv past excluded values. It returns false if iv becomes empty.
func (iv *interval) shrink() bool {
	for iv.lo <= iv.hi {
		if _, ok := iv.ne[iv.lo]; !ok {
			break
		}
		if iv.lo == iv.hi {
			return false
		}
		iv.lo++
	}
	for iv.lo <= iv.hi {
		if _, ok := iv.ne[iv.hi]; !ok {
			break
		}
		iv.hi--
	}
	return iv.lo <= iv.hi
}

func (iv interval) contains(i int64) bool {
	_, excluded := iv.ne[i]
	return iv.lo <= i && i <= iv.hi && !excluded
}

// prefer returns the candidates vs extended by the bounds of iv, with the
// values inside iv moved to the front.
func (iv interval) prefer(k expr.Kind, vs []expr.Value) []expr.Value {
	ext := append([]expr.Value{expr.IntValue(k, iv.lo), expr.IntValue(k, iv.hi)}, vs...)
	sortByMagnitude(ext)
	var in, out []expr.Value
	seen := make(map[int64]struct{}, len(ext))
	for _, v := range ext {
		if _, ok := seen[v.Int()]; ok {
			continue
		}
		seen[v.Int()] = struct{}{}
		if iv.contains(v.Int()) {
			in = append(in, v)
		} else {
			out = append(out, v)
		}
	}
	return append(in, out...)
}

// intervals bounds integer variables by the comparisons against constants
// that every model must satisfy. It returns false if some bound is empty.
func intervals(as []expr.Expr) (map[string]interval, bool) {
	bounds := make(map[string]interval)
	var visit func(e expr.Expr) bool
	visit = func(e expr.Expr) bool {
		switch e := e.(type) {
		case expr.Const:
			return e.Value.Bool()
		case *expr.Logic:
			if e.Op != expr.OpAnd {
				return true
			}
			for _, arg := range e.Args {
				if !visit(arg) {
					return false
				}
			}
			return true
		case *expr.Binary:
			return tighten(bounds, e)
		}
		return true
	}
	for _, a := range as {
		if !visit(a) {
			return nil, false
		}
	}
	for name, iv := range bounds {
		if !iv.shrink() {
			return nil, false
		}
		bounds[name] = iv
	}
	return bounds, true
}

func tighten(bounds map[string]interval, b *expr.Binary) bool {
	if !b.Op.IsComparison() || !b.X.Kind().IsInteger() {
		return true
	}
	op := b.Op
	x, okx := b.X.(*expr.Var)
	c, okc := b.Y.(expr.Const)
	if !okx || !okc {
		x, okx = b.Y.(*expr.Var)
		c, okc = b.X.(expr.Const)
		if !okx || !okc {
			return true
		}
		op = mirror(op)
	}
	iv, ok := bounds[x.Name]
	if !ok {
		iv = interval{lo: x.Type.Min(), hi: x.Type.Max()}
	}
	v := c.Value.Int()
	switch op {
	case expr.OpEq:
		iv.lo, iv.hi = maxInt(iv.lo, v), minInt(iv.hi, v)
	case expr.OpLt:
		if v == math.MinInt64 {
			return false
		}
		iv.hi = minInt(iv.hi, v-1)
	case expr.OpLe:
		iv.hi = minInt(iv.hi, v)
	case expr.OpGt:
		if v == math.MaxInt64 {
			return false
		}
		iv.lo = maxInt(iv.lo, v+1)
	case expr.OpGe:
		iv.lo = maxInt(iv.lo, v)
	case expr.OpNe:
		if iv.ne == nil {
			iv.ne = make(map[int64]struct{})
		}
		iv.ne[v] = struct{}{}
	}
	bounds[x.Name] = iv
	return iv.lo <= iv.hi
}

// mirror returns the operator op' such that (c op x) == (x op' c).
func mirror(op expr.Op) expr.Op {
	switch op {
	case expr.OpLt:
		return expr.OpGt
	case expr.OpLe:
		return expr.OpGe
	case expr.OpGt:
		return expr.OpLt
	case expr.OpGe:
		return expr.OpLe
	}
	return op
}

func minInt(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
