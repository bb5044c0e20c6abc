package constraint

import (
	"fmt"
	"math"

	"github.com/axiom-physics/impulse/actor"
	"github.com/axiom-physics/impulse/internal/linalg"
	"github.com/axiom-physics/impulse/jacobian"
	"github.com/axiom-physics/impulse/lcp"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// maxRestitutionIters bounds Restitute's re-solve loop. In practice a
// single re-solve against the epsilon-scaled target clears every contact;
// the cap only guards against a pathological component that keeps a
// contact oscillating across the zero_tol boundary.
const maxRestitutionIters = 10

// Unbounded stands in for +/-Inf in a Keller-style bounded MLCP, the same
// sentinel magnitude the lcp package's own tests use for a free variable.
const Unbounded = 1e300

// ProblemData holds the matrices and vectors the assembler builds for one
// connected component of constraints: the ingredients the chosen friction
// model's MLCP is built from, plus everything ApplyImpulses/Restitute need
// to translate a solved z back into body velocities.
type ProblemData struct {
	NumContacts, NumLimits int

	Cn, Cs, Ct, L *mat.Dense
	Jx            *jacobian.SparseJacobian

	V []float64

	MInvCnT, MInvCsT, MInvCtT, MInvLT *mat.Dense

	CnV, CsV, CtV, LV []float64

	// FrictionUB holds μ_i·cn_i per contact; zero until ApplyImpulses
	// populates it from a solved z.
	FrictionUB []float64

	Model   FrictionModel
	EpsRank float64

	contacts []*Contact
	limits   []*JointLimit
	bodies   []*actor.RigidBody
	offset   map[*actor.RigidBody]int
}

func (pd *ProblemData) n() int { return len(pd.bodies) * 6 }

// Assembler builds ProblemData from a connected group of constraints.
type Assembler struct {
	EpsRank float64
}

// NewAssembler returns an Assembler using epsRank as the rank-revealing
// tolerance for Jx's implicit-joint row selection (spec.md §9's second
// Open Question, made an explicit parameter rather than an unspecified
// constant).
func NewAssembler(epsRank float64) *Assembler {
	return &Assembler{EpsRank: epsRank}
}

type jacobianRow struct {
	bodyA, bodyB *actor.RigidBody
	offA, offB   int
	linA, angA   mgl64.Vec3
	linB, angB   mgl64.Vec3
}

// Assemble builds a connected component's normal, tangent and limit
// Jacobians, the cached inverse-inertia products, and the pre-impact
// constraint velocities, per spec.md §4.5's Contract.
func (a *Assembler) Assemble(component []Constraint, model FrictionModel) (*ProblemData, error) {
	pd := &ProblemData{Model: model, EpsRank: a.EpsRank, offset: map[*actor.RigidBody]int{}}

	for _, c := range component {
		switch v := c.(type) {
		case *Contact:
			pd.contacts = append(pd.contacts, v)
			pd.addBody(v.BodyA)
			pd.addBody(v.BodyB)
		case *JointLimit:
			pd.limits = append(pd.limits, v)
			ba, bb := v.Joint.Bodies()
			pd.addBody(ba)
			pd.addBody(bb)
		default:
			return nil, fmt.Errorf("constraint: unknown constraint type %T", c)
		}
	}

	pd.NumContacts = len(pd.contacts)
	pd.NumLimits = len(pd.limits)
	N := pd.n()

	cnRows := make([]jacobianRow, pd.NumContacts)
	csRows := make([]jacobianRow, pd.NumContacts)
	ctRows := make([]jacobianRow, pd.NumContacts)
	for i, c := range pd.contacts {
		rA := c.Point.Sub(c.BodyA.Transform.Position)
		rB := c.Point.Sub(c.BodyB.Transform.Position)
		dirs := c.tangentBasis()
		t, s := dirs[0], dirs[1]

		cnRows[i] = a.normalRow(pd, c.BodyA, c.BodyB, rA, rB, c.Normal)
		csRows[i] = a.normalRow(pd, c.BodyA, c.BodyB, rA, rB, t)
		ctRows[i] = a.normalRow(pd, c.BodyA, c.BodyB, rA, rB, s)
	}

	lRows := make([]jacobianRow, pd.NumLimits)
	for i, lim := range pd.limits {
		ba, bb := lim.Joint.Bodies()
		rowA, rowB := lim.Joint.LimitRow(lim.DOFIndex)
		sign := 1.0
		if lim.Side == Upper {
			sign = -1.0
		}
		lRows[i] = jacobianRow{
			bodyA: ba, bodyB: bb,
			offA: pd.offset[ba], offB: pd.offset[bb],
			linA: mgl64.Vec3{rowA[0], rowA[1], rowA[2]}.Mul(sign),
			angA: mgl64.Vec3{rowA[3], rowA[4], rowA[5]}.Mul(sign),
			linB: mgl64.Vec3{rowB[0], rowB[1], rowB[2]}.Mul(sign),
			angB: mgl64.Vec3{rowB[3], rowB[4], rowB[5]}.Mul(sign),
		}
	}

	pd.Cn = fillJacobian(cnRows, N)
	pd.Cs = fillJacobian(csRows, N)
	pd.Ct = fillJacobian(ctRows, N)
	pd.L = fillJacobian(lRows, N)

	pd.MInvCnT = computeMInvT(cnRows, N)
	pd.MInvCsT = computeMInvT(csRows, N)
	pd.MInvCtT = computeMInvT(ctRows, N)
	pd.MInvLT = computeMInvT(lRows, N)

	pd.V = stackedVelocity(pd.bodies)
	pd.CnV = matVec(pd.Cn, pd.V)
	pd.CsV = matVec(pd.Cs, pd.V)
	pd.CtV = matVec(pd.Ct, pd.V)
	pd.LV = matVec(pd.L, pd.V)

	pd.FrictionUB = make([]float64, pd.NumContacts)

	pd.Jx = a.assembleJx(pd, component, N)

	return pd, nil
}

func (pd *ProblemData) addBody(b *actor.RigidBody) {
	if b == nil {
		return
	}
	if _, ok := pd.offset[b]; ok {
		return
	}
	pd.offset[b] = len(pd.bodies) * 6
	pd.bodies = append(pd.bodies, b)
}

func (a *Assembler) normalRow(pd *ProblemData, bodyA, bodyB *actor.RigidBody, rA, rB, dir mgl64.Vec3) jacobianRow {
	return jacobianRow{
		bodyA: bodyA, bodyB: bodyB,
		offA: pd.offset[bodyA], offB: pd.offset[bodyB],
		linA: dir, angA: rA.Cross(dir),
		linB: dir.Mul(-1), angB: rB.Cross(dir).Mul(-1),
	}
}

// assembleJx builds the bilateral implicit-joint Jacobian from the joints
// referenced by this component's limits, then retains only a full-rank
// subset of its rows (spec.md §4.5 Rank correction) via
// internal/linalg.RankRevealingQR.
func (a *Assembler) assembleJx(pd *ProblemData, component []Constraint, N int) *jacobian.SparseJacobian {
	seen := map[Joint]bool{}
	var joints []Joint
	for _, lim := range pd.limits {
		if !seen[lim.Joint] {
			seen[lim.Joint] = true
			joints = append(joints, lim.Joint)
		}
	}
	if len(joints) == 0 {
		return jacobian.New(0, N)
	}

	var rows []jacobianRow
	for _, j := range joints {
		ba, bb := j.Bodies()
		for i := 0; i < j.BilateralRowCount(); i++ {
			rowA, rowB := j.BilateralRow(i)
			rows = append(rows, jacobianRow{
				bodyA: ba, bodyB: bb,
				offA: pd.offset[ba], offB: pd.offset[bb],
				linA: mgl64.Vec3{rowA[0], rowA[1], rowA[2]},
				angA: mgl64.Vec3{rowA[3], rowA[4], rowA[5]},
				linB: mgl64.Vec3{rowB[0], rowB[1], rowB[2]},
				angB: mgl64.Vec3{rowB[3], rowB[4], rowB[5]},
			})
		}
	}

	dense := fillJacobian(rows, N)
	tol := a.EpsRank
	if tol <= 0 {
		tol = 1e-12
	}
	// RankRevealingQR selects full-rank columns; transpose so Jx's rows
	// become columns for the purpose of picking a full-rank row subset.
	active, rank := linalg.RankRevealingQR(transposeDense(dense), tol)

	jx := jacobian.New(rank, N)
	newRow := 0
	for oldRow, keep := range active {
		if !keep {
			continue
		}
		block := mat.NewDense(1, N, nil)
		for c := 0; c < N; c++ {
			block.Set(0, c, dense.At(oldRow, c))
		}
		jx.AddBlock(newRow, 0, block)
		newRow++
	}
	return jx
}

func fillJacobian(rows []jacobianRow, N int) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	m := mat.NewDense(len(rows), N, nil)
	for i, r := range rows {
		setBlock6(m, i, r.offA, r.linA, r.angA)
		if r.bodyB != nil {
			setBlock6(m, i, r.offB, r.linB, r.angB)
		}
	}
	return m
}

func setBlock6(m *mat.Dense, row, off int, lin, ang mgl64.Vec3) {
	m.Set(row, off+0, lin.X())
	m.Set(row, off+1, lin.Y())
	m.Set(row, off+2, lin.Z())
	m.Set(row, off+3, ang.X())
	m.Set(row, off+4, ang.Y())
	m.Set(row, off+5, ang.Z())
}

func computeMInvT(rows []jacobianRow, N int) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	out := mat.NewDense(N, len(rows), nil)
	for i, r := range rows {
		dvA, domA := r.bodyA.ApplyInverse(r.linA, r.angA)
		setCol6(out, r.offA, i, dvA, domA)
		if r.bodyB != nil {
			dvB, domB := r.bodyB.ApplyInverse(r.linB, r.angB)
			setCol6(out, r.offB, i, dvB, domB)
		}
	}
	return out
}

func setCol6(m *mat.Dense, off, col int, lin, ang mgl64.Vec3) {
	m.Set(off+0, col, m.At(off+0, col)+lin.X())
	m.Set(off+1, col, m.At(off+1, col)+lin.Y())
	m.Set(off+2, col, m.At(off+2, col)+lin.Z())
	m.Set(off+3, col, m.At(off+3, col)+ang.X())
	m.Set(off+4, col, m.At(off+4, col)+ang.Y())
	m.Set(off+5, col, m.At(off+5, col)+ang.Z())
}

func stackedVelocity(bodies []*actor.RigidBody) []float64 {
	v := make([]float64, len(bodies)*6)
	for i, b := range bodies {
		v[i*6+0] = b.Velocity.X()
		v[i*6+1] = b.Velocity.Y()
		v[i*6+2] = b.Velocity.Z()
		v[i*6+3] = b.AngularVelocity.X()
		v[i*6+4] = b.AngularVelocity.Y()
		v[i*6+5] = b.AngularVelocity.Z()
	}
	return v
}

func matVec(m *mat.Dense, v []float64) []float64 {
	if m == nil {
		return nil
	}
	rows, cols := m.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			sum += m.At(i, j) * v[j]
		}
		out[i] = sum
	}
	return out
}

func transposeDense(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(cols, rows, nil)
	out.Copy(m.T())
	return out
}

func dense3(a, b *mat.Dense) *mat.Dense {
	if a == nil || b == nil {
		return nil
	}
	ra, _ := a.Dims()
	_, cb := b.Dims()
	out := mat.NewDense(ra, cb, nil)
	out.Mul(a, b)
	return out
}

// BuildLCP assembles the (M, q, l, u) quadruple the impact handler hands
// to an lcp solver, per the friction model chosen when pd was assembled.
// Frictionless and Viscous share the same n_c+n_l unbounded LCP (Viscous
// resolves its tangential impulse directly, outside the solve). NoSlip
// adds the tangent rows back in as free (unbounded both ways) variables.
// AnitescuPotra is the full polyhedral-cone LCP: per-contact friction
// directions as nonnegative variables plus a slack complementary with the
// cone bound.
func (a *Assembler) BuildLCP(pd *ProblemData) (M *mat.Dense, q, l, u []float64) {
	switch pd.Model {
	case Frictionless, Viscous:
		return a.buildNormalLimitLCP(pd)
	case NoSlip:
		return a.buildNoSlipLCP(pd)
	default:
		return a.buildAnitescuPotraLCP(pd)
	}
}

func (a *Assembler) buildNormalLimitLCP(pd *ProblemData) (*mat.Dense, []float64, []float64, []float64) {
	nc, nl := pd.NumContacts, pd.NumLimits
	n := nc + nl
	M := mat.NewDense(n, n, nil)

	CnMInvCnT := dense3(pd.Cn, pd.MInvCnT)
	CnMInvLT := dense3(pd.Cn, pd.MInvLT)
	LMInvCnT := dense3(pd.L, pd.MInvCnT)
	LMInvLT := dense3(pd.L, pd.MInvLT)

	setBlock(M, 0, 0, CnMInvCnT)
	setBlock(M, 0, nc, CnMInvLT)
	setBlock(M, nc, 0, LMInvCnT)
	setBlock(M, nc, nc, LMInvLT)

	q := append(append([]float64{}, pd.CnV...), pd.LV...)
	l := make([]float64, n)
	u := make([]float64, n)
	for i := range u {
		u[i] = Unbounded
	}
	return M, q, l, u
}

func (a *Assembler) buildNoSlipLCP(pd *ProblemData) (*mat.Dense, []float64, []float64, []float64) {
	nc, nl := pd.NumContacts, pd.NumLimits
	n := 3*nc + nl
	M := mat.NewDense(n, n, nil)

	blocks := []*mat.Dense{pd.Cn, pd.Cs, pd.Ct, pd.L}
	invBlocks := []*mat.Dense{pd.MInvCnT, pd.MInvCsT, pd.MInvCtT, pd.MInvLT}
	offsets := []int{0, nc, 2 * nc, 3 * nc}

	for bi, rowBlock := range blocks {
		for bj, colBlock := range invBlocks {
			prod := dense3(rowBlock, colBlock)
			setBlock(M, offsets[bi], offsets[bj], prod)
		}
	}

	q := make([]float64, 0, n)
	q = append(q, pd.CnV...)
	q = append(q, pd.CsV...)
	q = append(q, pd.CtV...)
	q = append(q, pd.LV...)

	l := make([]float64, n)
	u := make([]float64, n)
	for i := 0; i < nc; i++ {
		u[i] = Unbounded
	}
	for i := nc; i < 3*nc; i++ {
		l[i] = -Unbounded
		u[i] = Unbounded
	}
	for i := 3 * nc; i < n; i++ {
		u[i] = Unbounded
	}
	return M, q, l, u
}

func (a *Assembler) buildAnitescuPotraLCP(pd *ProblemData) (*mat.Dense, []float64, []float64, []float64) {
	nc, nl := pd.NumContacts, pd.NumLimits

	dirCount := make([]int, nc)
	betaOffset := make([]int, nc)
	totalBeta := 0
	for i, c := range pd.contacts {
		k := c.TangentDirs
		if k <= 0 {
			k = 2
		}
		dirCount[i] = k
		betaOffset[i] = totalBeta
		totalBeta += k
	}

	n := nc + totalBeta + nc + nl
	lambdaOffset := nc + totalBeta
	limitOffset := lambdaOffset + nc

	M := mat.NewDense(n, n, nil)
	q := make([]float64, n)

	CnMInvCnT := dense3(pd.Cn, pd.MInvCnT)
	CnMInvCsT := dense3(pd.Cn, pd.MInvCsT)
	CnMInvCtT := dense3(pd.Cn, pd.MInvCtT)
	CnMInvLT := dense3(pd.Cn, pd.MInvLT)
	CsMInvCnT := dense3(pd.Cs, pd.MInvCnT)
	CsMInvCsT := dense3(pd.Cs, pd.MInvCsT)
	CsMInvCtT := dense3(pd.Cs, pd.MInvCtT)
	CsMInvLT := dense3(pd.Cs, pd.MInvLT)
	CtMInvCnT := dense3(pd.Ct, pd.MInvCnT)
	CtMInvCsT := dense3(pd.Ct, pd.MInvCsT)
	CtMInvCtT := dense3(pd.Ct, pd.MInvCtT)
	CtMInvLT := dense3(pd.Ct, pd.MInvLT)
	LMInvCnT := dense3(pd.L, pd.MInvCnT)
	LMInvCsT := dense3(pd.L, pd.MInvCsT)
	LMInvCtT := dense3(pd.L, pd.MInvCtT)
	LMInvLT := dense3(pd.L, pd.MInvLT)

	dirAngle := func(i, d int) (cosT, sinT float64) {
		theta := 2 * math.Pi * float64(d) / float64(dirCount[i])
		return math.Cos(theta), math.Sin(theta)
	}

	for i := 0; i < nc; i++ {
		q[i] = pd.CnV[i]
		for j := 0; j < nc; j++ {
			M.Set(i, j, CnMInvCnT.At(i, j))
		}
		for j := 0; j < nc; j++ {
			cj, sj := 0.0, 0.0
			for d := 0; d < dirCount[j]; d++ {
				cj, sj = dirAngle(j, d)
				M.Set(i, betaOffset[j]+d, cj*CnMInvCsT.At(i, j)+sj*CnMInvCtT.At(i, j))
			}
		}
		for j := 0; j < nl; j++ {
			M.Set(i, limitOffset+j, CnMInvLT.At(i, j))
		}
	}

	for i := 0; i < nc; i++ {
		for di := 0; di < dirCount[i]; di++ {
			ci, si := dirAngle(i, di)
			row := betaOffset[i] + di
			q[row] = ci*pd.CsV[i] + si*pd.CtV[i]

			for j := 0; j < nc; j++ {
				M.Set(row, j, ci*CsMInvCnT.At(i, j)+si*CtMInvCnT.At(i, j))
			}
			for j := 0; j < nc; j++ {
				for dj := 0; dj < dirCount[j]; dj++ {
					cj, sj := dirAngle(j, dj)
					val := ci*cj*CsMInvCsT.At(i, j) + ci*sj*CsMInvCtT.At(i, j) +
						si*cj*CtMInvCsT.At(i, j) + si*sj*CtMInvCtT.At(i, j)
					M.Set(row, betaOffset[j]+dj, val)
				}
			}
			M.Set(row, lambdaOffset+i, 1)
			for j := 0; j < nl; j++ {
				M.Set(row, limitOffset+j, ci*CsMInvLT.At(i, j)+si*CtMInvLT.At(i, j))
			}
		}
	}

	for i := 0; i < nc; i++ {
		row := lambdaOffset + i
		M.Set(row, i, pd.contacts[i].Mu)
		for d := 0; d < dirCount[i]; d++ {
			M.Set(row, betaOffset[i]+d, -1)
		}
	}

	for i := 0; i < nl; i++ {
		row := limitOffset + i
		q[row] = pd.LV[i]
		for j := 0; j < nc; j++ {
			M.Set(row, j, LMInvCnT.At(i, j))
		}
		for j := 0; j < nc; j++ {
			for d := 0; d < dirCount[j]; d++ {
				cj, sj := dirAngle(j, d)
				M.Set(row, betaOffset[j]+d, cj*LMInvCsT.At(i, j)+sj*LMInvCtT.At(i, j))
			}
		}
		for j := 0; j < nl; j++ {
			M.Set(row, limitOffset+j, LMInvLT.At(i, j))
		}
	}

	l := make([]float64, n)
	u := make([]float64, n)
	for i := range u {
		u[i] = Unbounded
	}
	return M, q, l, u
}

func setBlock(dst *mat.Dense, rowOff, colOff int, src *mat.Dense) {
	if src == nil {
		return
	}
	rows, cols := src.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst.Set(rowOff+i, colOff+j, src.At(i, j))
		}
	}
}

// ApplyImpulses translates a solved z back into per-body velocity deltas,
// Δv_body = M_body⁻¹·Jᵀ·z (spec.md §4.5 Impulse application), and
// populates FrictionUB from the solved normal impulses.
func (a *Assembler) ApplyImpulses(pd *ProblemData, z []float64) {
	a.scatter(pd, z)

	if pd.Model == Viscous {
		// Viscous friction is a direct function of the pre-solve tangential
		// velocity, not one of z's entries, so it is applied exactly once
		// here rather than through scatter's index-driven, delta-safe path
		// (Restitute re-applies scatter incrementally, which would double
		// this impulse if it lived there).
		for i, c := range pd.contacts {
			cVisc := c.Mu
			applyColumnTo(pd, pd.MInvCsT, i, -cVisc*pd.CsV[i])
			applyColumnTo(pd, pd.MInvCtT, i, -cVisc*pd.CtV[i])
		}
	}

	for i := 0; i < pd.NumContacts && i < len(z); i++ {
		pd.FrictionUB[i] = pd.contacts[i].Mu * math.Max(z[i], 0)
	}
}

// applyColumnTo adds zi times MInvT's column col, a per-body 6-vector,
// into every affected body's velocity and angular velocity.
func applyColumnTo(pd *ProblemData, MInvT *mat.Dense, col int, zi float64) {
	if zi == 0 || MInvT == nil {
		return
	}
	N, _ := MInvT.Dims()
	for row := 0; row < N; row += 6 {
		bodyIdx := row / 6
		b := pd.bodies[bodyIdx]
		dv := mgl64.Vec3{MInvT.At(row, col), MInvT.At(row+1, col), MInvT.At(row+2, col)}.Mul(zi)
		domega := mgl64.Vec3{MInvT.At(row+3, col), MInvT.At(row+4, col), MInvT.At(row+5, col)}.Mul(zi)
		b.Velocity = b.Velocity.Add(dv)
		b.AngularVelocity = b.AngularVelocity.Add(domega)
	}
}

// scatter applies the per-body velocity deltas M_body⁻¹·Jᵀ·z for a solved
// (or incremental) z, routing the tangential and limit columns through the
// layout BuildLCP used for pd.Model. Shared by ApplyImpulses, which applies
// a full solve, and Restitute, which applies the incremental correction
// from a restitution re-solve. The Viscous model's tangential friction is
// not index-driven and is handled separately by ApplyImpulses.
func (a *Assembler) scatter(pd *ProblemData, z []float64) {
	nc, nl := pd.NumContacts, pd.NumLimits

	applyColumn := func(MInvT *mat.Dense, col int, zi float64) {
		applyColumnTo(pd, MInvT, col, zi)
	}

	for i := 0; i < nc && i < len(z); i++ {
		applyColumn(pd.MInvCnT, i, z[i])
	}

	switch pd.Model {
	case NoSlip:
		for i := 0; i < nc; i++ {
			sIdx := nc + i
			tIdx := 2*nc + i
			if sIdx < len(z) {
				applyColumn(pd.MInvCsT, i, z[sIdx])
			}
			if tIdx < len(z) {
				applyColumn(pd.MInvCtT, i, z[tIdx])
			}
		}
	case AnitescuPotra:
		betaOffset := 0
		for i, c := range pd.contacts {
			k := c.TangentDirs
			if k <= 0 {
				k = 2
			}
			for d := 0; d < k; d++ {
				idx := nc + betaOffset + d
				if idx >= len(z) {
					continue
				}
				theta := 2 * math.Pi * float64(d) / float64(k)
				ci, si := math.Cos(theta), math.Sin(theta)
				applyColumn(pd.MInvCsT, i, z[idx]*ci)
				applyColumn(pd.MInvCtT, i, z[idx]*si)
			}
			betaOffset += k
		}
	}

	limitBase := nc
	switch pd.Model {
	case NoSlip:
		limitBase = 3 * nc
	case AnitescuPotra:
		totalBeta := 0
		for _, c := range pd.contacts {
			k := c.TangentDirs
			if k <= 0 {
				k = 2
			}
			totalBeta += k
		}
		limitBase = nc + totalBeta + nc
	}
	for i := 0; i < nl; i++ {
		idx := limitBase + i
		if idx < len(z) {
			applyColumn(pd.MInvLT, i, z[idx])
		}
	}
}

// Restitute implements spec.md §4.5's restitution loop: builds
// q̃ = q + ε⊙(Cn·v_pre) on the normal rows, re-solves against it with
// lcp.Keller (which accepts bounded and unbounded variables alike, so it
// covers every friction model's LCP layout), and applies the incremental
// impulse the re-solve produces. It repeats until every contact's
// ε-corrected normal velocity is non-negative within zeroTol, a bound is
// hit, or maxRestitutionIters is exhausted, and reports whether it ever
// applied a correction.
func (a *Assembler) Restitute(pd *ProblemData, z []float64, zeroTol float64) (restituted bool) {
	nc := pd.NumContacts
	if nc == 0 || len(z) < nc {
		return false
	}

	hasRestitution := false
	for _, c := range pd.contacts {
		if c.Restitution != 0 {
			hasRestitution = true
			break
		}
	}
	if !hasRestitution {
		return false
	}

	M, q, l, u := a.BuildLCP(pd)
	n, _ := M.Dims()
	if len(z) != n {
		return false
	}
	current := append([]float64{}, z...)

	for iter := 0; iter < maxRestitutionIters; iter++ {
		qTilde := append([]float64{}, q...)
		for i := 0; i < nc; i++ {
			if eps := pd.contacts[i].Restitution; eps != 0 {
				qTilde[i] = q[i] + eps*pd.CnV[i]
			}
		}

		w := matVec(M, current)
		violated := false
		for i := 0; i < nc; i++ {
			if w[i]+qTilde[i] < -zeroTol {
				violated = true
				break
			}
		}
		if !violated {
			break
		}

		result, err := lcp.Keller(M, qTilde, l, u, current, zeroTol)
		if err != nil {
			break
		}

		delta := make([]float64, len(result.Z))
		for i := range delta {
			delta[i] = result.Z[i] - current[i]
		}
		a.scatter(pd, delta)
		current = result.Z
		restituted = true
	}

	for i := 0; i < nc && i < len(current); i++ {
		pd.FrictionUB[i] = pd.contacts[i].Mu * math.Max(current[i], 0)
	}

	return restituted
}
