package circuit

import "github.com/consensys/gnark/frontend"

// Commit computes commit(s1, s2) = H(s1 || s2) as a Wide4 digest. Both
// circuit variants call this identical function to derive an identity
// commitment, so the formula cannot drift between them: the Tornado variant
// simply narrows the result to its first element afterwards.
func Commit(api frontend.API, s1, s2 Wide4) (Wide4, error) {
	return WideCombine(api, s1, s2)
}

// Nullify computes nullify(s1, ctx) = H(s1 || ctx) as a Wide4 digest, shared
// by both circuit variants for the same reason as Commit.
func Nullify(api frontend.API, s1, ctx Wide4) (Wide4, error) {
	return WideCombine(api, s1, ctx)
}

// selectWide4 is api.Select lifted over a Wide4's four lanes.
func selectWide4(api frontend.API, cond frontend.Variable, ifTrue, ifFalse Wide4) Wide4 {
	var out Wide4
	for i := range out {
		out[i] = api.Select(cond, ifTrue[i], ifFalse[i])
	}
	return out
}

// assertWide4Equal asserts two Wide4 digests are lane-wise equal.
func assertWide4Equal(api frontend.API, a, b Wide4) {
	for i := range a {
		api.AssertIsEqual(a[i], b[i])
	}
}
