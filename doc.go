// Package mathcast parses a compact math notation into an expression tree and
// renders it as plain text, LaTeX, and a speech-synchronized reveal of the
// LaTeX.
//
// The notation is close to what you'd type in a chat: "a + b*c", "x^2",
// "sqrt(4)", "x in A; y in B", "lim(1/n, n, infty)". Every node of a parsed
// tree carries a rational coefficient, so "-x" is the reference x with
// coefficient -1 and "2*x" is x with coefficient 2 rather than a product with
// a literal.
//
// Trees live in a Session, which owns node identities and the variable
// registry. Independent sessions never share state.
//
// A Flow decomposes a tree into small LaTeX fragments with pronunciations.
// Its spoken text is meant for a speech engine, and a Reveal produces
// progressively complete LaTeX snapshots as the engine's cursor advances.
package mathcast
