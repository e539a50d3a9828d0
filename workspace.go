package nmie

// workspace holds every order-indexed buffer one computation needs. It is
// sized once to nmax+1 and reused layer after layer, but never outlives the
// Compute call which made it.
type workspace struct {
	nmax int

	// Logarithmic derivatives at m_l x_l (d1, d3) and m_l x_{l-1}
	// (d1Inner, d3Inner).
	d1, d3           []complex128
	d1Inner, d3Inner []complex128

	// psi_n / zeta_n at the outer size parameter.
	ratio []complex128

	// Running boundary ratios, updated in place layer by layer.
	ha, hb []complex128
}

func newWorkspace(nmax int) *workspace {
	n := nmax + 1
	buf := make([]complex128, 7*n)
	ws := &workspace{nmax: nmax}
	ws.d1, buf = buf[:n:n], buf[n:]
	ws.d3, buf = buf[:n:n], buf[n:]
	ws.d1Inner, buf = buf[:n:n], buf[n:]
	ws.d3Inner, buf = buf[:n:n], buf[n:]
	ws.ratio, buf = buf[:n:n], buf[n:]
	ws.ha, buf = buf[:n:n], buf[n:]
	ws.hb = buf[:n:n]
	return ws
}
