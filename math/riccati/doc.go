/*
Package riccati computes the Riccati-Bessel functions and their logarithmic
derivatives which the multilayer Mie recursion is built from.

For a complex argument z and orders n = 0..nmax:

	D1[n] = psi_n'(z) / psi_n(z)     psi_n(z)  = z j_n(z)
	D3[n] = zeta_n'(z) / zeta_n(z)   zeta_n(z) = z h_n(z)

D1 is found by downward recursion, which is the only stable direction for
this quantity, started from a Lentz continued-fraction value a few orders
above max(nmax, |z|). D3 is then built upward from D1 and the product
psi_n * zeta_n (Pena & Pal, Comp. Phys. Comm. 180, 2009). Psi and Zeta
themselves are only ever needed at real arguments and grow upward.

All slices are indexed by order: element n holds order n.
*/
package riccati
