// Package cosmo computes distance measures for flat FLRW cosmologies.
//
// A [Params] value fixes the density fractions and the Hubble rate. A [Table]
// bound to it integrates the comoving distance and comoving volume in
// redshift, keeping an append-only sampled table that grows on demand through
// [Table.Extend], and answers redshift/distance conversions by linear
// interpolation against that table.
//
// # Units
//
// Everything is stored in CGS: distances in cm, volumes in cm^3, Ho in s^-1.
// The [Unit] given to [NewParams] scales luminosity-distance queries and
// volume elements at query time only. [Bounds] are always in cm and cm^3.
//
// # Extrapolation
//
// Queries outside the tabulated range return the boundary sample's value.
// Call Extend first when genuine out-of-range values are needed.
//
// # Example
//
//	p, _ := cosmo.NewParams(cosmo.HubbleFromKmSMpc(70), 0.25, 0, 0.75, cosmo.UnitMpc)
//	tbl := cosmo.NewTable(p)
//	_ = tbl.Extend(cosmo.Bounds{MaxZ: 2, MaxDL: 1000 * cosmo.MpcCGS}, cosmo.ExtendConfig{})
//	dl := tbl.Z2DL(1.0) // Mpc
//
// # Thread Safety
//
// Table is safe for concurrent use: queries share a read lock and Extend takes
// the write lock. Integration itself is sequential. Observers and the logger
// run after the lock is released.
package cosmo
