package encoding

// categoryCap is the per-category maximum share applied multiplicatively
// before multiplication by the baseline amount (spec.md §3 invariant 3).
const categoryCap = 0.30

// emitThreshold is the minimum amount a BMP assignment must strictly
// exceed to be emitted as a row (spec.md §3 invariant 5).
const emitThreshold = 1.0

// manureLbsPerTon converts dry pounds to wet tons via the factor
// observed in the source: amount_tons = (dry_lbs * share * cap) / 2000.
const manureLbsPerTon = 2000.0
