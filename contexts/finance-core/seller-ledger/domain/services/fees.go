package services

// SplitProceeds applies the platform fee, expressed in basis points, to
// a gross amount. The fee rounds down, so the seller's net never loses a
// minor unit to rounding.
func SplitProceeds(gross int64, feeBps int) (fee int64, net int64) {
	if feeBps < 0 {
		feeBps = 0
	}
	fee = gross * int64(feeBps) / 10000
	return fee, gross - fee
}
