package basicop

var tabLog = [33]int16{
	0, 1455, 2866, 4236, 5568, 6863, 8124, 9352, 10549, 11716,
	12855, 13967, 15054, 16117, 17156, 18172, 19167, 20142, 21097, 22033,
	22951, 23852, 24735, 25603, 26455, 27291, 28113, 28922, 29716, 30497,
	31266, 32023, 32767,
}

var tabPow = [33]int16{
	16384, 16743, 17109, 17484, 17867, 18258, 18658, 19066, 19484, 19911,
	20347, 20792, 21247, 21713, 22188, 22674, 23170, 23678, 24196, 24726,
	25268, 25821, 26386, 26964, 27554, 28158, 28774, 29405, 30048, 30706,
	31379, 32066, 32767,
}

// Log2 computes log2(x) for x > 0 as an integer exponent and a Q15 fraction
// by table interpolation. Non-positive inputs yield (0, 0).
func Log2(x int32) (exponent, fraction int16) {
	if x <= 0 {
		return 0, 0
	}
	n := NormL(x)
	x = LShl(x, n)
	exponent = Sub(30, n)

	x = LShr(x, 9)
	i := ExtractH(x) // b25-b31
	x = LShr(x, 1)
	a := ExtractL(x) & 0x7fff // b10-b24
	i = Sub(i, 32)

	y := DepositH(tabLog[i])
	tmp := Sub(tabLog[i], tabLog[i+1])
	y = LMsu(y, tmp, a)
	return exponent, ExtractH(y)
}

// Pow2 computes 2^(exponent+fraction) with fraction in Q15 and
// 0 <= exponent <= 30.
func Pow2(exponent, fraction int16) int32 {
	x := LMult(fraction, 32)
	i := ExtractH(x)
	x = LShr(x, 1)
	a := ExtractL(x) & 0x7fff

	x = DepositH(tabPow[i])
	tmp := Sub(tabPow[i], tabPow[i+1])
	x = LMsu(x, tmp, a)

	return LShrR(x, Sub(30, exponent))
}

// DotProduct12 returns the normalized sum of x[i]*y[i] and its exponent:
// sum = result * 2^(exp-31).
func DotProduct12(x, y []int16) (int32, int16) {
	sum := int32(1)
	for i := range x {
		sum = LMac(sum, x[i], y[i])
	}
	sft := NormL(sum)
	sum = LShl(sum, sft)
	return sum, Sub(30, sft)
}

// Random advances a 16-bit linear congruential generator and returns the
// new value.
func Random(seed *int16) int16 {
	*seed = ExtractL(LAdd(LShr(LMult(*seed, 31821), 1), 13849))
	return *seed
}

// Gauss returns an approximately unit-variance sample built from twelve
// draws of Random.
func Gauss(seed *int16) float64 {
	var acc int32
	for i := 0; i < 12; i++ {
		acc += int32(Random(seed))
	}
	return float64(acc) / 65536
}
