package pitch

// interp31 is the fractional delay kernel of the adaptive codebook: a
// Hamming weighted sinc sampled at thirds of a sample.
var interp31 = [UpSamp*LInter10 + 1]float64{
	1.00000000, 0.82504155, 0.40960309, 0.00000000, -0.19904088, -0.15583853,
	-0.00000000, 0.10503155, 0.08858389, 0.00000000, -0.06478033, -0.05582816,
	-0.00000000, 0.04168684, 0.03601301, 0.00000000, -0.02670679, -0.02288063,
	-0.00000000, 0.01655029, 0.01395215, 0.00000000, -0.00971459, -0.00802094,
	-0.00000000, 0.00537376, 0.00438308, 0.00000000, -0.00298592, -0.00254988,
	-0.00000000,
}

// interp13 interpolates normalized correlations at thirds of a sample.
var interp13 = [UpSamp*LInter4 + 1]float64{
	1.00000000, 0.81593912, 0.39170944, 0.00000000, -0.16566946, -0.11629482,
	-0.00000000, 0.05724603, 0.03895984, 0.00000000, -0.01618302, -0.00997581,
	-0.00000000,
}
