package lpc

// hamWindow is the 240 sample asymmetric analysis window: half a Hamming
// window over 200 samples followed by a quarter cosine over 40.
var hamWindow = [WindowSize]float64{
	0.08000000, 0.08005703, 0.08022812, 0.08051322, 0.08091226, 0.08142514,
	0.08205173, 0.08279189, 0.08364542, 0.08461211, 0.08569173, 0.08688400,
	0.08818864, 0.08960531, 0.09113366, 0.09277333, 0.09452389, 0.09638492,
	0.09835596, 0.10043651, 0.10262606, 0.10492407, 0.10732996, 0.10984315,
	0.11246300, 0.11518888, 0.11802009, 0.12095594, 0.12399571, 0.12713863,
	0.13038393, 0.13373081, 0.13717842, 0.14072593, 0.14437245, 0.14811707,
	0.15195887, 0.15589689, 0.15993016, 0.16405768, 0.16827842, 0.17259134,
	0.17699537, 0.18148941, 0.18607235, 0.19074306, 0.19550037, 0.20034311,
	0.20527007, 0.21028004, 0.21537178, 0.22054401, 0.22579545, 0.23112481,
	0.23653077, 0.24201198, 0.24756708, 0.25319469, 0.25889343, 0.26466187,
	0.27049859, 0.27640214, 0.28237105, 0.28840385, 0.29449903, 0.30065510,
	0.30687052, 0.31314374, 0.31947322, 0.32585739, 0.33229466, 0.33878343,
	0.34532210, 0.35190904, 0.35854262, 0.36522121, 0.37194313, 0.37870672,
	0.38551032, 0.39235222, 0.39923073, 0.40614415, 0.41309077, 0.42006885,
	0.42707668, 0.43411250, 0.44117458, 0.44826117, 0.45537051, 0.46250084,
	0.46965038, 0.47681736, 0.48400002, 0.49119656, 0.49840520, 0.50562416,
	0.51285164, 0.52008585, 0.52732500, 0.53456730, 0.54181094, 0.54905413,
	0.55629508, 0.56353198, 0.57076306, 0.57798650, 0.58520052, 0.59240334,
	0.59959316, 0.60676820, 0.61392669, 0.62106684, 0.62818689, 0.63528507,
	0.64235963, 0.64940880, 0.65643085, 0.66342402, 0.67038658, 0.67731681,
	0.68421299, 0.69107342, 0.69789637, 0.70468018, 0.71142315, 0.71812361,
	0.72477990, 0.73139036, 0.73795337, 0.74446730, 0.75093052, 0.75734143,
	0.76369845, 0.77000000, 0.77624451, 0.78243045, 0.78855626, 0.79462044,
	0.80062149, 0.80655790, 0.81242822, 0.81823098, 0.82396474, 0.82962809,
	0.83521963, 0.84073795, 0.84618170, 0.85154952, 0.85684009, 0.86205209,
	0.86718423, 0.87223524, 0.87720386, 0.88208887, 0.88688904, 0.89160320,
	0.89623016, 0.90076880, 0.90521797, 0.90957657, 0.91384354, 0.91801780,
	0.92209832, 0.92608409, 0.92997412, 0.93376744, 0.93746313, 0.94106025,
	0.94455793, 0.94795528, 0.95125147, 0.95444568, 0.95753712, 0.96052502,
	0.96340864, 0.96618727, 0.96886022, 0.97142682, 0.97388643, 0.97623846,
	0.97848231, 0.98061742, 0.98264328, 0.98455937, 0.98636523, 0.98806039,
	0.98964445, 0.99111701, 0.99247771, 0.99372620, 0.99486218, 0.99588537,
	0.99679551, 0.99759237, 0.99827577, 0.99884552, 0.99930150, 0.99964358,
	0.99987168, 0.99998574, 1.00000000, 0.99921931, 0.99687846, 0.99298110,
	0.98753331, 0.98054362, 0.97202291, 0.96198451, 0.95044409, 0.93741966,
	0.92293156, 0.90700241, 0.88965709, 0.87092267, 0.85082841, 0.82940569,
	0.80668794, 0.78271065, 0.75751124, 0.73112907, 0.70360534, 0.67498300,
	0.64530676, 0.61462295, 0.58297948, 0.55042575, 0.51701261, 0.48279220,
	0.44781798, 0.41214454, 0.37582758, 0.33892382, 0.30149086, 0.26358717,
	0.22527191, 0.18660492, 0.14764656, 0.10845768, 0.06909945, 0.02963333,
}

// lagWindow[0] is the white noise correction applied to r[0]; the other
// taps are a Gaussian lag window with 60 Hz bandwidth at 8 kHz.
var lagWindow = [Order + 1]float64{
	1.00010000, 0.99879038, 0.99546897, 0.98995781, 0.98229337, 0.97252619,
	0.96072036, 0.94695264, 0.93131179, 0.91389757, 0.89481968,
}

// grid holds the cosine abscissae of the LSP root search.
var grid = [GridPoints + 1]float64{
	0.99993896, 0.99802673, 0.99211470, 0.98228725, 0.96858316, 0.95105652,
	0.92977649, 0.90482705, 0.87630668, 0.84432793, 0.80901699, 0.77051324,
	0.72896863, 0.68454711, 0.63742399, 0.58778525, 0.53582679, 0.48175367,
	0.42577929, 0.36812455, 0.30901699, 0.24868989, 0.18738131, 0.12533323,
	0.06279052, 0.00000000, -0.06279052, -0.12533323, -0.18738131, -0.24868989,
	-0.30901699, -0.36812455, -0.42577929, -0.48175367, -0.53582679, -0.58778525,
	-0.63742399, -0.68454711, -0.72896863, -0.77051324, -0.80901699, -0.84432793,
	-0.87630668, -0.90482705, -0.92977649, -0.95105652, -0.96858316, -0.98228725,
	-0.99211470, -0.99802673, -0.99993896,
}
