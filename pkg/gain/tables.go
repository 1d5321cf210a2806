package gain

// Conjugate structure gain codebooks: column 0 is the pitch gain (Q14),
// column 1 the correction factor of the predicted code gain (Q13). A
// transmitted entry is the sum of one row from each table.
var gbk1 = [NCode1][2]int16{
	{1, 1516}, {1551, 2425}, {1831, 5022}, {57, 5404},
	{1921, 9291}, {3242, 9949}, {356, 14756}, {2678, 27162},
}

var gbk2 = [NCode2][2]int16{
	{826, 2005}, {1994, 0}, {5142, 592}, {6160, 2395},
	{8091, 4861}, {9120, 525}, {10573, 2966}, {11569, 1196},
	{13260, 3256}, {14194, 1630}, {15132, 5280}, {15161, 0},
	{15434, 2840}, {17287, 1307}, {17580, 3450}, {20840, 0},
}

// map1/map2 assign transmitted codes so that single bit errors land on
// neighbouring gains; imap1/imap2 are their inverses.
var (
	map1  = [NCode1]int{5, 1, 7, 4, 2, 0, 6, 3}
	imap1 = [NCode1]int{5, 1, 4, 7, 3, 0, 6, 2}
	map2  = [NCode2]int{2, 14, 3, 13, 0, 15, 1, 12, 6, 10, 7, 9, 4, 11, 5, 8}
	imap2 = [NCode2]int{4, 6, 0, 2, 12, 14, 8, 10, 15, 11, 9, 13, 7, 3, 1, 5}
)

// predCoeff is the MA predictor of the innovation energy (Q13).
var predCoeff = [PredOrder]int16{5571, 4751, 2785, 1556}
