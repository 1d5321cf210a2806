package lsp

// codebook1 is the first stage codebook. Entries are ordered frequency
// vectors obtained by monotone warps of a uniform spread so that every
// entry is a valid envelope on its own.
var codebook1 = [NC0][Order]float64{
	{0.158252, 0.369188, 0.678336, 0.993648, 1.328245, 1.687684, 2.022281, 2.337593, 2.646741, 2.857677},
	{0.173099, 0.364962, 0.664692, 1.001757, 1.339581, 1.676348, 2.014172, 2.351237, 2.650967, 2.842830},
	{0.187947, 0.360736, 0.651047, 1.009867, 1.350918, 1.665011, 2.006062, 2.364881, 2.655193, 2.827982},
	{0.202794, 0.356510, 0.637403, 1.017976, 1.362254, 1.653675, 1.997952, 2.378526, 2.659419, 2.813135},
	{0.190999, 0.396395, 0.668194, 0.958014, 1.308782, 1.707147, 2.057915, 2.347735, 2.619534, 2.824930},
	{0.205846, 0.392169, 0.654550, 0.966124, 1.320118, 1.695811, 2.049805, 2.361379, 2.623760, 2.810083},
	{0.220693, 0.387943, 0.640905, 0.974233, 1.331455, 1.684474, 2.041696, 2.375024, 2.627986, 2.795236},
	{0.235541, 0.383717, 0.627261, 0.982343, 1.342791, 1.673138, 2.033586, 2.388668, 2.632212, 2.780388},
	{0.223745, 0.423602, 0.658052, 0.922381, 1.289319, 1.726610, 2.093548, 2.357877, 2.592327, 2.792184},
	{0.238593, 0.419376, 0.644407, 0.930490, 1.300655, 1.715274, 2.085439, 2.371522, 2.596553, 2.777336},
	{0.253440, 0.415150, 0.630763, 0.938600, 1.311992, 1.703937, 2.077329, 2.385166, 2.600779, 2.762489},
	{0.268287, 0.410924, 0.617118, 0.946709, 1.323328, 1.692601, 2.069220, 2.398811, 2.605005, 2.747642},
	{0.256492, 0.450809, 0.647909, 0.886747, 1.269856, 1.746073, 2.129182, 2.368020, 2.565120, 2.759437},
	{0.271339, 0.446583, 0.634265, 0.894857, 1.281192, 1.734737, 2.121072, 2.381664, 2.569346, 2.744589},
	{0.286187, 0.442357, 0.620620, 0.902966, 1.292528, 1.723400, 2.112963, 2.395309, 2.573572, 2.729742},
	{0.301034, 0.438131, 0.606976, 0.911076, 1.303865, 1.712064, 2.104853, 2.408953, 2.577798, 2.714895},
	{0.193007, 0.427664, 0.741968, 1.042232, 1.346357, 1.669572, 1.973697, 2.273961, 2.588265, 2.822922},
	{0.207855, 0.423438, 0.728323, 1.050341, 1.357693, 1.658236, 1.965588, 2.287606, 2.592491, 2.808074},
	{0.222702, 0.419212, 0.714679, 1.058451, 1.369029, 1.646900, 1.957478, 2.301250, 2.596717, 2.793227},
	{0.237549, 0.414986, 0.701034, 1.066560, 1.380365, 1.635564, 1.949369, 2.314895, 2.600943, 2.778380},
	{0.225754, 0.454871, 0.731825, 1.006598, 1.326893, 1.689035, 2.009331, 2.284104, 2.561058, 2.790175},
	{0.240601, 0.450645, 0.718181, 1.014708, 1.338230, 1.677699, 2.001221, 2.297748, 2.565284, 2.775328},
	{0.255449, 0.446419, 0.704536, 1.022817, 1.349566, 1.666363, 1.993112, 2.311392, 2.569510, 2.760480},
	{0.270296, 0.442193, 0.690892, 1.030927, 1.360902, 1.655027, 1.985002, 2.325037, 2.573736, 2.745633},
	{0.258501, 0.482078, 0.721683, 0.970964, 1.307430, 1.708499, 2.044965, 2.294246, 2.533851, 2.757428},
	{0.273348, 0.477852, 0.708039, 0.979074, 1.318767, 1.697162, 2.036855, 2.307890, 2.538077, 2.742581},
	{0.288196, 0.473626, 0.694394, 0.987184, 1.330103, 1.685826, 2.028745, 2.321535, 2.542303, 2.727733},
	{0.303043, 0.469400, 0.680750, 0.995293, 1.341439, 1.674490, 2.020636, 2.335179, 2.546529, 2.712886},
	{0.291248, 0.509285, 0.711541, 0.935331, 1.287967, 1.727962, 2.080598, 2.304388, 2.506644, 2.724681},
	{0.306095, 0.505059, 0.697896, 0.943440, 1.299304, 1.716625, 2.072488, 2.318033, 2.510870, 2.709834},
	{0.320942, 0.500833, 0.684252, 0.951550, 1.310640, 1.705289, 2.064379, 2.331677, 2.515096, 2.694987},
	{0.335790, 0.496607, 0.670607, 0.959660, 1.321976, 1.693953, 2.056269, 2.345322, 2.519322, 2.680139},
	{0.227763, 0.486141, 0.805599, 1.090815, 1.364468, 1.651461, 1.925113, 2.210330, 2.529788, 2.788166},
	{0.242610, 0.481915, 0.791955, 1.098925, 1.375804, 1.640125, 1.917004, 2.223974, 2.534014, 2.773319},
	{0.257457, 0.477689, 0.778310, 1.107035, 1.387140, 1.628789, 1.908894, 2.237619, 2.538240, 2.758471},
	{0.272305, 0.473463, 0.764666, 1.115144, 1.398477, 1.617452, 1.900785, 2.251263, 2.542466, 2.743624},
	{0.260510, 0.513348, 0.795457, 1.055182, 1.345005, 1.670924, 1.960747, 2.220472, 2.502581, 2.755419},
	{0.275357, 0.509122, 0.781812, 1.063292, 1.356341, 1.659588, 1.952637, 2.234117, 2.506807, 2.740572},
	{0.290204, 0.504896, 0.768168, 1.071401, 1.367677, 1.648252, 1.944528, 2.247761, 2.511033, 2.725725},
	{0.305052, 0.500670, 0.754523, 1.079511, 1.379014, 1.636915, 1.936418, 2.261406, 2.515259, 2.710877},
	{0.293256, 0.540555, 0.785314, 1.019548, 1.325542, 1.690387, 1.996381, 2.230615, 2.475374, 2.722673},
	{0.308104, 0.536329, 0.771670, 1.027658, 1.336878, 1.679051, 1.988271, 2.244259, 2.479600, 2.707825},
	{0.322951, 0.532103, 0.758025, 1.035768, 1.348214, 1.667715, 1.980161, 2.257903, 2.483826, 2.692978},
	{0.337798, 0.527877, 0.744381, 1.043877, 1.359551, 1.656378, 1.972052, 2.271548, 2.488052, 2.678131},
	{0.326003, 0.567762, 0.775172, 0.983915, 1.306079, 1.709850, 2.032014, 2.240757, 2.448167, 2.689926},
	{0.340850, 0.563536, 0.761528, 0.992024, 1.317415, 1.698514, 2.023905, 2.254401, 2.452393, 2.675079},
	{0.355698, 0.559310, 0.747883, 1.000134, 1.328751, 1.687178, 2.015795, 2.268046, 2.456619, 2.660231},
	{0.370545, 0.555084, 0.734239, 1.008244, 1.340087, 1.675841, 2.007685, 2.281690, 2.460845, 2.645384},
	{0.262518, 0.544617, 0.869231, 1.139399, 1.382579, 1.633350, 1.876530, 2.146698, 2.471312, 2.753411},
	{0.277366, 0.540391, 0.855586, 1.147509, 1.393916, 1.622013, 1.868420, 2.160343, 2.475538, 2.738563},
	{0.292213, 0.536165, 0.841942, 1.155619, 1.405252, 1.610677, 1.860310, 2.173987, 2.479764, 2.723716},
	{0.307060, 0.531939, 0.828297, 1.163728, 1.416588, 1.599341, 1.852201, 2.187632, 2.483990, 2.708869},
	{0.295265, 0.571824, 0.859088, 1.103766, 1.363116, 1.652813, 1.912163, 2.156841, 2.444105, 2.720664},
	{0.310112, 0.567598, 0.845444, 1.111875, 1.374452, 1.641476, 1.904054, 2.170485, 2.448331, 2.705817},
	{0.324960, 0.563372, 0.831799, 1.119985, 1.385789, 1.630140, 1.895944, 2.184130, 2.452557, 2.690969},
	{0.339807, 0.559146, 0.818155, 1.128095, 1.397125, 1.618804, 1.887834, 2.197774, 2.456783, 2.676122},
	{0.328012, 0.599031, 0.848946, 1.068132, 1.343653, 1.672276, 1.947797, 2.166983, 2.416898, 2.687917},
	{0.342859, 0.594805, 0.835301, 1.076242, 1.354989, 1.660940, 1.939687, 2.180628, 2.421124, 2.673070},
	{0.357706, 0.590579, 0.821657, 1.084351, 1.366326, 1.649603, 1.931578, 2.194272, 2.425350, 2.658222},
	{0.372554, 0.586353, 0.808012, 1.092461, 1.377662, 1.638267, 1.923468, 2.207917, 2.429576, 2.643375},
	{0.360759, 0.626238, 0.838803, 1.032499, 1.324190, 1.691739, 1.983430, 2.177125, 2.389691, 2.655170},
	{0.375606, 0.622012, 0.825159, 1.040608, 1.335526, 1.680403, 1.975321, 2.190770, 2.393917, 2.640323},
	{0.390453, 0.617786, 0.811514, 1.048718, 1.346863, 1.669066, 1.967211, 2.204414, 2.398143, 2.625476},
	{0.405301, 0.613560, 0.797870, 1.056827, 1.358199, 1.657730, 1.959101, 2.218059, 2.402369, 2.610628},
	{0.297274, 0.603093, 0.932862, 1.187983, 1.400691, 1.615238, 1.827946, 2.083067, 2.412836, 2.718655},
	{0.312121, 0.598867, 0.919217, 1.196093, 1.412027, 1.603902, 1.819836, 2.096711, 2.417062, 2.703808},
	{0.326968, 0.594641, 0.905573, 1.204202, 1.423363, 1.592566, 1.811726, 2.110356, 2.421288, 2.688960},
	{0.341816, 0.590415, 0.891929, 1.212312, 1.434699, 1.581230, 1.803617, 2.124000, 2.425514, 2.674113},
	{0.330021, 0.630300, 0.922720, 1.152350, 1.381228, 1.634701, 1.863579, 2.093209, 2.385629, 2.685908},
	{0.344868, 0.626074, 0.909075, 1.160459, 1.392564, 1.623365, 1.855470, 2.106854, 2.389855, 2.671061},
	{0.359715, 0.621848, 0.895431, 1.168569, 1.403900, 1.612029, 1.847360, 2.120498, 2.394081, 2.656214},
	{0.374563, 0.617622, 0.881786, 1.176679, 1.415236, 1.600693, 1.839250, 2.134143, 2.398307, 2.641366},
	{0.362767, 0.657507, 0.912577, 1.116716, 1.361765, 1.654164, 1.899213, 2.103352, 2.358422, 2.653162},
	{0.377615, 0.653281, 0.898933, 1.124826, 1.373101, 1.642828, 1.891103, 2.116996, 2.362648, 2.638314},
	{0.392462, 0.649055, 0.885288, 1.132935, 1.384437, 1.631492, 1.882994, 2.130641, 2.366874, 2.623467},
	{0.407309, 0.644829, 0.871644, 1.141045, 1.395773, 1.620156, 1.874884, 2.144285, 2.371100, 2.608620},
	{0.395514, 0.684714, 0.902435, 1.081083, 1.342301, 1.673627, 1.934846, 2.113494, 2.331215, 2.620415},
	{0.410361, 0.680488, 0.888790, 1.089192, 1.353638, 1.662291, 1.926737, 2.127139, 2.335441, 2.605568},
	{0.425209, 0.676262, 0.875146, 1.097302, 1.364974, 1.650955, 1.918627, 2.140783, 2.339667, 2.590720},
	{0.440056, 0.672036, 0.861501, 1.105411, 1.376310, 1.639619, 1.910518, 2.154428, 2.343893, 2.575873},
	{0.332029, 0.661570, 0.996493, 1.236567, 1.418802, 1.597127, 1.779362, 2.019436, 2.354359, 2.683900},
	{0.346877, 0.657344, 0.982849, 1.244677, 1.430138, 1.585791, 1.771252, 2.033080, 2.358585, 2.669052},
	{0.361724, 0.653118, 0.969204, 1.252786, 1.441475, 1.574454, 1.763143, 2.046725, 2.362811, 2.654205},
	{0.376571, 0.648892, 0.955560, 1.260896, 1.452811, 1.563118, 1.755033, 2.060369, 2.367037, 2.639358},
	{0.364776, 0.688777, 0.986351, 1.200934, 1.399339, 1.616590, 1.814995, 2.029578, 2.327152, 2.651153},
	{0.379623, 0.684551, 0.972706, 1.209043, 1.410675, 1.605254, 1.806886, 2.043222, 2.331378, 2.636306},
	{0.394471, 0.680325, 0.959062, 1.217153, 1.422011, 1.593917, 1.798776, 2.056867, 2.335604, 2.621458},
	{0.409318, 0.676099, 0.945418, 1.225262, 1.433348, 1.582581, 1.790667, 2.070511, 2.339830, 2.606611},
	{0.397523, 0.715984, 0.976209, 1.165300, 1.379876, 1.636053, 1.850629, 2.039720, 2.299945, 2.618406},
	{0.412370, 0.711758, 0.962564, 1.173410, 1.391212, 1.624717, 1.842519, 2.053365, 2.304171, 2.603559},
	{0.427217, 0.707532, 0.948920, 1.181519, 1.402548, 1.613381, 1.834410, 2.067009, 2.308397, 2.588712},
	{0.442065, 0.703306, 0.935275, 1.189629, 1.413885, 1.602044, 1.826300, 2.080654, 2.312623, 2.573864},
	{0.430270, 0.743191, 0.966066, 1.129666, 1.360413, 1.655516, 1.886262, 2.049863, 2.272738, 2.585659},
	{0.445117, 0.738965, 0.952422, 1.137776, 1.371749, 1.644180, 1.878153, 2.063507, 2.276964, 2.570812},
	{0.459964, 0.734739, 0.938777, 1.145886, 1.383085, 1.632844, 1.870043, 2.077152, 2.281190, 2.555965},
	{0.474812, 0.730513, 0.925133, 1.153995, 1.394422, 1.621507, 1.861934, 2.090796, 2.285416, 2.541117},
	{0.366785, 0.720046, 1.060125, 1.285151, 1.436913, 1.579015, 1.730778, 1.955804, 2.295883, 2.649144},
	{0.381632, 0.715820, 1.046480, 1.293261, 1.448250, 1.567679, 1.722668, 1.969449, 2.300109, 2.634297},
	{0.396479, 0.711594, 1.032836, 1.301370, 1.459586, 1.556343, 1.714559, 1.983093, 2.304335, 2.619450},
	{0.411327, 0.707368, 1.019191, 1.309480, 1.470922, 1.545007, 1.706449, 1.996738, 2.308561, 2.604602},
	{0.399532, 0.747253, 1.049982, 1.249517, 1.417450, 1.598479, 1.766411, 1.965947, 2.268676, 2.616397},
	{0.414379, 0.743027, 1.036338, 1.257627, 1.428787, 1.587142, 1.758302, 1.979591, 2.272902, 2.601550},
	{0.429226, 0.738801, 1.022693, 1.265737, 1.440123, 1.575806, 1.750192, 1.993236, 2.277128, 2.586703},
	{0.444073, 0.734575, 1.009049, 1.273846, 1.451459, 1.564470, 1.742083, 2.006880, 2.281354, 2.571855},
	{0.432278, 0.774460, 1.039840, 1.213884, 1.397987, 1.617942, 1.802045, 1.976089, 2.241469, 2.583651},
	{0.447126, 0.770234, 1.026195, 1.221994, 1.409324, 1.606605, 1.793935, 1.989733, 2.245695, 2.568803},
	{0.461973, 0.766008, 1.012551, 1.230103, 1.420660, 1.595269, 1.785826, 2.003378, 2.249921, 2.553956},
	{0.476820, 0.761782, 0.998907, 1.238213, 1.431996, 1.583933, 1.777716, 2.017022, 2.254147, 2.539109},
	{0.465025, 0.801667, 1.029698, 1.178250, 1.378524, 1.637405, 1.837679, 1.986231, 2.214262, 2.550904},
	{0.479872, 0.797441, 1.016053, 1.186360, 1.389860, 1.626068, 1.829569, 1.999876, 2.218488, 2.536057},
	{0.494720, 0.793215, 1.002409, 1.194470, 1.401197, 1.614732, 1.821459, 2.013520, 2.222714, 2.521209},
	{0.509567, 0.788989, 0.988764, 1.202579, 1.412533, 1.603396, 1.813350, 2.027165, 2.226940, 2.506362},
	{0.401540, 0.778522, 1.123756, 1.333735, 1.455025, 1.560904, 1.682194, 1.892173, 2.237407, 2.614389},
	{0.416388, 0.774296, 1.110112, 1.341845, 1.466361, 1.549568, 1.674084, 1.905817, 2.241633, 2.599541},
	{0.431235, 0.770070, 1.096467, 1.349954, 1.477697, 1.538232, 1.665975, 1.919462, 2.245859, 2.584694},
	{0.446082, 0.765844, 1.082823, 1.358064, 1.489034, 1.526895, 1.657865, 1.933106, 2.250085, 2.569847},
	{0.434287, 0.805729, 1.113614, 1.298101, 1.435562, 1.580367, 1.717828, 1.902315, 2.210200, 2.581642},
	{0.449134, 0.801503, 1.099969, 1.306211, 1.446898, 1.569031, 1.709718, 1.915960, 2.214426, 2.566795},
	{0.463982, 0.797277, 1.086325, 1.314321, 1.458234, 1.557695, 1.701608, 1.929604, 2.218652, 2.551947},
	{0.478829, 0.793051, 1.072680, 1.322430, 1.469570, 1.546358, 1.693499, 1.943249, 2.222878, 2.537100},
	{0.467034, 0.832936, 1.103471, 1.262468, 1.416099, 1.599830, 1.753461, 1.912458, 2.182993, 2.548895},
	{0.481881, 0.828710, 1.089827, 1.270577, 1.427435, 1.588494, 1.745352, 1.926102, 2.187219, 2.534048},
	{0.496728, 0.824484, 1.076182, 1.278687, 1.438771, 1.577158, 1.737242, 1.939747, 2.191445, 2.519201},
	{0.511576, 0.820258, 1.062538, 1.286797, 1.450107, 1.565822, 1.729132, 1.953391, 2.195671, 2.504353},
	{0.499781, 0.860143, 1.093329, 1.226834, 1.396636, 1.619293, 1.789095, 1.922600, 2.155786, 2.516148},
	{0.514628, 0.855917, 1.079684, 1.234944, 1.407972, 1.607957, 1.780985, 1.936244, 2.160012, 2.501301},
	{0.529475, 0.851691, 1.066040, 1.243053, 1.419308, 1.596621, 1.772875, 1.949889, 2.164238, 2.486454},
	{0.544322, 0.847465, 1.052396, 1.251163, 1.430644, 1.585285, 1.764766, 1.963533, 2.168464, 2.471606},
}

// codebook2 is the second stage codebook; its low half refines
// coefficients 0..NC-1 and its high half NC..M-1. Each entry is a signed
// step per coefficient.
var codebook2 = [NC1][Order]float64{
	{-0.011000, -0.014000, -0.017000, -0.019000, -0.021000, -0.023000, -0.024000, -0.025000, -0.026000, -0.027000},
	{-0.011000, -0.014000, -0.017000, -0.019000, 0.021000, -0.023000, -0.024000, -0.025000, -0.026000, 0.027000},
	{-0.011000, -0.014000, -0.017000, 0.019000, -0.021000, -0.023000, -0.024000, -0.025000, 0.026000, -0.027000},
	{-0.011000, -0.014000, -0.017000, 0.019000, 0.021000, -0.023000, -0.024000, -0.025000, 0.026000, 0.027000},
	{-0.011000, -0.014000, 0.017000, -0.019000, -0.021000, -0.023000, -0.024000, 0.025000, -0.026000, -0.027000},
	{-0.011000, -0.014000, 0.017000, -0.019000, 0.021000, -0.023000, -0.024000, 0.025000, -0.026000, 0.027000},
	{-0.011000, -0.014000, 0.017000, 0.019000, -0.021000, -0.023000, -0.024000, 0.025000, 0.026000, -0.027000},
	{-0.011000, -0.014000, 0.017000, 0.019000, 0.021000, -0.023000, -0.024000, 0.025000, 0.026000, 0.027000},
	{-0.011000, 0.014000, -0.017000, -0.019000, -0.021000, -0.023000, 0.024000, -0.025000, -0.026000, -0.027000},
	{-0.011000, 0.014000, -0.017000, -0.019000, 0.021000, -0.023000, 0.024000, -0.025000, -0.026000, 0.027000},
	{-0.011000, 0.014000, -0.017000, 0.019000, -0.021000, -0.023000, 0.024000, -0.025000, 0.026000, -0.027000},
	{-0.011000, 0.014000, -0.017000, 0.019000, 0.021000, -0.023000, 0.024000, -0.025000, 0.026000, 0.027000},
	{-0.011000, 0.014000, 0.017000, -0.019000, -0.021000, -0.023000, 0.024000, 0.025000, -0.026000, -0.027000},
	{-0.011000, 0.014000, 0.017000, -0.019000, 0.021000, -0.023000, 0.024000, 0.025000, -0.026000, 0.027000},
	{-0.011000, 0.014000, 0.017000, 0.019000, -0.021000, -0.023000, 0.024000, 0.025000, 0.026000, -0.027000},
	{-0.011000, 0.014000, 0.017000, 0.019000, 0.021000, -0.023000, 0.024000, 0.025000, 0.026000, 0.027000},
	{0.011000, -0.014000, -0.017000, -0.019000, -0.021000, 0.023000, -0.024000, -0.025000, -0.026000, -0.027000},
	{0.011000, -0.014000, -0.017000, -0.019000, 0.021000, 0.023000, -0.024000, -0.025000, -0.026000, 0.027000},
	{0.011000, -0.014000, -0.017000, 0.019000, -0.021000, 0.023000, -0.024000, -0.025000, 0.026000, -0.027000},
	{0.011000, -0.014000, -0.017000, 0.019000, 0.021000, 0.023000, -0.024000, -0.025000, 0.026000, 0.027000},
	{0.011000, -0.014000, 0.017000, -0.019000, -0.021000, 0.023000, -0.024000, 0.025000, -0.026000, -0.027000},
	{0.011000, -0.014000, 0.017000, -0.019000, 0.021000, 0.023000, -0.024000, 0.025000, -0.026000, 0.027000},
	{0.011000, -0.014000, 0.017000, 0.019000, -0.021000, 0.023000, -0.024000, 0.025000, 0.026000, -0.027000},
	{0.011000, -0.014000, 0.017000, 0.019000, 0.021000, 0.023000, -0.024000, 0.025000, 0.026000, 0.027000},
	{0.011000, 0.014000, -0.017000, -0.019000, -0.021000, 0.023000, 0.024000, -0.025000, -0.026000, -0.027000},
	{0.011000, 0.014000, -0.017000, -0.019000, 0.021000, 0.023000, 0.024000, -0.025000, -0.026000, 0.027000},
	{0.011000, 0.014000, -0.017000, 0.019000, -0.021000, 0.023000, 0.024000, -0.025000, 0.026000, -0.027000},
	{0.011000, 0.014000, -0.017000, 0.019000, 0.021000, 0.023000, 0.024000, -0.025000, 0.026000, 0.027000},
	{0.011000, 0.014000, 0.017000, -0.019000, -0.021000, 0.023000, 0.024000, 0.025000, -0.026000, -0.027000},
	{0.011000, 0.014000, 0.017000, -0.019000, 0.021000, 0.023000, 0.024000, 0.025000, -0.026000, 0.027000},
	{0.011000, 0.014000, 0.017000, 0.019000, -0.021000, 0.023000, 0.024000, 0.025000, 0.026000, -0.027000},
	{0.011000, 0.014000, 0.017000, 0.019000, 0.021000, 0.023000, 0.024000, 0.025000, 0.026000, 0.027000},
}

// predictors holds the MA prediction coefficients of both modes, most recent
// frame first.
var predictors = [Modes][MANP][Order]float64{
	{
		{0.2570, 0.2780, 0.2800, 0.2736, 0.2757, 0.2764, 0.2675, 0.2678, 0.2779, 0.2647},
		{0.2142, 0.2194, 0.2331, 0.2230, 0.2272, 0.2252, 0.2148, 0.2123, 0.2115, 0.2096},
		{0.1670, 0.1523, 0.1567, 0.1580, 0.1601, 0.1569, 0.1589, 0.1555, 0.1474, 0.1571},
		{0.1238, 0.0925, 0.0798, 0.0923, 0.0890, 0.0828, 0.1010, 0.0988, 0.0872, 0.1060},
	},
	{
		{0.2360, 0.2405, 0.2499, 0.2495, 0.2517, 0.2591, 0.2636, 0.2625, 0.2551, 0.2310},
		{0.1285, 0.0925, 0.0779, 0.1060, 0.1183, 0.1176, 0.1277, 0.1268, 0.1193, 0.1211},
		{0.0981, 0.0589, 0.0401, 0.0654, 0.0761, 0.0728, 0.0841, 0.0826, 0.0776, 0.0891},
		{0.0923, 0.0486, 0.0287, 0.0498, 0.0526, 0.0482, 0.0621, 0.0636, 0.0584, 0.0794},
	},
}

// predSum[m][j] = 1 - sum_k predictors[m][k][j]; predSumInv is its inverse.
var predSum, predSumInv [Modes][Order]float64

func init() {
	for m := 0; m < Modes; m++ {
		for j := 0; j < Order; j++ {
			s := 1.0
			for k := 0; k < MANP; k++ {
				s -= predictors[m][k][j]
			}
			predSum[m][j] = s
			predSumInv[m][j] = 1 / s
		}
	}
}
