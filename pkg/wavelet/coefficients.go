package wavelet

// scalingFilters holds the standard Daubechies extremal-phase scaling
// (low-pass) filter coefficients, keyed by tap count (the "daubN" naming the
// original program used). These are the published literature values; the
// wavelet filter used for the detail bands is derived from each of these via
// the quadrature mirror relation in waveletFilter.
var scalingFilters = map[Order][]float64{
	Order2: {
		0.7071067811865476,
		0.7071067811865476,
	},
	Order4: {
		0.48296291314469025,
		0.836516303737469,
		0.22414386804185735,
		-0.12940952255092145,
	},
	Order6: {
		0.3326705529509569,
		0.8068915093133388,
		0.4598775021193313,
		-0.13501102001039084,
		-0.08544127388224149,
		0.035226291882100656,
	},
	Order8: {
		0.23037781330885523,
		0.7148465705529157,
		0.6308807679298589,
		-0.02798376941698385,
		-0.18703481171909309,
		0.030841381835560764,
		0.0328830116668852,
		-0.010597401785069032,
	},
	Order10: {
		0.160102397974125,
		0.6038292697974729,
		0.7243085284385744,
		0.13842814590110342,
		-0.24229488706619015,
		-0.03224486958502952,
		0.07757149384006515,
		-0.006241490213011705,
		-0.012580751999015526,
		0.003335725285001549,
	},
	Order12: {
		0.11154074335008017,
		0.4946238903983854,
		0.7511339080215775,
		0.3152503517092432,
		-0.22626469396516913,
		-0.12976686756709563,
		0.09750160558707936,
		0.02752286553001629,
		-0.031582039318031156,
		0.0005538422009938016,
		0.004777257511010651,
		-0.00107730108499558,
	},
	Order14: {
		0.07785205408506236,
		0.39653931948230575,
		0.7291320908465551,
		0.4697822874053586,
		-0.14390600392910627,
		-0.22403618499416572,
		0.07130921926705004,
		0.0806126091510659,
		-0.03802993693503463,
		-0.01657454163101562,
		0.012550998556013784,
		0.00042957797300470274,
		-0.0018016407039998328,
		0.0003537138000010399,
	},
	Order16: {
		0.05441584224310400,
		0.31287159091429997,
		0.67563073629801285,
		0.58535468365486909,
		-0.01582910525634930,
		-0.28401554296242809,
		0.00047248457399797,
		0.12874742662018600,
		-0.01736930100202211,
		-0.04408825393106472,
		0.01398102791739828,
		0.00874609404701566,
		-0.00487035299301066,
		-0.00039174037299598,
		0.00067544940599856,
		-0.00011747678400228,
	},
	Order18: {
		0.03807794736316728,
		0.24383467463766728,
		0.60482312369011390,
		0.65728807805130053,
		0.13319738582208895,
		-0.29327378327258685,
		-0.09684078322087904,
		0.14854074933476008,
		0.03072568147933338,
		-0.06763282905952399,
		0.00025094711499193,
		0.02236166212367909,
		-0.00472320475775288,
		-0.00428918378250564,
		0.00184764691632757,
		0.00023038575932525,
		-0.00025196318899817,
		0.00003934732049466,
	},
	Order20: {
		0.02667005790104984,
		0.18817680007762133,
		0.52720118893091983,
		0.68845903945259111,
		0.28117234366042648,
		-0.24984642432648865,
		-0.19594627437659665,
		0.12736934033574265,
		0.09305736460380659,
		-0.07139414716586077,
		-0.02945753682194567,
		0.03321267405893324,
		0.00360655356695616,
		-0.01073317548327188,
		0.00139535174705290,
		0.00199240529313054,
		-0.00068585669500468,
		-0.00011646685513554,
		0.00009358867000108,
		-0.00001326420289452,
	},
}
