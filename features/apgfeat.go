package features

// APG derives vascular-tone features from the second-derivative amplitudes
// at the a/b/e landmarks, reduced over the epoch's valid triples.
type APG struct{}

func (APG) Name() string { return "apg" }

var apgColumns = []string{
	"apg_ba_ratio_mean", "apg_ba_ratio_sd",
	"apg_ea_ratio_mean", "apg_ea_ratio_sd",
	"apg_ab_diff_mean", "apg_ab_diff_sd",
	"apg_ae_diff_mean", "apg_ae_diff_sd",
	"apg_be_diff_mean", "apg_be_diff_sd",
	"apg_bea_index_mean", "apg_bea_index_sd",
}

func (APG) Columns() []string { return apgColumns }

func (APG) Compute(c *Context) ([]float64, error) {
	m := c.Marks
	if m.Len() == 0 || len(c.SD) == 0 {
		return nanRow(len(apgColumns)), nil
	}

	var baR, eaR, abD, aeD, beD, bea []float64
	for i := 0; i < m.Len(); i++ {
		a, b, e := c.SD[m.A[i]], c.SD[m.B[i]], c.SD[m.E[i]]
		abD = append(abD, a-b)
		aeD = append(aeD, a-e)
		beD = append(beD, b-e)
		if a != 0 {
			baR = append(baR, b/a)
			eaR = append(eaR, e/a)
			bea = append(bea, (b-e)/a)
		}
	}

	row := []float64{
		nanMean(baR), nanStd(baR),
		nanMean(eaR), nanStd(eaR),
		nanMean(abD), nanStd(abD),
		nanMean(aeD), nanStd(aeD),
		nanMean(beD), nanStd(beD),
		nanMean(bea), nanStd(bea),
	}
	return row, nil
}
