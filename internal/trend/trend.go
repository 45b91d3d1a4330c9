package trend

// Trend summarizes a close series.
type Trend struct {
	ChangePct float64 `json:"changePct"`
	Slope     float64 `json:"slope"`
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
}

// FromCloses computes the first-to-last return, linear regression slope and
// range over the positive closes. Returns nil if < 2 valid points.
func FromCloses(closes []float64) *Trend {
	valid := make([]float64, 0, len(closes))
	for _, c := range closes {
		if c > 0 {
			valid = append(valid, c)
		}
	}
	if len(valid) < 2 {
		return nil
	}
	t := &Trend{
		First: valid[0],
		Last:  valid[len(valid)-1],
		High:  valid[0],
		Low:   valid[0],
	}
	for _, v := range valid[1:] {
		t.High = max(t.High, v)
		t.Low = min(t.Low, v)
	}
	t.ChangePct = (t.Last/t.First - 1) * 100
	t.Slope = linearSlope(valid)
	return t
}

// Direction is "up", "down" or "flat" by the sign of the change.
func (t *Trend) Direction() string {
	switch {
	case t == nil:
		return "flat"
	case t.ChangePct > 0:
		return "up"
	case t.ChangePct < 0:
		return "down"
	}
	return "flat"
}

func linearSlope(y []float64) float64 {
	n := float64(len(y))
	if n < 2 {
		return 0
	}
	xMean := (n - 1) / 2
	var ySum float64
	for _, v := range y {
		ySum += v
	}
	yMean := ySum / n
	var num, den float64
	for i, yi := range y {
		xi := float64(i)
		num += (xi - xMean) * (yi - yMean)
		den += (xi - xMean) * (xi - xMean)
	}
	if den == 0 {
		return 0
	}
	return num / den
}
