package catalogue

// PostponementTarget is one unit year written or removed by a propagation.
type PostponementTarget struct {
	Year               int    `json:"year"`
	Acronym            string `json:"acronym"`
	LearningUnitYearID uint   `json:"learning_unit_year_id,omitempty"`
}

type PostponementFailure struct {
	Year    int    `json:"year"`
	Acronym string `json:"acronym"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}

// PostponementReport summarises a propagation. Failed targets never abort the others.
type PostponementReport struct {
	Source     PostponementTarget    `json:"source"`
	Succeeded  []PostponementTarget  `json:"succeeded"`
	Failed     []PostponementFailure `json:"failed"`
	Removed    []PostponementTarget  `json:"removed"`
	Skipped    []PostponementTarget  `json:"skipped,omitempty"`
	Horizon    int                   `json:"horizon"`
	EndYear    *int                  `json:"end_year,omitempty"`
	TargetFrom int                   `json:"target_from,omitempty"`
}

func (r *PostponementReport) OK() bool { return r != nil && len(r.Failed) == 0 }
