package services

// QualityInput carries the draft fields scored at submission time. Missing
// fields are empty strings and contribute nothing.
type QualityInput struct {
	Description      string
	StepsToReproduce string
	ExpectedBehavior string
	ActualBehavior   string
	AttachmentCount  int
}

// CalculateQualityScore rates a report's completeness on a 0-10 scale.
// Base 5, +1 per substantial field, +1 for any attachment, capped at 10.
func CalculateQualityScore(in QualityInput) int {
	score := 5

	if len(in.Description) > 100 {
		score++
	}
	if len(in.StepsToReproduce) > 50 {
		score++
	}
	if len(in.ExpectedBehavior) > 30 {
		score++
	}
	if len(in.ActualBehavior) > 30 {
		score++
	}
	if in.AttachmentCount > 0 {
		score++
	}

	if score > 10 {
		score = 10
	}
	return score
}
