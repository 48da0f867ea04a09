package checkout

type Step string

const (
	StepShipping   Step = "shipping"
	StepPayment    Step = "payment"
	StepReview     Step = "review"
	StepSubmitting Step = "submitting"
)

func (s Step) String() string {
	return string(s)
}

var transitions = map[Step][]Step{
	StepShipping:   {StepPayment},
	StepPayment:    {StepShipping, StepReview},
	StepReview:     {StepPayment, StepSubmitting},
	StepSubmitting: {StepReview, StepShipping},
}

// CanTransitionTo reports whether the wizard may move from one step to
// another. Submitting returns to review on failure and to a fresh shipping
// step on success.
func CanTransitionTo(from, to Step) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
