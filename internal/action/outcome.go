package action

// OutcomeType tags the variant of an Outcome.
type OutcomeType string

const (
	TypeOutcome        OutcomeType = "outcome"
	TypeCancel         OutcomeType = "cancel"
	TypeError          OutcomeType = "error"
	TypeSubmissionPage OutcomeType = "submission_page"
)

// ResultComplete is the Advance result that finishes the current step.
const ResultComplete = "complete"

// Outcome is the closed set of results an action execution can produce:
// Advance, Cancel, Failure, and SubmissionPage. Switches over an Outcome should
// handle all four.
type Outcome interface {
	Type() OutcomeType
	outcome()
}

// Advance moves the workflow forward along the transition named by Result.
type Advance struct {
	Result string
}

// Cancel leaves the item where it is without recording anything.
type Cancel struct{}

// Failure rejects the request. Reason is shown to the actor, who may retry.
type Failure struct {
	Reason string
}

// SubmissionPage reports that the item went back to its submitter.
type SubmissionPage struct{}

func (Advance) Type() OutcomeType        { return TypeOutcome }
func (Cancel) Type() OutcomeType         { return TypeCancel }
func (Failure) Type() OutcomeType        { return TypeError }
func (SubmissionPage) Type() OutcomeType { return TypeSubmissionPage }

func (Advance) outcome()        {}
func (Cancel) outcome()         {}
func (Failure) outcome()        {}
func (SubmissionPage) outcome() {}

// Complete returns the Advance outcome that completes the step.
func Complete() Outcome {
	return Advance{Result: ResultComplete}
}

// Fail returns a Failure outcome with reason.
func Fail(reason string) Outcome {
	return Failure{Reason: reason}
}

// Describe renders an outcome for logs and CLI output.
func Describe(o Outcome) string {
	switch v := o.(type) {
	case Advance:
		return string(TypeOutcome) + ":" + v.Result
	case Failure:
		if v.Reason == "" {
			return string(TypeError)
		}
		return string(TypeError) + ":" + v.Reason
	case Cancel, SubmissionPage:
		return string(v.Type())
	default:
		return "unknown"
	}
}
