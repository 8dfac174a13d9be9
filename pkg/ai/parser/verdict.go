package parser

// SafetyVerdict is the decision of the safety screen. A missing "flagged"
// field means the answer passes.
type SafetyVerdict struct {
	Flagged bool
	Reason  string
	Nudge   string
}

// TopicVerdict is the raw signal of the topic manager. NextQuestion is
// optional and may be empty.
type TopicVerdict struct {
	Complete     bool
	NextQuestion string
}

// ProbeVerdict is the decision of the follow-up agent.
type ProbeVerdict struct {
	AskFollowup bool
	Question    string
}

func (p Payload) Safety() SafetyVerdict {
	return SafetyVerdict{
		Flagged: p.Bool("flagged"),
		Reason:  p.String("reason"),
		Nudge:   p.String("nudge"),
	}
}

func (p Payload) Topic() TopicVerdict {
	return TopicVerdict{
		Complete:     p.Bool("complete"),
		NextQuestion: p.String("next_question"),
	}
}

func (p Payload) Probe() ProbeVerdict {
	return ProbeVerdict{
		AskFollowup: p.Bool("ask_followup"),
		Question:    p.String("question"),
	}
}
