package briefing

// Payload is the structured briefing shown to the reviewer. The model
// produces everything except Protocol and UserContext, which are set
// post-hoc from resolved data so they never depend on model compliance.
type Payload struct {
	AIInsight           AIInsight           `json:"ai_insight"`
	ParticipantOverview ParticipantOverview `json:"participant_overview"`
	ClinicalIncident    *ClinicalIncident   `json:"clinical_incident,omitempty"`
	ClinicalAssessment  *ClinicalAssessment `json:"clinical_assessment,omitempty"`
	SuggestedMessages   []SuggestedMessage  `json:"suggested_messages,omitempty"`
	ProtocolSteps       []string            `json:"protocol_steps,omitempty"`
	Protocol            *ProtocolBlock      `json:"protocol,omitempty"`
	UserContext         *UserContext        `json:"user_context,omitempty"`
}

// AIInsight is the headline summary of the patient's situation.
type AIInsight struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points,omitempty"`
}

// ParticipantOverview condenses the chart for the side panel.
type ParticipantOverview struct {
	Conditions      []string `json:"conditions,omitempty"`
	Devices         []string `json:"devices,omitempty"`
	ClinicMember    string   `json:"clinic_member,omitempty"`
	InsulinStrategy string   `json:"insulin_strategy,omitempty"`
}

// ClinicalIncident describes the triggering event, when there is one.
type ClinicalIncident struct {
	Title    string          `json:"title"`
	Timeline []TimelineEntry `json:"timeline,omitempty"`
}

// TimelineEntry is one step of an incident timeline.
type TimelineEntry struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

// ClinicalAssessment is the model's read on severity and trend.
type ClinicalAssessment struct {
	Severity            string   `json:"severity"`
	Urgency             string   `json:"urgency"`
	Trends              string   `json:"trends"`
	ContributingFactors []string `json:"contributing_factors,omitempty"`
}

// SuggestedMessage is a drafted outreach message with its rationale.
type SuggestedMessage struct {
	Category  string `json:"category"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Rationale string `json:"rationale"`
}

// ProtocolBlock mirrors the resolved protocol into the briefing.
type ProtocolBlock struct {
	TaskCode string `json:"task_code"`
	TaskName string `json:"task_name"`
	Priority string `json:"priority"`
	Content  string `json:"content"`
	FullText string `json:"full_text"`
}

// UserContext records who the briefing was generated for.
type UserContext struct {
	Role          string `json:"role"`
	ClinicContext string `json:"clinic_context"`
	ClinicMember  string `json:"clinic_member"`
}

// validateShape checks the parts of the payload the UI cannot render
// without. Optional blocks are allowed to be absent.
func (p *Payload) validateShape() error {
	if p.AIInsight.Summary == "" {
		return &MalformedOutputError{Reason: "missing ai_insight.summary"}
	}
	return nil
}
