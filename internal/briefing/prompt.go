package briefing

import (
	"fmt"

	"github.com/vitalpath/vitalpath/internal/protocols"
)

const systemPrompt = "You are a clinical AI assistant. Generate comprehensive, patient-specific clinical detail views in valid JSON format."

const instructionTemplate = `You are preparing a task briefing for a care team member reviewing a clinical task for one patient. Analyze the patient chart against the protocol and produce a JSON object with exactly these top-level keys:

- "ai_insight": {"summary": one-paragraph patient-specific assessment, "key_points": array of short strings}
- "participant_overview": {"conditions": array of strings, "devices": array of strings, "clinic_member": string, "insulin_strategy": string if the patient uses insulin}
- "clinical_incident": {"title": string, "timeline": array of {"time", "event"}} - only when the task was triggered by a specific event
- "clinical_assessment": {"severity": string, "urgency": string, "trends": string, "contributing_factors": array of strings}
- "suggested_messages": array of {"category", "type", "message", "rationale"} - draft messages the care team member could send
- "protocol_steps": array of strings, the protocol steps adapted to this patient

Ground every statement in the chart data. Do not invent readings, medications, or history.`

// ClinicContext maps the chart's clinic_member flag to the protocol
// variant selector.
func ClinicContext(clinicMember string) string {
	switch clinicMember {
	case "Yes":
		return "Clinic"
	case "No":
		return "Non-Clinic"
	default:
		return "Unknown"
	}
}

func buildPrompt(patientJSON []byte, protocol protocols.Record, role, clinicContext, clinicMember string) string {
	return fmt.Sprintf(`%s

## User Context:
Role: %s (HC=Health Coach, RN=Registered Nurse, RD=Registered Dietitian, PharmD=Pharmacist)
Patient Clinic Status: %s (clinic_member: %s)

IMPORTANT: Based on the clinic status above, select the appropriate protocol variant:
- If "%s" is "Clinic", follow "Steps (clinic)" variant
- If "%s" is "Non-Clinic", follow "Steps (non_clinic)" variant
- If only "Steps (general)" exists, use that variant

## Patient Chart Data:
%s

## Protocol Data:
Task Code: %s
Task Name: %s
Priority: %s
Content: %s

Generate the detailed clinical view now in JSON format.
`,
		instructionTemplate,
		role, clinicContext, clinicMember,
		clinicContext, clinicContext,
		patientJSON,
		protocol.TaskCode, protocol.TaskName, protocol.Priority, protocol.Content,
	)
}
