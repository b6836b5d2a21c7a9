package recommend

import (
	"bytes"
	"text/template"

	"github.com/Skufu/saviour/internal/patient"
)

// SystemInstruction is sent as the system message of every request.
const SystemInstruction = "You are a highly advanced medical AI integrated with state-of-the-art trauma knowledge."

var promptTemplate = template.Must(template.New("prompt").Parse(`Analyze the following patient presentation deeply and beyond standard reasoning:
Patient Details:
- Age: {{.Age}}-year-old
- Gender: {{.Gender}}
- Race: {{.Race}}
- Transport Method: {{.Transport.Label}}
- GCS: {{.GCS}}
- Respiratory Rate: {{.RespRate}}
- Systolic Blood Pressure: {{.SystolicBP}}
- Heart Rate: {{.HeartRate}}

Symptoms: {{.Symptoms}}.
Medical History: {{.MedicalHistory}}.

Instructions:
1. Identify potential life-threatening conditions, including rare or obscure diagnoses that human clinicians might overlook.
2. Specify immediate life-saving interventions that exceed routine protocols. Consider experimental or advanced treatments if standard measures fail.
3. Suggest a comprehensive set of diagnostic tests, imaging, labs, or emerging biomarkers to confirm suspected conditions, going beyond typical ER protocols.
4. Recommend resource allocation (specialist teams, advanced ICU equipment, telemedicine consultation with global experts) anticipating complex complications.
5. The response should maintain a purely clinical and highly analytical tone with no extraneous text and no disclaimers. Present the reasoning as if you are a top-tier trauma surgeon supported by an advanced AI reasoning engine.

Remember: Provide your reasoning and recommendations at a level that transcends standard human clinical practice, integrating cutting-edge medical insights.
`))

// BuildPrompt renders the user message for in. Free-text fields are inserted
// as typed.
func BuildPrompt(in patient.Input) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
