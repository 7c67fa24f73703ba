package prompt

import (
	"fmt"
	"strings"

	"github.com/clearchart/intake/internal/intake"
)

// Build renders the prompt for a variant and intake. It is deterministic:
// identical arguments always produce an identical string. The only failure
// mode is a non-positive height or weight surfacing from the BMI computation.
func Build(v Variant, in intake.PatientIntake) (string, error) {
	switch v {
	case VariantMedicalHistory, VariantDentalExam, VariantMedicationReview, VariantTreatmentPlan:
		return buildFormType(v, in), nil
	default:
		return buildComprehensive(in)
	}
}

func buildComprehensive(in intake.PatientIntake) (string, error) {
	bmi, err := intake.ComputeBMI(in.HeightInches, in.WeightPounds)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("As an AI medical assistant, provide a comprehensive medical report for the following patient. ")
	b.WriteString("Your report must include detailed information for ALL of the following sections:\n\n")

	b.WriteString("1. ASA Physical Status Classification:\n")
	b.WriteString("   - Determine the ASA class (I-VI) based on the patient's overall health status.\n")
	b.WriteString("   - Provide a brief explanation for the classification.\n\n")

	b.WriteString("2. Medication Analysis:\n")
	b.WriteString("   - List all current medications.\n")
	b.WriteString("   - Identify potential drug interactions or side effects.\n")
	b.WriteString("   - Suggest any necessary adjustments or additional medications.\n\n")

	b.WriteString("3. Medical Evaluation:\n")
	b.WriteString("   - Assess each reported medical condition and its current status.\n")
	b.WriteString("   - Evaluate how the medical history impacts the patient's current health.\n")
	b.WriteString("   - Consider the impact of BMI on the patient's health.\n\n")

	b.WriteString("4. Recommendations:\n")
	b.WriteString("   - Suggest specific tests or consultations based on the patient's conditions.\n")
	b.WriteString("   - Recommend lifestyle changes or interventions to improve health.\n")
	b.WriteString("   - Propose a follow-up schedule if necessary.\n\n")

	b.WriteString("5. Risk Assessment:\n")
	b.WriteString("   - Identify potential health risks based on the patient's profile.\n")
	b.WriteString("   - Assess the likelihood and severity of these risks.\n")
	b.WriteString("   - Suggest preventive measures for identified risks.\n\n")

	b.WriteString("6. Additional Notes:\n")
	b.WriteString("   - Provide any other relevant observations or concerns.\n")
	b.WriteString("   - Highlight areas where more information might be needed for a complete assessment.\n\n")

	b.WriteString("Use medical terminology appropriately, but ensure the report is clear and understandable. ")
	b.WriteString("Be thorough and specific in your analysis for each section.\n\n")

	b.WriteString("Patient Information:\n")
	fmt.Fprintf(&b, "- Age: %d\n", in.Age)
	fmt.Fprintf(&b, "- BMI: %.2f\n", bmi)
	fmt.Fprintf(&b, "- Current Medications: %s\n", in.CurrentMedications)
	fmt.Fprintf(&b, "- Allergies: %s\n", in.Allergies)
	fmt.Fprintf(&b, "- Medical Conditions: %s\n", in.MedicalConditions)
	fmt.Fprintf(&b, "- Medical History: %s\n\n", in.MedicalHistory)

	writeHeadingDirective(&b, VariantComprehensive)
	return b.String(), nil
}

func buildFormType(v Variant, in intake.PatientIntake) string {
	extra := func(key string) string {
		if in.Extra == nil {
			return ""
		}
		return in.Extra[key]
	}

	var b strings.Builder

	switch v {
	case VariantMedicalHistory:
		b.WriteString("Patient Medical History Analysis Request:\n")
		fmt.Fprintf(&b, "Patient Name: %s\n", in.Name)
		fmt.Fprintf(&b, "Age: %d\n", in.Age)
		fmt.Fprintf(&b, "Medical History: %s\n\n", extra("history"))
		b.WriteString("Please provide:\n")
		b.WriteString("1. Medical History Analysis\n")
		b.WriteString("2. Treatment Considerations\n")
		b.WriteString("3. Recommended Precautions\n")
		b.WriteString("4. Medical Clearance Needs\n\n")

	case VariantDentalExam:
		b.WriteString("Dental Examination Analysis Request:\n")
		fmt.Fprintf(&b, "Tooth Condition: %s\n", extra("tooth_condition"))
		fmt.Fprintf(&b, "X-Ray Findings: %s\n", extra("xray_findings"))
		fmt.Fprintf(&b, "Current Symptoms: %s\n\n", extra("symptoms"))
		b.WriteString("Please provide:\n")
		b.WriteString("1. Dental Analysis\n")
		b.WriteString("2. Potential Diagnosis\n")
		b.WriteString("3. Treatment Recommendations\n")
		b.WriteString("4. Further Examination Needs\n\n")

	case VariantMedicationReview:
		b.WriteString("Medication Review Request:\n")
		fmt.Fprintf(&b, "Current Medications: %s\n", in.CurrentMedications)
		fmt.Fprintf(&b, "Allergies: %s\n", in.Allergies)
		fmt.Fprintf(&b, "Past Adverse Reactions: %s\n\n", extra("reactions"))
		b.WriteString("Please provide:\n")
		b.WriteString("1. Interaction Analysis\n")
		b.WriteString("2. Treatment Considerations\n")
		b.WriteString("3. Recommended Precautions\n")
		b.WriteString("4. Alternative Medications\n\n")

	case VariantTreatmentPlan:
		b.WriteString("Treatment Plan Analysis Request:\n")
		fmt.Fprintf(&b, "Current Diagnosis: %s\n", extra("diagnosis"))
		fmt.Fprintf(&b, "Proposed Treatment: %s\n", extra("proposed"))
		fmt.Fprintf(&b, "Alternative Options: %s\n\n", extra("alternatives"))
		b.WriteString("Please provide:\n")
		b.WriteString("1. Treatment Plan Analysis\n")
		b.WriteString("2. Risk Assessment\n")
		b.WriteString("3. Success Rate Estimation\n")
		b.WriteString("4. Recovery Timeline\n\n")
	}

	writeHeadingDirective(&b, v)
	return b.String()
}

// writeHeadingDirective appends the formatting instruction that makes the
// model echo the exact headings the parser searches for.
func writeHeadingDirective(b *strings.Builder, v Variant) {
	b.WriteString("Structure your response with a clear header line for each of the following sections, in this order: ")
	b.WriteString(strings.Join(sections[v], "; "))
	b.WriteString(". Provide substantial information under every section.")
}
