// Package prompt renders report-request prompts for the generation service.
package prompt

import (
	"github.com/clearchart/intake/internal/shared/errors"
)

// Variant identifies one of the fixed prompt templates. The variant decides
// both the instructions embedded in the prompt and the section headings the
// report parser expects back.
type Variant string

const (
	// VariantComprehensive is the default six-section medical report.
	VariantComprehensive Variant = "comprehensive"
	// VariantMedicalHistory analyzes patient history ahead of dental treatment.
	VariantMedicalHistory Variant = "medical"
	// VariantDentalExam analyzes examination and x-ray findings.
	VariantDentalExam Variant = "dental"
	// VariantMedicationReview analyzes current medications and reactions.
	VariantMedicationReview Variant = "medication"
	// VariantTreatmentPlan analyzes a proposed treatment plan.
	VariantTreatmentPlan Variant = "treatment"
)

// sections maps each variant to its ordered heading set. Each template in
// builder.go embeds exactly these headings in its closing directive; the
// report parser searches for exactly this set. Changing one side without the
// other silently breaks parsing, so TestTemplateHeadingsMatchSections pins
// the coupling.
var sections = map[Variant][]string{
	VariantComprehensive: {
		"ASA Physical Status Classification",
		"Medication Analysis",
		"Medical Evaluation",
		"Recommendations",
		"Risk Assessment",
		"Additional Notes",
	},
	VariantMedicalHistory: {
		"Medical History Analysis",
		"Treatment Considerations",
		"Recommended Precautions",
		"Medical Clearance Needs",
	},
	VariantDentalExam: {
		"Dental Analysis",
		"Potential Diagnosis",
		"Treatment Recommendations",
		"Further Examination Needs",
	},
	VariantMedicationReview: {
		"Interaction Analysis",
		"Treatment Considerations",
		"Recommended Precautions",
		"Alternative Medications",
	},
	VariantTreatmentPlan: {
		"Treatment Plan Analysis",
		"Risk Assessment",
		"Success Rate Estimation",
		"Recovery Timeline",
	},
}

// ParseVariant resolves a form-type string to a Variant. Empty input selects
// the comprehensive report.
func ParseVariant(formType string) (Variant, error) {
	switch formType {
	case "", string(VariantComprehensive):
		return VariantComprehensive, nil
	case string(VariantMedicalHistory):
		return VariantMedicalHistory, nil
	case string(VariantDentalExam):
		return VariantDentalExam, nil
	case string(VariantMedicationReview):
		return VariantMedicationReview, nil
	case string(VariantTreatmentPlan):
		return VariantTreatmentPlan, nil
	default:
		return "", errors.InvalidInput("unknown form type: " + formType)
	}
}

// Sections returns the ordered section headings for a variant. The returned
// slice is a copy.
func Sections(v Variant) []string {
	src := sections[v]
	out := make([]string, len(src))
	copy(out, src)
	return out
}
