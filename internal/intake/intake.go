// Package intake models patient-submitted form data and its derived values.
package intake

import (
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/clearchart/intake/internal/shared/errors"
)

// PatientIntake holds one submission of the patient form. It is built once
// per request and never mutated afterwards.
type PatientIntake struct {
	Name               string
	Email              string
	Age                int
	HeightInches       float64
	WeightPounds       float64
	CurrentMedications string
	Allergies          string
	MedicalConditions  string
	MedicalHistory     string

	// Extra carries per-form-type fields (dental exam findings, medication
	// review answers, treatment plan options) for the non-comprehensive
	// prompt variants.
	Extra map[string]string
}

type submission struct {
	Name               string `json:"name"`
	Age                string `json:"age"`
	Height             string `json:"height"`
	Weight             string `json:"weight"`
	CurrentMedications string `json:"current_medications"`
	Allergies          string `json:"allergies"`
	MedicalConditions  string `json:"medical_conditions"`
	MedicalHistory     string `json:"medical_history"`

	FormType       string `json:"form_type"`
	History        string `json:"history"`
	ToothCondition string `json:"tooth_condition"`
	XrayFindings   string `json:"xray_findings"`
	Symptoms       string `json:"symptoms"`
	Reactions      string `json:"reactions"`
	Diagnosis      string `json:"diagnosis"`
	Proposed       string `json:"proposed"`
	Alternatives   string `json:"alternatives"`
}

// ParseForm builds a PatientIntake from URL-encoded form values.
func ParseForm(values url.Values) (PatientIntake, error) {
	s := submission{
		Name:               values.Get("name"),
		Age:                values.Get("age"),
		Height:             values.Get("height"),
		Weight:             values.Get("weight"),
		CurrentMedications: values.Get("current_medications"),
		Allergies:          values.Get("allergies"),
		MedicalConditions:  values.Get("medical_conditions"),
		MedicalHistory:     values.Get("medical_history"),
		FormType:           values.Get("form_type"),
		History:            values.Get("history"),
		ToothCondition:     values.Get("tooth_condition"),
		XrayFindings:       values.Get("xray_findings"),
		Symptoms:           values.Get("symptoms"),
		Reactions:          values.Get("reactions"),
		Diagnosis:          values.Get("diagnosis"),
		Proposed:           values.Get("proposed"),
		Alternatives:       values.Get("alternatives"),
	}
	return fromSubmission(s)
}

// ParseJSON builds a PatientIntake from a JSON request body.
func ParseJSON(body io.Reader) (PatientIntake, error) {
	var s submission
	if err := json.NewDecoder(body).Decode(&s); err != nil {
		return PatientIntake{}, errors.InvalidInput("invalid request body")
	}
	return fromSubmission(s)
}

func fromSubmission(s submission) (PatientIntake, error) {
	details := map[string]string{}

	age, err := strconv.Atoi(strings.TrimSpace(s.Age))
	if err != nil || age <= 0 {
		details["age"] = "must be a positive integer"
	}

	height, err := strconv.ParseFloat(strings.TrimSpace(s.Height), 64)
	if err != nil || height <= 0 {
		details["height"] = "must be a positive number of inches"
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(s.Weight), 64)
	if err != nil || weight <= 0 {
		details["weight"] = "must be a positive number of pounds"
	}

	if len(details) > 0 {
		return PatientIntake{}, errors.Validation("invalid patient form", details)
	}

	in := PatientIntake{
		Name:               strings.TrimSpace(s.Name),
		Age:                age,
		HeightInches:       height,
		WeightPounds:       weight,
		CurrentMedications: strings.TrimSpace(s.CurrentMedications),
		Allergies:          strings.TrimSpace(s.Allergies),
		MedicalConditions:  strings.TrimSpace(s.MedicalConditions),
		MedicalHistory:     strings.TrimSpace(s.MedicalHistory),
	}

	if s.FormType != "" {
		in.Extra = map[string]string{
			"form_type":       s.FormType,
			"history":         strings.TrimSpace(s.History),
			"tooth_condition": strings.TrimSpace(s.ToothCondition),
			"xray_findings":   strings.TrimSpace(s.XrayFindings),
			"symptoms":        strings.TrimSpace(s.Symptoms),
			"reactions":       strings.TrimSpace(s.Reactions),
			"diagnosis":       strings.TrimSpace(s.Diagnosis),
			"proposed":        strings.TrimSpace(s.Proposed),
			"alternatives":    strings.TrimSpace(s.Alternatives),
		}
	}

	return in, nil
}

// FormType returns the requested prompt form type, empty for the default.
func (p PatientIntake) FormType() string {
	if p.Extra == nil {
		return ""
	}
	return p.Extra["form_type"]
}
