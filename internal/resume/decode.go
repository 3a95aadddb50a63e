package resume

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDocument is returned when a payload carries no personalInfo object.
var ErrInvalidDocument = errors.New("invalid resume document")

type legacySkills struct {
	Technical json.RawMessage `json:"technical"`
	Soft      []string        `json:"soft"`
	Languages []string        `json:"languages"`
}

type envelope struct {
	PersonalInfo json.RawMessage `json:"personalInfo"`
	Skills       *legacySkills   `json:"skills"`
}

// Decode parses a stored document. Documents written before technical skills were
// grouped carry skills.technical as a flat array; those skills move to the "other"
// category.
func Decode(payload []byte) (ResumeData, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return ResumeData{}, fmt.Errorf("decode resume: %w", err)
	}
	if len(env.PersonalInfo) == 0 || string(env.PersonalInfo) == "null" {
		return ResumeData{}, ErrInvalidDocument
	}

	var legacyTechnical []string
	if env.Skills != nil && len(env.Skills.Technical) > 0 && env.Skills.Technical[0] == '[' {
		if err := json.Unmarshal(env.Skills.Technical, &legacyTechnical); err != nil {
			return ResumeData{}, fmt.Errorf("decode legacy technical skills: %w", err)
		}
		var stripped map[string]json.RawMessage
		if err := json.Unmarshal(payload, &stripped); err != nil {
			return ResumeData{}, fmt.Errorf("decode resume: %w", err)
		}
		skills, err := json.Marshal(struct {
			Soft      []string `json:"soft"`
			Languages []string `json:"languages"`
		}{Soft: env.Skills.Soft, Languages: env.Skills.Languages})
		if err != nil {
			return ResumeData{}, err
		}
		stripped["skills"] = skills
		if payload, err = json.Marshal(stripped); err != nil {
			return ResumeData{}, err
		}
	}

	data := New()
	if err := json.Unmarshal(payload, &data); err != nil {
		return ResumeData{}, fmt.Errorf("decode resume: %w", err)
	}
	if legacyTechnical != nil {
		data.Skills.Technical = TechnicalSkills{Other: legacyTechnical}
	}
	data.Normalize()
	return data, nil
}
