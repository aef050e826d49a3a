package model

import (
	"encoding/json"
	"strconv"

	"github.com/tidwall/gjson"
)

// Scorecard is the AI generated evaluation of a candidate against a job.
// match_score is the canonical score field; older backends sent
// overall_score and it is still accepted when decoding.
type Scorecard struct {
	MatchScore         *float64           `json:"match_score"`
	Summary            string             `json:"summary"`
	SkillGapAnalysis   SkillGapAnalysis   `json:"skill_gap_analysis"`
	BasicInformation   BasicInformation   `json:"basic_information"`
	ExperienceAnalysis ExperienceAnalysis `json:"experience_analysis"`
	SkillsetEvaluation SkillsetEvaluation `json:"skillset_evaluation"`
	PositiveIndicators []string           `json:"positive_indicators"`
	RedFlags           []string           `json:"red_flags"`
	CulturalFitSummary string             `json:"cultural_fit_summary"`
	PersonalitySignals []string           `json:"personality_signals"`
}

type SkillGapAnalysis struct {
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Notes          string   `json:"notes"`
}

type BasicInformation struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
}

type ExperienceAnalysis struct {
	SeniorityProgression []string `json:"seniority_progression"`
	TenureSummary        string   `json:"tenure_summary"`
	RelevantDomains      []string `json:"relevant_domains"`
}

type SkillsetEvaluation struct {
	HardSkills     []string `json:"hard_skills"`
	SoftSkills     []string `json:"soft_skills"`
	Certifications []string `json:"certifications"`
}

func (s *Scorecard) UnmarshalJSON(b []byte) error {
	type plain Scorecard
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.MatchScore == nil {
		if legacy := gjson.GetBytes(b, "overall_score"); legacy.Exists() && legacy.Type == gjson.Number {
			v := legacy.Float()
			p.MatchScore = &v
		}
	}
	*s = Scorecard(p)
	return nil
}

// Score is the match score clamped to [0, 10]; a missing score is 0.
func (s *Scorecard) Score() float64 {
	if s == nil || s.MatchScore == nil {
		return 0
	}
	v := *s.MatchScore
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func (s *Scorecard) ScoreLabel() string {
	if s == nil || s.MatchScore == nil {
		return "N/A"
	}
	return strconv.FormatFloat(s.Score(), 'f', 1, 64)
}
