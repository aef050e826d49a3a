package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type ResumeStatus string

const (
	StatusNew          ResumeStatus = "New"
	StatusUnderReview  ResumeStatus = "Under Review"
	StatusInterviewing ResumeStatus = "Interviewing"
	StatusOffer        ResumeStatus = "Offer"
	StatusHired        ResumeStatus = "Hired"
	StatusRejected     ResumeStatus = "Rejected"
)

var ResumeStatuses = []ResumeStatus{
	StatusNew,
	StatusUnderReview,
	StatusInterviewing,
	StatusOffer,
	StatusHired,
	StatusRejected,
}

func (s ResumeStatus) Valid() bool {
	for _, st := range ResumeStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type Resume struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Skills     SkillList    `json:"skills"`
	Experience string       `json:"experience,omitempty"`
	Education  string       `json:"education,omitempty"`
	Status     ResumeStatus `json:"status"`
	Scorecard  *Scorecard   `json:"scorecard_data,omitempty"`
	OriginalCV string       `json:"original_cv,omitempty"`
	UploadedOn time.Time    `json:"uploaded_on"`
	Categories []string     `json:"categories,omitempty"`
}

func (r Resume) Key() int64 {
	return r.ID
}

var skillSeparator = regexp.MustCompile(`[,\n]`)

// SkillList is sent by the backend either as a comma separated string or as
// a JSON list depending on the endpoint.
type SkillList []string

func SplitSkills(raw string) SkillList {
	out := SkillList{}
	for _, part := range skillSeparator.Split(raw, -1) {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *SkillList) UnmarshalJSON(b []byte) error {
	res := gjson.ParseBytes(b)
	switch {
	case res.IsArray():
		out := SkillList{}
		for _, v := range res.Array() {
			if str := strings.TrimSpace(v.String()); str != "" {
				out = append(out, str)
			}
		}
		*s = out
	case res.Type == gjson.Null:
		*s = SkillList{}
	default:
		*s = SplitSkills(res.String())
	}
	return nil
}

func (s SkillList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s SkillList) String() string {
	return strings.Join(s, ", ")
}

// ScoreLabel is the scorecard's score for display, "N/A" without one.
func (r Resume) ScoreLabel() string {
	return r.Scorecard.ScoreLabel()
}
