package domain

import "strings"

// Match representa uma identidade retornada pelo serviço de reconhecimento
type Match struct {
	PersonID   string  `json:"person_id"`
	PersonName string  `json:"person_name"`
	Score      float64 `json:"score"`
}

// DisplayName returns the person name, falling back to the id.
func (m Match) DisplayName() string {
	if strings.TrimSpace(m.PersonName) == "" {
		return m.PersonID
	}
	return m.PersonName
}

// NormalizeMatches drops entries without a person id and fills missing
// names, preserving recognizer order.
func NormalizeMatches(matches []Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		m.PersonID = strings.TrimSpace(m.PersonID)
		if m.PersonID == "" {
			continue
		}
		m.PersonName = m.DisplayName()
		out = append(out, m)
	}
	return out
}
