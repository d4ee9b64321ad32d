package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alanyang/ticket-router/internal/domain/ident"
)

// StatusAvailable is the only availability status that makes an agent
// eligible for assignment. Comparison is case-insensitive.
const StatusAvailable = "available"

// Skill is one proficiency entry from an agent's skills object.
type Skill struct {
	Name  string
	Level float64
}

// Skills keeps the entries of the skills object in document order, so that
// names normalizing to the same tag resolve to the later entry reproducibly.
type Skills []Skill

func (s *Skills) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading skills: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("skills must be an object")
	}

	out := Skills{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading skill name: %w", err)
		}
		name, _ := keyTok.(string)

		var level float64
		if err := dec.Decode(&level); err != nil {
			return fmt.Errorf("reading level for skill %q: %w", name, err)
		}
		out = append(out, Skill{Name: name, Level: level})
	}
	*s = out
	return nil
}

func (s Skills) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sk := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(sk.Name)
		if err != nil {
			return nil, err
		}
		level, err := json.Marshal(sk.Level)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(level)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Agent is a support agent as supplied at batch start. Missing optional
// fields decode to their zero values, which are the documented defaults.
type Agent struct {
	ID                 ident.ID `json:"agent_id"`
	AvailabilityStatus string   `json:"availability_status"`
	Skills             Skills   `json:"skills"`
	ExperienceLevel    float64  `json:"experience_level"`
	CurrentLoad        int      `json:"current_load"`
}

func (a *Agent) IsAvailable() bool {
	return strings.EqualFold(a.AvailabilityStatus, StatusAvailable)
}
