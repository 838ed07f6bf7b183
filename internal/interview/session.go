package interview

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the interview lifecycle phase. Permitted transitions:
// Setup->Interview (valid start), Interview->Feedback (question limit
// reached), Feedback->Setup (reset), Feedback->Interview (repeat with
// same settings).
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseInterview
	PhaseFeedback
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseInterview:
		return "interview"
	case PhaseFeedback:
		return "feedback"
	default:
		return "unknown"
	}
}

// Role identifies who produced a transcript message.
type Role string

const (
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
)

// ExperienceLevel matches the setup form options.
type ExperienceLevel string

const (
	ExperienceStarter ExperienceLevel = "starter"
	ExperienceJunior  ExperienceLevel = "junior"
	ExperienceMedior  ExperienceLevel = "medior"
	ExperienceSenior  ExperienceLevel = "senior"
)

// SessionType selects the interview style.
type SessionType string

const (
	TypeGeneral     SessionType = "general"
	TypeBehavioral  SessionType = "behavioral"
	TypeTechnical   SessionType = "technical"
	TypeSituational SessionType = "situational"
)

// Session is the candidate profile captured at setup. It is immutable
// for the duration of an interview and cleared on reset.
type Session struct {
	JobTitle        string
	Company         string
	Experience      ExperienceLevel
	Industry        string
	Type            SessionType
	InterviewerName string
	IntervieweeName string
}

// Message is one transcript turn. Messages are immutable once appended
// and the transcript is append-only during an interview.
type Message struct {
	ID        string
	Role      Role
	Text      string
	CreatedAt time.Time
}

func newMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
