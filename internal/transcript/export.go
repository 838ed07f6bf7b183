package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/markvz/proefgesprek/internal/interview"
	"gopkg.in/yaml.v3"
)

// Export is the serializable form of a finished practice session.
// Transcripts live only in memory during an interview; exporting is an
// explicit, end-of-session action.
type Export struct {
	JobTitle    string    `yaml:"job_title"`
	Company     string    `yaml:"company,omitempty"`
	Experience  string    `yaml:"experience,omitempty"`
	Industry    string    `yaml:"industry,omitempty"`
	SessionType string    `yaml:"session_type"`
	ExportedAt  time.Time `yaml:"exported_at"`
	Messages    []Entry   `yaml:"messages"`
}

// Entry is one transcript turn in an export.
type Entry struct {
	Role string    `yaml:"role"`
	Text string    `yaml:"text"`
	At   time.Time `yaml:"at"`
}

func build(sess interview.Session, messages []interview.Message) Export {
	out := Export{
		JobTitle:    sess.JobTitle,
		Company:     sess.Company,
		Experience:  string(sess.Experience),
		Industry:    sess.Industry,
		SessionType: string(sess.Type),
		ExportedAt:  time.Now().UTC(),
		Messages:    make([]Entry, 0, len(messages)),
	}
	for _, msg := range messages {
		out.Messages = append(out.Messages, Entry{
			Role: string(msg.Role),
			Text: msg.Text,
			At:   msg.CreatedAt.UTC(),
		})
	}
	return out
}

// ToYAML renders the transcript as YAML.
func ToYAML(sess interview.Session, messages []interview.Message) ([]byte, error) {
	return yaml.Marshal(build(sess, messages))
}

// ToMarkdown renders the transcript as a readable markdown document.
func ToMarkdown(sess interview.Session, messages []interview.Message) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Sollicitatiegesprek: %s\n\n", sess.JobTitle))
	b.WriteString("| | |\n")
	b.WriteString("|---|---|\n")
	if sess.Company != "" {
		b.WriteString(fmt.Sprintf("| **Bedrijf** | %s |\n", sess.Company))
	}
	if sess.Experience != "" {
		b.WriteString(fmt.Sprintf("| **Ervaring** | %s |\n", sess.Experience))
	}
	if sess.Industry != "" {
		b.WriteString(fmt.Sprintf("| **Sector** | %s |\n", sess.Industry))
	}
	b.WriteString(fmt.Sprintf("| **Gesprektype** | %s |\n\n", sess.Type))

	for _, msg := range messages {
		label := "Interviewer"
		if msg.Role == interview.RoleCandidate {
			label = "Kandidaat"
		}
		b.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", label, msg.Text))
	}
	return b.String()
}

// Save writes the transcript to path, choosing the format from the
// file extension: .yaml/.yml for YAML, anything else markdown.
func Save(path string, sess interview.Session, messages []interview.Message) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err := ToYAML(sess, messages)
		if err != nil {
			return fmt.Errorf("marshaling transcript: %w", err)
		}
		data = out
	default:
		data = []byte(ToMarkdown(sess, messages))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}
