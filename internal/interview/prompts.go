package interview

import (
	"fmt"
	"strings"
)

// Interview pacing. The interviewer asks QuestionLimit questions in
// total and starts wrapping up once WrapUpAt have been asked.
const (
	QuestionLimit = 7
	WrapUpAt      = 6
	HistoryWindow = 4
)

// sessionTypeLabel returns the Dutch label shown to the model for a
// session type.
func sessionTypeLabel(t SessionType) string {
	switch t {
	case TypeBehavioral:
		return "Gedragsvragen"
	case TypeTechnical:
		return "Technische Vragen"
	case TypeSituational:
		return "Situationele Vragen"
	default:
		return "Algemene Vragen"
	}
}

// profileLines renders the candidate profile block. Optional fields
// are skipped so the prompt stays a pure function of the session.
func profileLines(s Session, full bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Functie: %s\n", s.JobTitle)
	if full {
		fmt.Fprintf(&b, "- Bedrijf: %s\n", s.Company)
	}
	fmt.Fprintf(&b, "- Ervaring: %s\n", s.Experience)
	if full {
		fmt.Fprintf(&b, "- Sector: %s\n", s.Industry)
	}
	fmt.Fprintf(&b, "- Gesprektype: %s", sessionTypeLabel(s.Type))
	if s.InterviewerName != "" {
		fmt.Fprintf(&b, "\n- Naam interviewer: %s", s.InterviewerName)
	}
	if s.IntervieweeName != "" {
		fmt.Fprintf(&b, "\n- Naam kandidaat: %s", s.IntervieweeName)
	}
	return b.String()
}

// historyLines renders transcript messages as labelled dialogue lines.
func historyLines(messages []Message, sep string) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := "Interviewer"
		if msg.Role == RoleCandidate {
			label = "Kandidaat"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, msg.Text))
	}
	return strings.Join(lines, sep)
}

// OpeningPrompt builds the prompt for the first interviewer turn. It
// is a pure function of the session profile.
func OpeningPrompt(s Session) string {
	return fmt.Sprintf(`Je bent een professionele HR-interviewer die een sollicitatiegesprek voert.

KANDIDAAT PROFIEL:
%s

INSTRUCTIES:
1. Begin het gesprek op een vriendelijke, professionele manier
2. Stel jezelf kort voor als interviewer
3. Stel de eerste vraag passend bij het gekozen gesprektype
4. Houd de vraag realistisch en relevant voor de functie
5. Gebruik een natuurlijke, menselijke toon

Begin nu het sollicitatiegesprek.`, profileLines(s, true))
}

// FollowUpPrompt builds the prompt for a follow-up interviewer turn
// from the session profile, the trailing transcript window and the
// question counter. Identical state always yields an identical prompt.
func FollowUpPrompt(s Session, window []Message, questions int) string {
	wrapUp := ""
	if questions >= WrapUpAt {
		wrapUp = "\nBELANGRIJK: Dit is een van de laatste vragen. Begin het gesprek af te ronden en bedank de kandidaat.\n"
	}
	return fmt.Sprintf(`Je bent een professionele HR-interviewer die een sollicitatiegesprek voortzet.

KANDIDAAT PROFIEL:
%s

RECENTE CONVERSATIE:
%s

INSTRUCTIES:
1. Reageer kort en professioneel op het laatste antwoord van de kandidaat
2. Stel een nieuwe, relevante vervolgvraag
3. Varieer tussen verschillende vraagtypen binnen het gekozen gesprektype
4. Houd vragen realistisch en passend bij de functie
5. Na 5-7 vragen, begin af te ronden
%s
Stel nu je volgende vraag.`, profileLines(s, false), historyLines(window, "\n"), wrapUp)
}

// FeedbackPrompt builds the summarization prompt over the full
// transcript.
func FeedbackPrompt(s Session, transcript []Message) string {
	return fmt.Sprintf(`Analyseer dit sollicitatiegesprek en geef constructieve feedback.

GESPREK DETAILS:
- Functie: %s
- Gesprektype: %s

VOLLEDIGE CONVERSATIE:
%s

Geef feedback in deze structuur:

## 🎯 Algemene Indruk
[Korte samenvatting van de prestatie]

## ✅ Sterke Punten
[3-4 specifieke dingen die goed gingen]

## 🔧 Verbeterpunten
[3-4 concrete suggesties voor verbetering]

## 💡 Tips voor Volgende Keer
[Praktische adviezen voor toekomstige gesprekken]

## 📊 Score: X/10
[Cijfer met korte uitleg]

Houd de feedback constructief, specifiek en motiverend.`, s.JobTitle, sessionTypeLabel(s.Type), historyLines(transcript, "\n\n"))
}
