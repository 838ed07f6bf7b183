package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/markvz/proefgesprek/internal/client"
	"github.com/markvz/proefgesprek/internal/config"
	"github.com/markvz/proefgesprek/internal/interview"
	"github.com/markvz/proefgesprek/internal/transcript"
	"github.com/markvz/proefgesprek/internal/ui"
	"github.com/spf13/cobra"
)

var (
	practiceServer string
	practiceModel  string
	practiceSave   string
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interactive practice interview",
	Long: `Run a practice interview against a running relay server.

The interviewer asks questions one at a time; answers are typed on
stdin. After seven questions the session ends and feedback on your
answers is generated.`,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringVar(&practiceServer, "server", "", "Relay server URL (overrides config)")
	practiceCmd.Flags().StringVar(&practiceModel, "model", "smart", "Model selector: pro, smart or internet")
	practiceCmd.Flags().StringVar(&practiceSave, "save", "", "Write the transcript to this file afterwards (.yaml or .md)")
	rootCmd.AddCommand(practiceCmd)
}

func runPractice(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverURL := cfg.ServerURL
	if practiceServer != "" {
		serverURL = practiceServer
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdin := bufio.NewScanner(os.Stdin)

	session, err := readSetup(stdin)
	if err != nil {
		return err
	}

	// Print each fragment as it arrives; printed tracks how much of
	// the accumulated text is already on screen.
	var printed int
	onToken := func(full string) {
		if printed > len(full) {
			printed = 0 // new turn
		}
		fmt.Print(full[printed:])
		printed = len(full)
	}

	gen := client.New(serverURL, practiceModel)
	orch := interview.New(gen, interview.WithTokenCallback(onToken))

	fmt.Println()
	fmt.Print(ui.InterviewerLabel("Interviewer") + ": ")
	printed = 0
	if err := orch.Start(ctx, session); err != nil {
		return err
	}
	fmt.Print(pendingInterviewerText(printed, orch.Transcript()))
	fmt.Println()

	for orch.Phase() == interview.PhaseInterview {
		fmt.Println()
		fmt.Printf("%s (%s): ", ui.CandidateLabel("Jij"), ui.Faint(fmt.Sprintf("vraag %d/%d", orch.Questions(), interview.QuestionLimit)))
		if !stdin.Scan() {
			orch.Reset()
			return nil
		}
		answer := strings.TrimSpace(stdin.Text())
		if answer == "" {
			continue
		}

		last := orch.Questions() >= interview.QuestionLimit
		if !last {
			fmt.Println()
			fmt.Print(ui.InterviewerLabel("Interviewer") + ": ")
			printed = 0
		}
		if err := orch.Submit(ctx, answer); err != nil {
			return err
		}
		if !last {
			fmt.Print(pendingInterviewerText(printed, orch.Transcript()))
		}
		fmt.Println()

		if last {
			// Let the phase transition settle before moving on.
			for orch.Phase() == interview.PhaseInterview {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}

	fmt.Println()
	fmt.Println(ui.Faint("Gesprek voltooid! Feedback wordt gegenereerd..."))
	fmt.Println()

	if err := orch.GenerateFeedback(ctx); err != nil {
		fmt.Println(ui.Error("Feedback genereren mislukt: " + err.Error()))
	} else {
		messages := orch.Transcript()
		feedback := messages[len(messages)-1].Text
		fmt.Println(ui.RenderMarkdown(feedback, 80))
	}

	if practiceSave != "" {
		if err := transcript.Save(practiceSave, orch.Session(), orch.Transcript()); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(ui.Faint("Transcript opgeslagen in " + practiceSave))
	}
	return nil
}

// pendingInterviewerText returns interviewer text that landed in the
// transcript without being streamed, such as the fallback message after
// a failed turn. It is empty when tokens were already printed or when
// the turn appended nothing.
func pendingInterviewerText(printed int, messages []interview.Message) string {
	if printed > 0 || len(messages) == 0 {
		return ""
	}
	last := messages[len(messages)-1]
	if last.Role != interview.RoleInterviewer {
		return ""
	}
	return last.Text
}

// readSetup collects the session profile from stdin. Only the job
// title is required.
func readSetup(stdin *bufio.Scanner) (interview.Session, error) {
	session := interview.Session{Type: interview.TypeGeneral}

	ask := func(label string) (string, bool) {
		fmt.Printf("%s: ", label)
		if !stdin.Scan() {
			return "", false
		}
		return strings.TrimSpace(stdin.Text()), true
	}

	for {
		title, ok := ask("Functietitel (verplicht)")
		if !ok {
			return session, fmt.Errorf("invoer afgebroken")
		}
		if title != "" {
			session.JobTitle = title
			break
		}
		fmt.Println(ui.Error("Functietitel is verplicht."))
	}
	session.Company, _ = ask("Bedrijf")
	experience, _ := ask("Ervaring (starter/junior/medior/senior)")
	session.Experience = interview.ExperienceLevel(experience)
	session.Industry, _ = ask("Sector")

	sessionType, _ := ask("Type gesprek (general/behavioral/technical/situational)")
	switch sessionType {
	case "behavioral":
		session.Type = interview.TypeBehavioral
	case "technical":
		session.Type = interview.TypeTechnical
	case "situational":
		session.Type = interview.TypeSituational
	}
	return session, nil
}
