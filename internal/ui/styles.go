package ui

import "github.com/charmbracelet/lipgloss"

var (
	interviewerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	candidateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	faintStyle       = lipgloss.NewStyle().Faint(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// InterviewerLabel styles the interviewer speaker label.
func InterviewerLabel(s string) string { return interviewerStyle.Render(s) }

// CandidateLabel styles the candidate speaker label.
func CandidateLabel(s string) string { return candidateStyle.Render(s) }

// Faint styles secondary status text.
func Faint(s string) string { return faintStyle.Render(s) }

// Error styles error text.
func Error(s string) string { return errorStyle.Render(s) }
