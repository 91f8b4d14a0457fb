package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// PromptFunc asks the user for credentials, starting from current.
type PromptFunc func(current Credentials) (Credentials, error)

// LinePrompt reads one answer per line, in the order Harvest account ID,
// Forecast account ID, Harvest access token. An empty answer keeps the
// current value.
func LinePrompt(in io.Reader, out io.Writer) PromptFunc {
	return func(current Credentials) (Credentials, error) {
		scanner := bufio.NewScanner(in)
		ask := func(label string, value *string) error {
			fmt.Fprintf(out, "Please enter your %s:\n", label)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("reading %s: %w", label, err)
				}
				return fmt.Errorf("reading %s: %w", label, io.ErrUnexpectedEOF)
			}
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				*value = line
			}
			return nil
		}

		creds := current
		if err := ask("Harvest account ID", &creds.HarvestAccountID); err != nil {
			return Credentials{}, err
		}
		if err := ask("Forecast account ID", &creds.ForecastAccountID); err != nil {
			return Credentials{}, err
		}
		if err := ask("Harvest access token", &creds.HarvestAccessToken); err != nil {
			return Credentials{}, err
		}
		return creds, nil
	}
}

// FormPrompt asks for credentials with an interactive terminal form.
func FormPrompt(current Credentials) (Credentials, error) {
	creds := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Harvest account ID").
				Value(&creds.HarvestAccountID).
				Validate(required),
			huh.NewInput().
				Title("Forecast account ID").
				Value(&creds.ForecastAccountID).
				Validate(required),
			huh.NewInput().
				Title("Harvest access token").
				EchoMode(huh.EchoModePassword).
				Value(&creds.HarvestAccessToken).
				Validate(required),
		),
	).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return Credentials{}, fmt.Errorf("running config form: %w", err)
	}
	return creds, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}
