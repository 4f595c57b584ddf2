// Package setup runs the interactive first-time configuration wizard and
// terminal prompts.
package setup

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/nasti/booking-client/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// envOrder is the order keys are written to config.env.
var envOrder = []string{
	"BOOKING_API_URL",
	"BOOKING_STORE",
	"BOOKING_REDIS_ADDR",
	"BOOKING_TOKEN_KEY",
}

// IsInteractiveTerminal returns true if both stdin and stdout are TTYs.
func IsInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RunWizard collects the API address and store backend, writes them to
// config.env in the user's config directory and sets them in the current
// process. Returns false when the user aborted or saving failed.
func RunWizard(out io.Writer) bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Hotel Booking Client - First-time Setup"))
	fmt.Fprintln(out)

	apiURL := config.Default().APIURL
	store := config.StoreSQLite
	redisAddr := config.Default().RedisAddr

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Booking API address").
				Description("Base URL of the booking backend").
				Value(&apiURL).
				Validate(func(s string) error {
					_, err := NormalizeAPIURL(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the session be kept?").
				Options(
					huh.NewOption("Encrypted SQLite file (recommended)", config.StoreSQLite),
					huh.NewOption("Redis", config.StoreRedis),
					huh.NewOption("Memory only (forgotten on exit)", config.StoreMemory),
				).
				Value(&store),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis address").
				Value(&redisAddr).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("address is required")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return store != config.StoreRedis }),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(out, "\nSetup cancelled.")
			return false
		}
		fmt.Fprintf(out, "\nError: %v\n", err)
		return false
	}

	apiURL, _ = NormalizeAPIURL(apiURL)
	values := map[string]string{
		"BOOKING_API_URL":   apiURL,
		"BOOKING_STORE":     store,
		"BOOKING_TOKEN_KEY": GenerateTokenKey(),
	}
	if store == config.StoreRedis {
		values["BOOKING_REDIS_ADDR"] = redisAddr
	}

	configPath, err := WriteEnvFile(config.Dir(), values)
	if err != nil {
		fmt.Fprintf(out, "\nError saving configuration: %v\n", err)
		WaitOnWindows()
		return false
	}

	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render("✓ Configuration saved"))
	fmt.Fprintln(out, pathStyle.Render("  "+configPath))
	fmt.Fprintln(out)

	return true
}

// PromptPassword asks for a secret without echoing it.
func PromptPassword(title string) (string, error) {
	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	if err != nil {
		return "", err
	}
	return password, nil
}

// NormalizeAPIURL checks that s is an absolute http(s) URL and gives it a
// trailing slash so relative routes resolve below it.
func NormalizeAPIURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("address is required")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New("must be an http:// or https:// address")
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}

func GenerateTokenKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based if crypto/rand fails (unlikely)
		return fmt.Sprintf("booking-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}

// WriteEnvFile writes values to config.env in dir with 0600 permissions since
// the file holds the token key. Returns the path written.
func WriteEnvFile(dir string, values map[string]string) (string, error) {
	if dir == "" {
		return "", errors.New("no user config directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(dir, config.EnvFileName)
	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	for _, key := range envOrder {
		if val, ok := values[key]; ok {
			if _, err := fmt.Fprintf(f, "%s=%q\n", key, val); err != nil {
				return "", fmt.Errorf("failed to write %s: %w", key, err)
			}
		}
	}

	return configPath, nil
}

// WaitOnWindows pauses execution on Windows so users can see error messages
// before the console window closes.
func WaitOnWindows() {
	if runtime.GOOS == "windows" {
		fmt.Println()
		fmt.Println("Press Enter to exit...")
		fmt.Scanln()
	}
}

// FatalWithWait logs a fatal error and waits on Windows before exiting.
func FatalWithWait(format string, args ...any) {
	log.Error().Msgf(format, args...)
	WaitOnWindows()
	os.Exit(1)
}
