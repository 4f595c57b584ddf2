// Package cli is the command-line front end of the booking client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/nasti/booking-client/internal/app"
)

// ErrUsage is returned for unknown commands and bad flags. Usage has already
// been written to the output.
var ErrUsage = errors.New("usage error")

type Deps struct {
	App *app.App
	Out io.Writer
	// Prompt asks for a secret that was not given as a flag. Nil when the
	// terminal is not interactive.
	Prompt func(title string) (string, error)
}

type command struct {
	summary string
	run     func(ctx context.Context, d Deps, args []string) error
}

var commands map[string]command

// Populated in init because the commands look up their own summaries.
func init() {
	commands = map[string]command{
		"status":          {"show the stored session", runStatus},
		"login":           {"log in and store the session", runLogin},
		"register":        {"create an account and store the session", runRegister},
		"logout":          {"forget the stored session", runLogout},
		"profile":         {"show your profile and bookings", runProfile},
		"verify-email":    {"confirm an emailed registration link", runVerifyEmail},
		"update-profile":  {"change your name, email or phone", runUpdateProfile},
		"change-password": {"change your password", runChangePassword},
		"delete-account":  {"delete your account", runDeleteAccount},
		"forgot-password": {"email a password reset code", runForgotPassword},
		"verify-code":     {"check a password reset code", runVerifyCode},
		"reset-password":  {"set a new password", runResetPassword},
		"locations":       {"suggest destinations", runLocations},
		"search":          {"search available hotels", runSearch},
		"hotel":           {"show hotel details and rooms", runHotel},
		"book":            {"book a room", runBook},
		"pay":             {"pay for a booking", runPay},
		"bookings":        {"list your bookings", runBookings},
		"cancel":          {"cancel a booking", runCancel},
		"review":          {"review a stay", runReview},
	}
}

func dedentf(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %-16s %s", name, commands[name].summary))
	}

	return dedentf(`
		Usage: booking-client <command> [flags]

		Commands:
		%s
		  setup            write the config file interactively

		Run "booking-client <command> -h" for the flags of a command.
	`, strings.Join(lines, "\n")) + "\n"
}

// Run dispatches args[0] to its command.
func Run(ctx context.Context, args []string, d Deps) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		io.WriteString(d.Out, usage())
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(d.Out, "unknown command %q\n\n", args[0])
		io.WriteString(d.Out, usage())
		return ErrUsage
	}

	err := cmd.run(ctx, d, args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if errors.Is(err, app.ErrLoginRequired) {
		fmt.Fprintln(d.Out, "You are not logged in. Run \"booking-client login\" first.")
	}
	return err
}

func newFlagSet(d Deps, name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(d.Out)
	fs.Usage = func() {
		fmt.Fprintf(d.Out, "Usage: booking-client %s %s\n\n%s.\n\n", name, args, commands[name].summary)
		fs.PrintDefaults()
	}
	return fs
}

// parse returns ErrUsage on bad flags and flag.ErrHelp for -h.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return ErrUsage
	}
	return nil
}

// requireFlags reports the first empty flag among names.
func requireFlags(fs *flag.FlagSet, values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.TrimSpace(values[name]) == "" {
			fmt.Fprintf(fs.Output(), "missing -%s\n", name)
			fs.Usage()
			return ErrUsage
		}
	}
	return nil
}
