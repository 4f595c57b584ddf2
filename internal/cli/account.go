package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/nasti/booking-client/internal/session"
	"github.com/nasti/booking-client/internal/validate"
)

func runStatus(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "status", "")
	if err := parse(fs, args); err != nil {
		return err
	}

	token, ok, err := d.App.Session.Token()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(d.Out, "Not logged in.")
		return nil
	}

	loggedIn, err := d.App.Session.IsLoggedIn()
	if err != nil {
		return err
	}

	claims, err := session.DecodeClaims(token)
	if err != nil {
		fmt.Fprintln(d.Out, "Stored session is unreadable. Log in again.")
		return nil
	}

	if loggedIn {
		fmt.Fprintf(d.Out, "Logged in until %s.\n", claims.Expiry().Local().Format(time.DateTime))
	} else {
		fmt.Fprintln(d.Out, "Session expired. Log in again.")
	}

	if id, ok, err := d.App.Session.UserID(); err == nil && ok {
		fmt.Fprintf(d.Out, "User id: %d\n", id)
	}
	return nil
}

func runLogin(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "login", "-email EMAIL -password PASSWORD")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted for when omitted)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *password == "" && d.Prompt != nil {
		p, err := d.Prompt("Password for " + *email)
		if err != nil {
			return err
		}
		*password = p
	}

	user, err := d.App.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if user != nil {
		fmt.Fprintf(d.Out, "Welcome back, %s!\n", user.FirstName)
	} else {
		fmt.Fprintln(d.Out, "Logged in.")
	}
	return nil
}

func runRegister(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "register", "-first NAME -last NAME -email EMAIL -password PASSWORD [-phone DIGITS] [-verify-email]")
	var form validate.RegisterForm
	fs.StringVar(&form.FirstName, "first", "", "first name")
	fs.StringVar(&form.LastName, "last", "", "last name")
	fs.StringVar(&form.Email, "email", "", "email")
	fs.StringVar(&form.Phone, "phone", "", "phone number, digits only (optional)")
	fs.StringVar(&form.Password, "password", "", "password, 6 to 100 characters")
	byEmail := fs.Bool("verify-email", false, "email a verification link instead of logging in right away")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *byEmail {
		if err := d.App.RegisterByEmail(ctx, form); err != nil {
			return err
		}
		fmt.Fprintf(d.Out, "Check %s for a verification link, then run verify-email -token TOKEN.\n", form.Email)
		return nil
	}

	user, err := d.App.Register(ctx, form)
	if err != nil {
		return err
	}
	name := form.FirstName
	if user != nil && user.FirstName != "" {
		name = user.FirstName
	}
	fmt.Fprintf(d.Out, "Account created. Welcome, %s!\n", name)
	return nil
}

func runVerifyEmail(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "verify-email", "-token TOKEN")
	token := fs.String("token", "", "token from the verification link")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, map[string]string{"token": *token}); err != nil {
		return err
	}

	if err := d.App.VerifyRegistration(ctx, *token); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Email verified. You can log in now.")
	return nil
}

func runLogout(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "logout", "")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := d.App.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Logged out.")
	return nil
}

func runProfile(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "profile", "")
	if err := parse(fs, args); err != nil {
		return err
	}

	overview, err := d.App.Overview(ctx)
	if err != nil {
		return err
	}

	u := overview.User
	fmt.Fprintf(d.Out, "%s %s <%s>\n", u.FirstName, u.LastName, u.Email)
	if u.Phone != "" {
		fmt.Fprintf(d.Out, "Phone: %s\n", u.Phone)
	}
	fmt.Fprintf(d.Out, "Bookings: %d\n", len(overview.Bookings))
	printBookings(d, overview.Bookings)
	return nil
}

func runUpdateProfile(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "update-profile", "[-first NAME] [-last NAME] [-email EMAIL] [-phone DIGITS]")
	var form validate.ProfileForm
	fs.StringVar(&form.FirstName, "first", "", "new first name")
	fs.StringVar(&form.LastName, "last", "", "new last name")
	fs.StringVar(&form.Email, "email", "", "new email")
	fs.StringVar(&form.Phone, "phone", "", "new phone number, digits only")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := d.App.UpdateProfile(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "Profile updated: %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
	return nil
}

func runChangePassword(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "change-password", "-current PASSWORD -new PASSWORD -confirm PASSWORD")
	current := fs.String("current", "", "current password (prompted for when omitted)")
	newPassword := fs.String("new", "", "new password, 6 to 100 characters (prompted for when omitted)")
	confirm := fs.String("confirm", "", "new password again (prompted for when omitted)")
	if err := parse(fs, args); err != nil {
		return err
	}

	if d.Prompt != nil {
		for _, p := range []struct {
			value *string
			title string
		}{
			{current, "Current password"},
			{newPassword, "New password"},
			{confirm, "New password again"},
		} {
			if *p.value != "" {
				continue
			}
			v, err := d.Prompt(p.title)
			if err != nil {
				return err
			}
			*p.value = v
		}
	}

	if err := d.App.ChangePassword(ctx, *current, *newPassword, *confirm); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Password changed.")
	return nil
}

func runDeleteAccount(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "delete-account", "-yes")
	yes := fs.Bool("yes", false, "confirm deletion")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !*yes {
		fmt.Fprintln(d.Out, "This permanently deletes your account. Re-run with -yes to confirm.")
		return ErrUsage
	}

	if err := d.App.DeleteAccount(ctx); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Account deleted.")
	return nil
}

func runForgotPassword(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "forgot-password", "-email EMAIL")
	email := fs.String("email", "", "account email")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := d.App.ForgotPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "If %s has an account, a code is on its way.\n", *email)
	return nil
}

func runVerifyCode(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "verify-code", "-email EMAIL -code CODE")
	email := fs.String("email", "", "account email")
	code := fs.String("code", "", "code from the email")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, map[string]string{"code": *code}); err != nil {
		return err
	}

	if err := d.App.VerifyCode(ctx, *email, *code); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Code accepted. Set a new password with reset-password.")
	return nil
}

func runResetPassword(ctx context.Context, d Deps, args []string) error {
	fs := newFlagSet(d, "reset-password", "-email EMAIL -password NEW -confirm NEW")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireFlags(fs, map[string]string{"email": *email}); err != nil {
		return err
	}

	if err := d.App.ResetPassword(ctx, *email, *password, *confirm); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "Password changed. You can log in now.")
	return nil
}
