package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"agri_advisor/internal/i18n"
	"agri_advisor/internal/model"
	"agri_advisor/internal/service"
	"agri_advisor/internal/session"

	"github.com/spf13/cobra"
)

type cli struct {
	// open is called once per invocation before the subcommand runs.
	open    func(ctx context.Context) (*session.Manager, func() error, error)
	manager *session.Manager
	closer  func() error
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "agrictl",
		Short:        "Sign in to the agricultural advisory service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			manager, closer, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			c.manager, c.closer = manager, closer
			c.manager.RestoreSession(cmd.Context())
			return nil
		},
	}

	root.AddCommand(
		newLoginCmd(c),
		newWhoamiCmd(c),
		newLogoutCmd(c),
		newProfileCmd(c),
		newLangCmd(c),
	)
	return root
}

func newLoginCmd(c *cli) *cobra.Command {
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a phone passcode or an email and password",
	}

	login.AddCommand(&cobra.Command{
		Use:   "phone <phone>",
		Short: "Send a one-time passcode to a phone and sign in with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			phone := args[0]
			lang := c.manager.Language()

			if err := c.manager.IssuePasscode(ctx, phone); err != nil {
				return c.localized(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.Translate(lang, i18n.KeyPasscodeSent, map[string]string{"phone": phone}))
			fmt.Fprint(out, "OTP: ")

			code, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			user, err := c.manager.Login(ctx, model.Credentials{Type: model.CredentialsPhone, Phone: phone, Code: code})
			if err != nil {
				return c.localized(err)
			}
			c.printSignedIn(out, user)
			return nil
		},
	})

	var role, password string
	emailCmd := &cobra.Command{
		Use:   "email <email>",
		Short: "Sign in as an officer or admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = line
			}
			user, err := c.manager.Login(cmd.Context(), model.Credentials{
				Type:     model.CredentialsEmail,
				Email:    args[0],
				Password: password,
				Role:     model.Role(role),
			})
			if err != nil {
				return c.localized(err)
			}
			c.printSignedIn(cmd.OutOrStdout(), user)
			return nil
		},
	}
	emailCmd.Flags().StringVar(&role, "role", string(model.RoleOfficer), "role to sign in as (farmer, officer, admin)")
	emailCmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	login.AddCommand(emailCmd)

	return login
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			user := c.manager.CurrentUser()
			if user == nil {
				fmt.Fprintln(out, i18n.Translate(c.manager.Language(), i18n.KeyUnauthorized, nil))
				return nil
			}

			fmt.Fprintf(out, "id:       %s\n", user.ID)
			fmt.Fprintf(out, "role:     %s\n", user.Role)
			if user.Name != "" {
				fmt.Fprintf(out, "name:     %s\n", user.Name)
			}
			if user.Phone != "" {
				fmt.Fprintf(out, "phone:    %s\n", user.Phone)
			}
			if user.Email != "" {
				fmt.Fprintf(out, "email:    %s\n", user.Email)
			}
			if user.District != "" {
				fmt.Fprintf(out, "district: %s\n", user.District)
			}
			if len(user.PrimaryCrops) > 0 {
				fmt.Fprintf(out, "crops:    %s\n", strings.Join(user.PrimaryCrops, ", "))
			}
			fmt.Fprintf(out, "state:    %s\n", c.manager.State())
			return nil
		},
	}
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.manager.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), i18n.Translate(c.manager.Language(), i18n.KeyLoggedOut, nil))
			return nil
		},
	}
}

func newProfileCmd(c *cli) *cobra.Command {
	var (
		name, panchayat, district string
		crops                     []string
		landSize                  float64
		experience                int
		skip                      bool
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Complete or update the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := c.manager.Language()
			if !c.manager.IsAuthenticated() {
				return errors.New(i18n.Translate(lang, i18n.KeyUnauthorized, nil))
			}

			done := true
			update := model.ProfileUpdate{ProfileCompleted: &done}
			if !skip {
				flags := cmd.Flags()
				if flags.Changed("name") {
					update.Name = &name
				}
				if flags.Changed("panchayat") {
					update.Panchayat = &panchayat
				}
				if flags.Changed("district") {
					update.District = &district
				}
				if flags.Changed("crops") {
					update.PrimaryCrops = &crops
				}
				if flags.Changed("land-size") {
					if landSize < 0 {
						return errors.New(i18n.Translate(lang, i18n.KeyInvalidRequest, nil))
					}
					update.LandSize = &landSize
				}
				if flags.Changed("experience") {
					if experience < 0 {
						return errors.New(i18n.Translate(lang, i18n.KeyInvalidRequest, nil))
					}
					update.Experience = &experience
				}
			}

			if err := c.manager.UpdateProfile(cmd.Context(), update); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.Translate(lang, i18n.KeyProfileUpdated, nil))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "full name")
	f.StringVar(&panchayat, "panchayat", "", "panchayat")
	f.StringVar(&district, "district", "", "district")
	f.StringSliceVar(&crops, "crops", nil, "primary crops, comma separated")
	f.Float64Var(&landSize, "land-size", 0, "land size in acres")
	f.IntVar(&experience, "experience", 0, "years of farming experience")
	f.BoolVar(&skip, "skip", false, "mark the profile complete without changing it")
	return cmd
}

func newLangCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "lang [en|ml]",
		Short:     "Show or change the preferred language",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.LocaleEnglish), string(model.LocaleMalayalam)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := c.manager.SetLanguage(cmd.Context(), model.Locale(args[0])); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.manager.Language())
			return nil
		},
	}
}

func (c *cli) printSignedIn(out io.Writer, user *model.User) {
	lang := c.manager.Language()
	fmt.Fprintln(out, i18n.Translate(lang, i18n.KeyLoginSuccess, nil))
	if user.Name != "" {
		fmt.Fprintln(out, i18n.Translate(lang, i18n.KeyWelcome, map[string]string{"name": user.Name}))
	}
	if c.manager.NeedsProfileSetup() {
		fmt.Fprintln(out, i18n.Translate(lang, i18n.KeyProfileIncomplete, nil))
	}
}

// localized replaces sign-in errors with their message in the preferred language.
func (c *cli) localized(err error) error {
	key, ok := errorKey(err)
	if !ok {
		return err
	}
	return errors.New(i18n.Translate(c.manager.Language(), key, nil))
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

var errorKeys = []struct {
	err error
	key i18n.Key
}{
	{service.ErrPasscodeNotFound, i18n.KeyPasscodeNotFound},
	{service.ErrPasscodeExpired, i18n.KeyPasscodeExpired},
	{service.ErrPasscodeMismatch, i18n.KeyPasscodeMismatch},
	{service.ErrInvalidCredentials, i18n.KeyInvalidCredentials},
	{service.ErrPhoneRequired, i18n.KeyPhoneRequired},
}

func errorKey(err error) (i18n.Key, bool) {
	for _, e := range errorKeys {
		if errors.Is(err, e.err) {
			return e.key, true
		}
	}
	return "", false
}

func (c *cli) close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
