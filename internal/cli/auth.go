package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rocketship-ai/casekit/internal/credential"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

func newAuthCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage the Jira and Polarion credentials stored in the system keyring`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(o),
		newAuthLogoutCmd(o),
		newAuthStatusCmd(o),
	)
	return cmd
}

func systemArg(args []string) (credential.System, error) {
	system, ok := credential.ParseSystem(args[0])
	if !ok {
		return "", testcase.Preconditionf("unknown system %q, expected one of %v", args[0], credential.Systems)
	}
	return system, nil
}

func newAuthLoginCmd(o *options) *cobra.Command {
	var creds credential.Credentials

	cmd := &cobra.Command{
		Use:   "login <jira|polarion>",
		Short: "Store credentials in the system keyring",
		Long: `Store credentials in the system keyring. Values not passed as flags
are prompted for.

Jira accepts a personal access token or a username and password;
Polarion requires a username and password.

Examples:
  casekit auth login jira
  casekit auth login polarion --username jdoe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := systemArg(args)
			if err != nil {
				return err
			}

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err := p.fill(system, &creds); err != nil {
				return err
			}
			if creds.Empty() {
				return testcase.Preconditionf("no credentials given for %s", system)
			}

			if err := o.credentials.Save(cmd.Context(), system, &creds); err != nil {
				return fmt.Errorf("failed to store credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Stored %s credentials\n", color.GreenString("✓"), system)
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Token, "token", "", "Personal access token (Jira only)")
	cmd.Flags().StringVar(&creds.Username, "username", "", "Username")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password")
	return cmd
}

func newAuthLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout <jira|polarion>",
		Short: "Remove stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, err := systemArg(args)
			if err != nil {
				return err
			}
			if err := o.credentials.Delete(cmd.Context(), system); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s credentials\n", color.GreenString("✓"), system)
			return nil
		},
	}
}

func newAuthStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which systems have stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, system := range credential.Systems {
				stored, err := o.credentials.Get(cmd.Context(), system)
				if err != nil {
					return err
				}
				switch {
				case stored.Empty():
					fmt.Fprintf(out, "%s: %s\n", system, color.RedString("not stored"))
				case stored.Token != "":
					fmt.Fprintf(out, "%s: %s (token)\n", system, color.GreenString("stored"))
				default:
					fmt.Fprintf(out, "%s: %s (user %s)\n", system, color.GreenString("stored"), stored.Username)
				}
			}
			return nil
		},
	}
}

func displayName(system credential.System) string {
	if system == credential.Polarion {
		return "Polarion"
	}
	return "Jira"
}

// prompter asks for the missing credential fields.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal secrets are read from without echo, or -1.
	fd int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

func (p *prompter) fill(system credential.System, creds *credential.Credentials) error {
	var err error
	if system == credential.Jira && creds.Token == "" && creds.Username == "" {
		if creds.Token, err = p.secret("Jira token (leave empty to use a username): "); err != nil {
			return err
		}
		if creds.Token != "" {
			return nil
		}
	}
	if creds.Token != "" {
		return nil
	}
	if creds.Username == "" {
		if creds.Username, err = p.line(displayName(system)+" username: "); err != nil {
			return err
		}
	}
	if creds.Password == "" {
		if creds.Password, err = p.secret(displayName(system)+" password: "); err != nil {
			return err
		}
	}
	return nil
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	s, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// secret reads without echo when stdin is a terminal.
func (p *prompter) secret(prompt string) (string, error) {
	if p.fd < 0 {
		return p.line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
