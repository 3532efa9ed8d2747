package cli

import (
	"context"

	"github.com/rocketship-ai/casekit/internal/credential"
	"github.com/rocketship-ai/casekit/internal/testcase"
)

// resolveCredentials fills every empty field of flags from the
// configuration (file and environment) and then from the keyring.
func (o *options) resolveCredentials(ctx context.Context, system credential.System, flags credential.Credentials) (credential.Credentials, error) {
	var configured credential.Credentials
	switch system {
	case credential.Jira:
		configured = credential.Credentials{Token: o.cfg.Jira.Token, Username: o.cfg.Jira.Username, Password: o.cfg.Jira.Password}
	case credential.Polarion:
		configured = credential.Credentials{Username: o.cfg.Polarion.Username, Password: o.cfg.Polarion.Password}
	}

	creds := merge(flags, configured)
	if creds.Token != "" || (creds.Username != "" && creds.Password != "") {
		return creds, nil
	}

	if o.credentials != nil {
		stored, err := o.credentials.Get(ctx, system)
		if err != nil {
			Logger.Warn("could not read stored credentials", "system", system, "error", err)
		} else if stored != nil {
			creds = merge(creds, *stored)
		}
	}
	return creds, nil
}

func merge(primary, fallback credential.Credentials) credential.Credentials {
	if primary.Token == "" {
		primary.Token = fallback.Token
	}
	if primary.Username == "" {
		primary.Username = fallback.Username
	}
	if primary.Password == "" {
		primary.Password = fallback.Password
	}
	return primary
}

func (o *options) jiraCredentials(ctx context.Context, flags credential.Credentials) (credential.Credentials, error) {
	creds, err := o.resolveCredentials(ctx, credential.Jira, flags)
	if err != nil {
		return creds, err
	}
	if creds.Token == "" && creds.Username == "" {
		return creds, testcase.Preconditionf("missing Jira credentials: pass --jira-token, set JIRA_TOKEN or run 'casekit auth login jira'")
	}
	return creds, nil
}

func (o *options) polarionCredentials(ctx context.Context, flags credential.Credentials) (credential.Credentials, error) {
	creds, err := o.resolveCredentials(ctx, credential.Polarion, flags)
	if err != nil {
		return creds, err
	}
	if creds.Username == "" || creds.Password == "" {
		return creds, testcase.Preconditionf("missing Polarion credentials: pass --polarion-username and --polarion-password, set POLARION_USERNAME and POLARION_PASSWORD or run 'casekit auth login polarion'")
	}
	return creds, nil
}
