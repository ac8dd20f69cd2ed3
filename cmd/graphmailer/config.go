package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"graphmailer/internal/common/validation"
)

// Config holds all tool configuration merged from defaults, environment
// variables and command-line flags (in that order of precedence).
type Config struct {
	ShowVersion bool   // Display version information and exit
	TenantID    string // Azure AD Tenant ID (GUID format)
	ClientID    string // Application (Client) ID (GUID format)
	Secret      string // Client Secret for authentication

	From    string      // Sender mailbox address
	To      stringSlice // To recipients (defaults to the sender if empty)
	Cc      stringSlice // CC recipients
	Bcc     stringSlice // BCC recipients
	ReplyTo stringSlice // Reply-To addresses

	Subject         string      // Email subject line
	Body            string      // Plain text body
	BodyHTML        string      // HTML body (wins over -body when both are set)
	Priority        int         // 1-5 priority; 3 is normal
	AttachmentFiles stringSlice // File paths to attach

	GraphBaseURL string // Override for the Graph API base URL (testing)
	TokenURL     string // Override for the token endpoint URL (testing)

	VerboseMode bool   // Enable verbose diagnostic output (forces DEBUG level)
	LogLevel    string // Logging level: DEBUG, INFO, WARN, ERROR
	WhatIf      bool   // Dry run - print the payload without sending
}

// stringSlice is a flag.Value accepting comma-separated lists.
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			*s = append(*s, trimmed)
		}
	}
	return nil
}

// parseAndConfigureFlags defines all command-line flags, parses them and
// applies GRAPHMAIL* environment variables for flags that were not given on
// the command line.
func parseAndConfigureFlags() *Config {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "graphmailer - send mail through the Microsoft Graph API\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nEnvironment Variables:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  All flags can be set via environment variables with the GRAPHMAIL prefix\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  Example: GRAPHMAILTENANTID, GRAPHMAILCLIENTID, GRAPHMAILSECRET, GRAPHMAILFROM\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  Command-line flags take precedence over environment variables\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Example:\n")
		fmt.Fprintf(flag.CommandLine.Output(), "  %s -tenantid \"...\" -clientid \"...\" -secret \"...\" -from \"noreply@example.com\" -to \"user@example.com\" -subject \"Hi\" -body \"Hello\"\n\n", os.Args[0])
	}

	showVersion := flag.Bool("version", false, "Show version information")
	tenantID := flag.String("tenantid", "", "The Azure Tenant ID (env: GRAPHMAILTENANTID)")
	clientID := flag.String("clientid", "", "The Application (Client) ID (env: GRAPHMAILCLIENTID)")
	secret := flag.String("secret", "", "The Client Secret (env: GRAPHMAILSECRET)")
	from := flag.String("from", "", "Sender mailbox address (env: GRAPHMAILFROM)")

	var to, cc, bcc, replyTo, attachmentFiles stringSlice
	flag.Var(&to, "to", "Comma-separated list of TO recipients (defaults to -from if empty) (env: GRAPHMAILTO)")
	flag.Var(&cc, "cc", "Comma-separated list of CC recipients (env: GRAPHMAILCC)")
	flag.Var(&bcc, "bcc", "Comma-separated list of BCC recipients (env: GRAPHMAILBCC)")
	flag.Var(&replyTo, "replyto", "Comma-separated list of Reply-To addresses (env: GRAPHMAILREPLYTO)")
	flag.Var(&attachmentFiles, "attachments", "Comma-separated list of file paths to attach (env: GRAPHMAILATTACHMENTS)")

	subject := flag.String("subject", "Automated Tool Notification", "Subject of the email (env: GRAPHMAILSUBJECT)")
	body := flag.String("body", "It's a test message, please ignore", "Plain text body content (env: GRAPHMAILBODY)")
	bodyHTML := flag.String("bodyHTML", "", "HTML body content; wins over -body when both are set (env: GRAPHMAILBODYHTML)")
	priority := flag.Int("priority", 3, "Message priority 1-5; 3 is normal, anything else is sent as high importance (env: GRAPHMAILPRIORITY)")

	graphBaseURL := flag.String("graphurl", "", "Override the Graph API base URL, mainly for testing (env: GRAPHMAILGRAPHURL)")
	tokenURL := flag.String("tokenurl", "", "Override the OAuth2 token endpoint URL, mainly for testing (env: GRAPHMAILTOKENURL)")

	verbose := flag.Bool("verbose", false, "Enable verbose output (shows configuration, token info, API details)")
	logLevel := flag.String("loglevel", "INFO", "Logging level: DEBUG, INFO, WARN, ERROR (env: GRAPHMAILLOGLEVEL)")
	whatif := flag.Bool("whatif", false, "Dry run mode - print the built payload without sending (env: GRAPHMAILWHATIF)")

	flag.Parse()

	applyEnvVars(map[string]envString{
		"tenantid": {"GRAPHMAILTENANTID", tenantID},
		"clientid": {"GRAPHMAILCLIENTID", clientID},
		"secret":   {"GRAPHMAILSECRET", secret},
		"from":     {"GRAPHMAILFROM", from},
		"subject":  {"GRAPHMAILSUBJECT", subject},
		"body":     {"GRAPHMAILBODY", body},
		"bodyHTML": {"GRAPHMAILBODYHTML", bodyHTML},
		"graphurl": {"GRAPHMAILGRAPHURL", graphBaseURL},
		"tokenurl": {"GRAPHMAILTOKENURL", tokenURL},
		"loglevel": {"GRAPHMAILLOGLEVEL", logLevel},
	})

	applyEnvVarToSlice("to", &to, "GRAPHMAILTO")
	applyEnvVarToSlice("cc", &cc, "GRAPHMAILCC")
	applyEnvVarToSlice("bcc", &bcc, "GRAPHMAILBCC")
	applyEnvVarToSlice("replyto", &replyTo, "GRAPHMAILREPLYTO")
	applyEnvVarToSlice("attachments", &attachmentFiles, "GRAPHMAILATTACHMENTS")

	if !flagProvided("priority") {
		if envPriority := os.Getenv("GRAPHMAILPRIORITY"); envPriority != "" {
			if parsed, err := strconv.Atoi(envPriority); err == nil {
				*priority = parsed
			}
		}
	}
	if !flagProvided("whatif") {
		if envWhatIf := os.Getenv("GRAPHMAILWHATIF"); envWhatIf != "" {
			if parsed, err := strconv.ParseBool(envWhatIf); err == nil {
				*whatif = parsed
			}
		}
	}

	return &Config{
		ShowVersion:     *showVersion,
		TenantID:        *tenantID,
		ClientID:        *clientID,
		Secret:          *secret,
		From:            *from,
		To:              to,
		Cc:              cc,
		Bcc:             bcc,
		ReplyTo:         replyTo,
		Subject:         *subject,
		Body:            *body,
		BodyHTML:        *bodyHTML,
		Priority:        *priority,
		AttachmentFiles: attachmentFiles,
		GraphBaseURL:    *graphBaseURL,
		TokenURL:        *tokenURL,
		VerboseMode:     *verbose,
		LogLevel:        *logLevel,
		WhatIf:          *whatif,
	}
}

type envString struct {
	envName string
	flagPtr *string
}

// flagProvided reports whether a flag was explicitly set on the command line.
func flagProvided(name string) bool {
	provided := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			provided = true
		}
	})
	return provided
}

// applyEnvVars fills string flags from their environment variables when the
// flag was not given on the command line.
func applyEnvVars(envMap map[string]envString) {
	for flagName, e := range envMap {
		if flagProvided(flagName) {
			continue
		}
		if envValue := os.Getenv(e.envName); envValue != "" {
			*e.flagPtr = envValue
		}
	}
}

// applyEnvVarToSlice fills a stringSlice flag from its environment variable
// when the flag was not given on the command line.
func applyEnvVarToSlice(flagName string, slice *stringSlice, envName string) {
	if flagProvided(flagName) {
		return
	}
	if envValue := os.Getenv(envName); envValue != "" {
		_ = slice.Set(envValue)
	}
}

// validateConfiguration validates all required configuration fields before
// any network activity.
func validateConfiguration(config *Config) error {
	if err := validation.ValidateGUID(config.TenantID, "Tenant ID"); err != nil {
		return err
	}
	if err := validation.ValidateGUID(config.ClientID, "Client ID"); err != nil {
		return err
	}
	if strings.TrimSpace(config.Secret) == "" {
		return fmt.Errorf("missing authentication: -secret (or GRAPHMAILSECRET) is required")
	}

	if err := validation.ValidateEmail(config.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if len(config.To) > 0 {
		if err := validation.ValidateEmails(config.To, "To recipients"); err != nil {
			return err
		}
	}
	if len(config.Cc) > 0 {
		if err := validation.ValidateEmails(config.Cc, "CC recipients"); err != nil {
			return err
		}
	}
	if len(config.Bcc) > 0 {
		if err := validation.ValidateEmails(config.Bcc, "BCC recipients"); err != nil {
			return err
		}
	}
	if len(config.ReplyTo) > 0 {
		if err := validation.ValidateEmails(config.ReplyTo, "Reply-To addresses"); err != nil {
			return err
		}
	}

	if config.Priority < 1 || config.Priority > 5 {
		return fmt.Errorf("priority must be between 1 and 5 (got %d)", config.Priority)
	}

	for i, attachmentPath := range config.AttachmentFiles {
		fieldName := fmt.Sprintf("Attachment file #%d", i+1)
		if err := validation.ValidateFilePath(attachmentPath, fieldName); err != nil {
			return err
		}
	}

	return nil
}
